package binary

import "bytes"

// MaxSynchsafe is the largest value a 4-byte synchsafe integer can hold.
const MaxSynchsafe = 1<<28 - 1

// DecodeSynchsafe decodes a big-endian synchsafe integer: 7 bits per byte,
// the top bit of every byte ignored.
func DecodeSynchsafe(b []byte) uint32 {
	var v uint32
	for _, c := range b {
		v = v<<7 | uint32(c&0x7F)
	}
	return v
}

// PutSynchsafe encodes v into len(b) synchsafe bytes.
func PutSynchsafe(b []byte, v uint32) {
	for i := len(b) - 1; i >= 0; i-- {
		b[i] = byte(v & 0x7F)
		v >>= 7
	}
}

// RemoveUnsync reverses ID3v2 unsynchronisation: every 0xFF 0x00 pair
// becomes a single 0xFF.
func RemoveUnsync(b []byte) []byte {
	if !bytes.Contains(b, []byte{0xFF, 0x00}) {
		return b
	}
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		out = append(out, b[i])
		if b[i] == 0xFF && i+1 < len(b) && b[i+1] == 0x00 {
			i++
		}
	}
	return out
}
