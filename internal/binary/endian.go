package binary

// Uint24 decodes a 3-byte big-endian integer (ID3v2.2 frame sizes, FLAC block lengths).
func Uint24(b []byte) uint32 {
	_ = b[2]
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// PutUint24 encodes v as a 3-byte big-endian integer.
func PutUint24(b []byte, v uint32) {
	_ = b[2]
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}
