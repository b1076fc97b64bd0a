package id3

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"

	bin "github.com/simonhull/tagengine/internal/binary"
)

// Per-frame flags (second flag byte) for ID3v2.3 and ID3v2.4.
const (
	v23FlagCompressed = 0x0080
	v23FlagEncrypted  = 0x0040
	v23FlagGrouped    = 0x0020

	v24FlagGrouped    = 0x0040
	v24FlagCompressed = 0x0008
	v24FlagEncrypted  = 0x0004
	v24FlagUnsync     = 0x0002
	v24FlagDataLength = 0x0001
)

// rawFrame is one frame as found in a tag.
type rawFrame struct {
	ID    string
	Flags uint16
	Data  []byte // payload with per-frame transforms undone; nil when opaque
	Raw   []byte // header and body exactly as stored
}

// opaque reports whether the payload could not be decoded (compressed or
// encrypted). Such frames are only ever copied.
func (f rawFrame) opaque() bool {
	return f.Data == nil
}

func frameHeaderSize(major byte) int {
	if major == 2 {
		return 6
	}
	return 10
}

func validFrameID(id string) bool {
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// parseFrames walks the frame area. Parsing stops at padding, at the
// first invalid frame ID or at a frame that would run past the body.
func parseFrames(major byte, body []byte) []rawFrame {
	idSize := 4
	if major == 2 {
		idSize = 3
	}
	hsize := frameHeaderSize(major)

	var frames []rawFrame
	pos := 0
	for pos+hsize <= len(body) && body[pos] != 0 {
		id := string(body[pos : pos+idSize])
		if !validFrameID(id) {
			break
		}
		size := frameSize(major, body[pos+idSize:pos+hsize], body, pos+hsize)
		end := pos + hsize + size
		if size < 0 || end > len(body) {
			break
		}
		if size == 0 {
			pos = end
			continue
		}
		var flags uint16
		if major > 2 {
			flags = binary.BigEndian.Uint16(body[pos+8 : pos+10])
		}
		frames = append(frames, rawFrame{
			ID:    id,
			Flags: flags,
			Data:  framePayload(major, flags, body[pos+hsize:end]),
			Raw:   body[pos:end],
		})
		pos = end
	}
	return frames
}

// frameSize decodes the size field. Some ID3v2.4 writers store plain
// big-endian sizes; when the synchsafe reading does not land on a frame
// boundary and the plain one does, the plain size wins.
func frameSize(major byte, hdr, body []byte, dataStart int) int {
	switch major {
	case 2:
		return int(bin.Uint24(hdr[0:3]))
	case 3:
		return int(binary.BigEndian.Uint32(hdr[:4]))
	}
	safe := int(bin.DecodeSynchsafe(hdr[:4]))
	plain := int(binary.BigEndian.Uint32(hdr[:4]))
	if safe == plain || frameBoundary(body, dataStart+safe) || !frameBoundary(body, dataStart+plain) {
		return safe
	}
	return plain
}

func frameBoundary(body []byte, next int) bool {
	if next == len(body) {
		return true
	}
	if next+4 > len(body) || next < 0 {
		return false
	}
	return body[next] == 0 || validFrameID(string(body[next:next+4]))
}

func framePayload(major byte, flags uint16, data []byte) []byte {
	switch major {
	case 3:
		if flags&(v23FlagCompressed|v23FlagEncrypted) != 0 {
			return nil
		}
		if flags&v23FlagGrouped != 0 {
			if len(data) < 1 {
				return nil
			}
			data = data[1:]
		}
	case 4:
		if flags&(v24FlagCompressed|v24FlagEncrypted) != 0 {
			return nil
		}
		if flags&v24FlagGrouped != 0 {
			if len(data) < 1 {
				return nil
			}
			data = data[1:]
		}
		if flags&v24FlagDataLength != 0 {
			if len(data) < 4 {
				return nil
			}
			data = data[4:]
		}
		if flags&v24FlagUnsync != 0 {
			data = bin.RemoveUnsync(data)
		}
	}
	return data
}

// encodeFrame builds a frame with cleared flags.
func encodeFrame(major byte, id string, payload []byte) ([]byte, error) {
	n := len(payload)
	var buf bytes.Buffer
	buf.Grow(frameHeaderSize(major) + n)
	sw := bin.NewSafeWriter(&buf)
	switch major {
	case 2:
		if n > 1<<24-1 {
			return nil, errors.Errorf("frame %s too large for ID3v2.2 (%d bytes)", id, n)
		}
		_ = sw.WriteString(id[:3])
		_ = sw.WriteUint24(uint32(n))
	case 3:
		_ = sw.WriteString(id[:4])
		_ = bin.Write(sw, uint32(n))
		_ = bin.Write(sw, uint16(0))
	default:
		if n > bin.MaxSynchsafe {
			return nil, errors.Errorf("frame %s too large for ID3v2.4 (%d bytes)", id, n)
		}
		_ = sw.WriteString(id[:4])
		_ = sw.WriteSynchsafe(uint32(n))
		_ = bin.Write(sw, uint16(0))
	}
	if err := sw.WriteBytes(payload); err != nil {
		return nil, errors.Wrapf(err, "encode frame %s", id)
	}
	return buf.Bytes(), nil
}
