package mp4

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// shiftChunkOffsets adds delta to every stco/co64 entry pointing at or
// past from. Entries before from reference data that did not move.
func shiftChunkOffsets(moov *node, from, delta int64) error {
	if delta == 0 {
		return nil
	}
	return moov.walk(func(n *node) error {
		var width int
		switch n.Type {
		case "stco":
			width = 4
		case "co64":
			width = 8
		default:
			return nil
		}

		raw := append([]byte(nil), n.Raw...)
		hdr := len(n.Raw) - len(n.payload())
		body := raw[hdr:]
		if len(body) < 8 {
			return errors.Errorf("truncated %s box", n.Type)
		}
		count := int(binary.BigEndian.Uint32(body[4:8]))
		entries := body[8:]
		if count > len(entries)/width {
			return errors.Errorf("%s declares %d entries but holds %d", n.Type, count, len(entries)/width)
		}

		for i := range count {
			e := entries[i*width : (i+1)*width]
			if width == 4 {
				off := int64(binary.BigEndian.Uint32(e))
				if off < from {
					continue
				}
				off += delta
				if off < 0 || off > math.MaxUint32 {
					return errors.Errorf("chunk offset %d does not fit in stco", off)
				}
				binary.BigEndian.PutUint32(e, uint32(off))
				continue
			}
			off := int64(binary.BigEndian.Uint64(e))
			if off < from {
				continue
			}
			binary.BigEndian.PutUint64(e, uint64(off+delta))
		}
		n.Raw = raw
		return nil
	})
}
