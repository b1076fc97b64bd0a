package mp4

import (
	"fmt"
	"io"
	"strings"

	"github.com/simonhull/tagengine/internal/binary"
)

// Dump prints the box tree of an MP4 file, one box per line, indented by
// depth. Containers and ilst items are expanded.
func Dump(w io.Writer, r io.ReaderAt, size int64, path string) error {
	return dumpBoxes(w, binary.NewSafeReader(r, size, path), 0, size, 0, false)
}

func dumpBoxes(w io.Writer, sr *binary.SafeReader, start, end int64, depth int, inIlst bool) error {
	list, err := boxes(sr, start, end)
	indent := strings.Repeat("  ", depth)
	for _, b := range list {
		fmt.Fprintf(w, "%s%s (size: %d, offset: %d)\n", indent, printable(b.Type), b.Size, b.Offset)

		dataOffset := b.DataOffset()
		switch {
		case b.Type == "meta":
			head, err := sr.Bytes(dataOffset, min(8, int(b.Size)-int(b.HeaderSize())), "meta payload")
			if err != nil {
				return err
			}
			dataOffset += int64(metaPrefix(head))
		case b.Type == "ilst" || inIlst:
		case !containers[b.Type]:
			continue
		}
		if err := dumpBoxes(w, sr, dataOffset, b.End(), depth+1, b.Type == "ilst"); err != nil {
			return err
		}
	}
	return err
}

// printable renders a fourCC with the copyright byte as ©.
func printable(typ string) string {
	return strings.ReplaceAll(typ, "\xA9", "©")
}
