// Package flac reads and writes the metadata blocks of native FLAC files.
package flac

import (
	"io"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/go-flac"
	"github.com/pkg/errors"

	"github.com/simonhull/tagengine/internal/binary"
	"github.com/simonhull/tagengine/internal/types"
	"github.com/simonhull/tagengine/internal/vorbis"
)

const (
	magic = "fLaC"

	blockHeaderSize = 4
	maxBlockSize    = 1<<24 - 1
)

// metadata is the block list of a file and the offset where audio frames start.
type metadata struct {
	Blocks     []*flac.MetaDataBlock
	AudioStart int64
}

// readMetadata walks the metadata blocks after the magic. Every block is
// kept, unknown types included, so it can be re-emitted unchanged.
func readMetadata(sr *binary.SafeReader) (*metadata, error) {
	m, err := sr.Bytes(0, len(magic), "FLAC magic")
	if err != nil {
		return nil, err
	}
	if string(m) != magic {
		return nil, &types.CorruptedFileError{Path: sr.Path(), Reason: "invalid FLAC magic bytes"}
	}

	md := &metadata{}
	offset := int64(len(magic))
	for {
		header, err := binary.Read[uint32](sr, offset, "metadata block header")
		if err != nil {
			return nil, err
		}
		isLast := header>>31 == 1
		blockType := flac.BlockType((header >> 24) & 0x7F)
		length := int(header & 0x00FFFFFF)

		data, err := sr.Bytes(offset+blockHeaderSize, length, "metadata block")
		if err != nil {
			return nil, err
		}
		md.Blocks = append(md.Blocks, &flac.MetaDataBlock{Type: blockType, Data: data})
		offset += blockHeaderSize + int64(length)
		if isLast {
			break
		}
	}
	if len(md.Blocks) == 0 || md.Blocks[0].Type != flac.StreamInfo {
		return nil, &types.CorruptedFileError{Path: sr.Path(), Offset: 4, Reason: "first metadata block is not STREAMINFO"}
	}
	md.AudioStart = offset
	return md, nil
}

func (md *metadata) comments() (*vorbis.Comments, int, error) {
	for i, b := range md.Blocks {
		if b.Type == flac.VorbisComment {
			c, err := vorbis.Parse(b.Data)
			if err != nil {
				return nil, i, errors.Wrap(err, "parse VORBIS_COMMENT")
			}
			return c, i, nil
		}
	}
	return nil, -1, nil
}

// Codec reads and writes FLAC VORBIS_COMMENT and PICTURE blocks.
type Codec struct {
	// Vendor is used when a file has no comment block yet.
	Vendor string
}

// Supports reports whether key has a slot in FLAC metadata.
func (Codec) Supports(key types.FrameKey) bool {
	return vorbis.Supports(key)
}

// Read decodes the first VORBIS_COMMENT block and every PICTURE block.
func (c Codec) Read(r io.ReaderAt, size int64, path string) (*types.File, error) {
	md, err := readMetadata(binary.NewSafeReader(r, size, path))
	if err != nil {
		return nil, errors.Wrap(err, "read metadata blocks")
	}
	tags := make(types.Tags)
	cm, _, err := md.comments()
	if err != nil {
		return nil, err
	}
	if cm != nil {
		tags = cm.Tags()
	}
	for _, b := range md.Blocks {
		if b.Type != flac.Picture {
			continue
		}
		pic, err := flacpicture.ParseFromMetaDataBlock(*b)
		if err != nil {
			continue
		}
		tags.Add(types.KeyAttachedPicture, vorbis.PictureFromFLAC(pic))
	}
	return &types.File{Tags: tags, Format: types.FormatFLAC}, nil
}

// Write rebuilds the block list and copies the audio frames unchanged.
//
// The first VORBIS_COMMENT block is replaced (or inserted after
// STREAMINFO). PICTURE blocks are dropped and re-added only when
// AttachedPicture is targeted. Every other block keeps its bytes.
func (c Codec) Write(w io.Writer, r io.ReaderAt, size int64, path string, changes types.Tags) error {
	md, err := readMetadata(binary.NewSafeReader(r, size, path))
	if err != nil {
		return errors.Wrap(err, "read metadata blocks")
	}
	cm, idx, err := md.comments()
	if err != nil {
		return err
	}
	if cm == nil {
		vendor := c.Vendor
		if vendor == "" {
			vendor = vorbis.DefaultVendor
		}
		cm = &vorbis.Comments{Vendor: vendor}
	}
	if err := cm.Apply(changes, false); err != nil {
		return errors.Wrap(err, "apply comment changes")
	}
	commentBlock := &flac.MetaDataBlock{Type: flac.VorbisComment, Data: cm.Marshal()}

	blocks := make([]*flac.MetaDataBlock, 0, len(md.Blocks)+2)
	_, replacePictures := changes[types.KeyAttachedPicture]
	for i, b := range md.Blocks {
		switch {
		case i == idx:
			blocks = append(blocks, commentBlock)
		case b.Type == flac.Picture && replacePictures:
			continue
		default:
			blocks = append(blocks, b)
		}
		if i == 0 && idx < 0 {
			blocks = append(blocks, commentBlock)
		}
	}
	if replacePictures {
		for _, p := range changes.Pictures(types.KeyAttachedPicture) {
			block := vorbis.PictureToFLAC(p).Marshal()
			blocks = append(blocks, &block)
		}
	}

	if _, err := w.Write([]byte(magic)); err != nil {
		return errors.Wrap(err, "write magic")
	}
	for i, b := range blocks {
		if len(b.Data) > maxBlockSize {
			return errors.Errorf("metadata block type %d of %d bytes exceeds the maximum size", b.Type, len(b.Data))
		}
		if _, err := w.Write(b.Marshal(i == len(blocks)-1)); err != nil {
			return errors.Wrap(err, "write metadata block")
		}
	}
	if _, err := io.Copy(w, io.NewSectionReader(r, md.AudioStart, size-md.AudioStart)); err != nil {
		return errors.Wrap(err, "copy audio frames")
	}
	return nil
}
