package vorbis

import (
	"encoding/base64"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/go-flac"
	"github.com/pkg/errors"

	"github.com/simonhull/tagengine/internal/types"
)

// PictureFromFLAC converts a decoded FLAC picture block.
func PictureFromFLAC(pic *flacpicture.MetadataBlockPicture) types.Picture {
	mime := pic.MIME
	if mime == "" || mime == "-->" {
		mime = types.SniffImageMIME(pic.ImageData)
	}
	return types.Picture{
		MIME:        mime,
		Data:        pic.ImageData,
		Type:        types.PictureType(pic.PictureType),
		Description: pic.Description,
	}
}

// PictureToFLAC builds a FLAC picture block. Dimensions are left zero;
// readers take them from the image itself.
func PictureToFLAC(p types.Picture) *flacpicture.MetadataBlockPicture {
	mime := p.MIME
	if mime == "" {
		mime = types.SniffImageMIME(p.Data)
	}
	return &flacpicture.MetadataBlockPicture{
		PictureType: flacpicture.PictureType(p.Type.Or(types.PictureFrontCover)),
		MIME:        mime,
		Description: p.Description,
		ImageData:   p.Data,
	}
}

// DecodePicture parses a METADATA_BLOCK_PICTURE value.
func DecodePicture(value string) (types.Picture, error) {
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return types.Picture{}, errors.Wrap(err, "decode base64 picture")
	}
	pic, err := flacpicture.ParseFromMetaDataBlock(flac.MetaDataBlock{Type: flac.Picture, Data: raw})
	if err != nil {
		return types.Picture{}, errors.Wrap(err, "parse picture block")
	}
	return PictureFromFLAC(pic), nil
}

// EncodePicture produces a METADATA_BLOCK_PICTURE value.
func EncodePicture(p types.Picture) (string, error) {
	if len(p.Data) == 0 {
		return "", errors.New("picture without data")
	}
	block := PictureToFLAC(p).Marshal()
	return base64.StdEncoding.EncodeToString(block.Data), nil
}
