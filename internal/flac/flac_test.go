package flac

import (
	"bytes"
	"testing"

	"github.com/dhowden/tag"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/tagengine/internal/types"
)

var (
	frames = bytes.Repeat([]byte{0xFF, 0xF8, 0x69, 0x08}, 32)
	png    = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 9, 9}
)

func buildFLAC(t *testing.T, blocks ...*flac.MetaDataBlock) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("fLaC")
	all := append([]*flac.MetaDataBlock{{Type: flac.StreamInfo, Data: make([]byte, 34)}}, blocks...)
	for i, b := range all {
		buf.Write(b.Marshal(i == len(all)-1))
	}
	buf.Write(frames)
	return buf.Bytes()
}

func commentBlock(t *testing.T, fields ...[2]string) *flac.MetaDataBlock {
	t.Helper()
	cmts := flacvorbis.New()
	for _, f := range fields {
		require.NoError(t, cmts.Add(f[0], f[1]))
	}
	b := cmts.Marshal()
	return &b
}

func write(t *testing.T, data []byte, changes types.Tags) []byte {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, Codec{}.Write(&out, bytes.NewReader(data), int64(len(data)), "t.flac", changes))
	return out.Bytes()
}

func read(t *testing.T, data []byte) *types.File {
	t.Helper()
	f, err := Codec{}.Read(bytes.NewReader(data), int64(len(data)), "t.flac")
	require.NoError(t, err)
	return f
}

func TestRead(t *testing.T) {
	pic := (&flacpicture.MetadataBlockPicture{
		PictureType: flacpicture.PictureTypeFrontCover,
		MIME:        "image/png",
		Description: "cover",
		ImageData:   png,
	}).Marshal()
	data := buildFLAC(t,
		commentBlock(t, [2]string{"TITLE", "Song"}, [2]string{"ARTIST", "A"}, [2]string{"ARTIST", "B"}),
		&pic,
	)

	f := read(t, data)
	assert.Equal(t, types.FormatFLAC, f.Format)
	assert.Equal(t, "Song", f.Tags.First(types.KeyTitle))
	assert.Equal(t, []string{"A", "B"}, f.Tags.Texts(types.KeyArtist))
	pics := f.Tags.Pictures(types.KeyAttachedPicture)
	require.Len(t, pics, 1)
	assert.Equal(t, types.PictureFrontCover, pics[0].Type)
	assert.Equal(t, png, pics[0].Data)
}

func TestWriteReplacesComments(t *testing.T) {
	app := &flac.MetaDataBlock{Type: flac.Application, Data: []byte("test\x01\x02")}
	data := buildFLAC(t,
		&flac.MetaDataBlock{Type: flac.Padding, Data: make([]byte, 16)},
		commentBlock(t, [2]string{"TITLE", "Old"}, [2]string{"CUSTOM", "keep"}),
		app,
	)

	changes := types.Tags{}
	changes.SetText(types.KeyTitle, "New")
	changes.SetText(types.KeyGenre, "Jazz")
	out := write(t, data, changes)

	parsed, err := flac.ParseBytes(bytes.NewReader(out))
	require.NoError(t, err)
	require.Len(t, parsed.Meta, 4)
	assert.Equal(t, flac.Padding, parsed.Meta[1].Type)
	assert.Equal(t, flac.VorbisComment, parsed.Meta[2].Type)
	assert.Equal(t, app.Data, parsed.Meta[3].Data)
	assert.True(t, bytes.HasSuffix(out, frames), "audio frames must be copied unchanged")

	cmts, err := flacvorbis.ParseFromMetaDataBlock(*parsed.Meta[2])
	require.NoError(t, err)
	title, err := cmts.Get("TITLE")
	require.NoError(t, err)
	assert.Equal(t, []string{"New"}, title)
	custom, err := cmts.Get("CUSTOM")
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, custom)

	m, err := tag.ReadFrom(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "New", m.Title())
	assert.Equal(t, "Jazz", m.Genre())
}

func TestWriteInsertsCommentAfterStreamInfo(t *testing.T) {
	data := buildFLAC(t, &flac.MetaDataBlock{Type: flac.SeekTable, Data: make([]byte, 18)})
	out := write(t, data, types.Tags{types.KeyAlbum: {types.Text("LP")}})

	parsed, err := flac.ParseBytes(bytes.NewReader(out))
	require.NoError(t, err)
	require.Len(t, parsed.Meta, 3)
	assert.Equal(t, flac.StreamInfo, parsed.Meta[0].Type)
	assert.Equal(t, flac.VorbisComment, parsed.Meta[1].Type)
	assert.Equal(t, flac.SeekTable, parsed.Meta[2].Type)

	cmts, err := flacvorbis.ParseFromMetaDataBlock(*parsed.Meta[1])
	require.NoError(t, err)
	assert.Equal(t, "tagengine", cmts.Vendor)
}

func TestWritePictures(t *testing.T) {
	old := (&flacpicture.MetadataBlockPicture{
		PictureType: flacpicture.PictureTypeBackCover,
		MIME:        "image/png",
		ImageData:   png,
	}).Marshal()
	data := buildFLAC(t, commentBlock(t, [2]string{"TITLE", "T"}), &old)

	// Untargeted pictures survive a text edit.
	out := write(t, data, types.Tags{types.KeyTitle: {types.Text("U")}})
	assert.Len(t, read(t, out).Tags.Pictures(types.KeyAttachedPicture), 1)

	jpeg := types.Picture{MIME: "image/jpeg", Data: []byte{0xFF, 0xD8, 0xFF, 1}, Type: types.PictureTypeNone}
	out = write(t, data, types.Tags{types.KeyAttachedPicture: {jpeg}})
	pics := read(t, out).Tags.Pictures(types.KeyAttachedPicture)
	require.Len(t, pics, 1)
	assert.Equal(t, "image/jpeg", pics[0].MIME)
	assert.Equal(t, types.PictureFrontCover, pics[0].Type, "an untyped picture is stored as front cover")

	out = write(t, data, types.Tags{types.KeyAttachedPicture: nil})
	assert.Empty(t, read(t, out).Tags.Pictures(types.KeyAttachedPicture))
}

func TestReadRejectsBadMagic(t *testing.T) {
	data := []byte("OggS0000000000000000")
	_, err := Codec{}.Read(bytes.NewReader(data), int64(len(data)), "t.flac")
	var corrupted *types.CorruptedFileError
	assert.ErrorAs(t, err, &corrupted)
}

func TestRoundTripEveryKey(t *testing.T) {
	for _, key := range types.AllFrameKeys() {
		if !(Codec{}).Supports(key) {
			continue
		}
		t.Run(key.String(), func(t *testing.T) {
			var want types.TagValue
			switch key {
			case types.KeyAttachedPicture:
				want = types.Picture{MIME: "image/png", Data: png, Type: types.PictureFrontCover, Description: "front"}
			case types.KeyUserDefinedText:
				want = types.UserText{Description: "SOURCE", Value: "sample"}
			case types.KeyUserDefinedURL:
				want = types.UserURL{URL: "https://example.com/?a=b"}
			default:
				want = types.Text("sample " + key.String())
			}

			out := write(t, buildFLAC(t), types.Tags{key: {want}})
			assert.True(t, bytes.HasSuffix(out, frames))
			got := read(t, out).Tags

			require.Len(t, got, 1, "only %s is written", key)
			require.Len(t, got.Get(key), 1)
			if p, ok := want.(types.Picture); ok {
				assert.Equal(t, p, got.Pictures(key)[0])
				return
			}
			if _, ok := want.(types.Text); ok {
				assert.Equal(t, []string{types.TextOf(want)}, got.Texts(key))
				return
			}
			assert.Equal(t, want, got.Get(key)[0])
		})
	}
}
