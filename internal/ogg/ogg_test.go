package ogg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bin "github.com/simonhull/tagengine/internal/binary"
	"github.com/simonhull/tagengine/internal/types"
	"github.com/simonhull/tagengine/internal/vorbis"
)

var (
	vorbisIdent = append([]byte("\x01vorbis"), bytes.Repeat([]byte{0x11}, 23)...)
	vorbisSetup = append([]byte("\x05vorbis"), bytes.Repeat([]byte{0x55}, 600)...)
	opusIdent   = append([]byte("OpusHead"), 1, 2, 0x38, 0x01, 0x80, 0xBB, 0, 0, 0, 0, 0)
)

func commentPacket(kind streamKind, fields ...string) []byte {
	cm := &vorbis.Comments{Vendor: "test vendor"}
	for _, f := range fields {
		field, _ := vorbis.ParseField(f)
		cm.Fields = append(cm.Fields, field)
	}
	return buildCommentPacket(kind, cm)
}

// bitstream concatenates pages, each listed as the packets it carries.
type bitstream struct {
	buf  bytes.Buffer
	seqs map[uint32]uint32
}

func (b *bitstream) add(serial uint32, flags byte, granule uint64, packets ...[]byte) *bitstream {
	if b.seqs == nil {
		b.seqs = make(map[uint32]uint32)
	}
	p := &page{Flags: flags, Granule: granule, Serial: serial, Sequence: b.seqs[serial]}
	for _, pkt := range packets {
		p.Segments = append(p.Segments, lacing(len(pkt))...)
		p.Data = append(p.Data, pkt...)
	}
	b.seqs[serial]++
	b.buf.Write(p.marshal())
	return b
}

func (b *bitstream) bytes() []byte { return b.buf.Bytes() }

func splitPages(t *testing.T, data []byte) []*page {
	t.Helper()
	sr := bin.NewBytesReader(data, "out.ogg")
	var pages []*page
	for off := int64(0); off < int64(len(data)); {
		p, next, err := readPage(sr, off)
		require.NoError(t, err)
		pages = append(pages, p)
		off = next
	}
	return pages
}

func packetsOf(t *testing.T, pages []*page, serial uint32) [][]byte {
	t.Helper()
	var a assembler
	for _, p := range pages {
		if p.Serial == serial {
			_, err := a.feed(p, -1)
			require.NoError(t, err)
		}
	}
	return a.packets
}

func assertValidPages(t *testing.T, pages []*page) {
	t.Helper()
	next := make(map[uint32]uint32)
	for i, p := range pages {
		raw := append([]byte(nil), p.Raw...)
		want := binary.LittleEndian.Uint32(raw[22:26])
		binary.LittleEndian.PutUint32(raw[22:26], 0)
		assert.Equal(t, want, checksum(raw), "page %d checksum", i)

		if seq, ok := next[p.Serial]; ok {
			assert.Equal(t, seq, p.Sequence, "page %d of stream %d", i, p.Serial)
		}
		next[p.Serial] = p.Sequence + 1
	}
}

func writeOgg(t *testing.T, in []byte, changes types.Tags) []byte {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, Codec{}.Write(&out, bytes.NewReader(in), int64(len(in)), "test.ogg", changes))
	return out.Bytes()
}

func readOgg(t *testing.T, in []byte) types.Tags {
	t.Helper()
	f, err := Codec{}.Read(bytes.NewReader(in), int64(len(in)), "test.ogg")
	require.NoError(t, err)
	assert.Equal(t, types.FormatOgg, f.Format)
	return f.Tags
}

func vorbisFile(serial uint32, fields ...string) *bitstream {
	b := &bitstream{}
	b.seqs = map[uint32]uint32{serial: 7}
	b.add(serial, flagBOS, 0, vorbisIdent)
	b.add(serial, 0, 0, commentPacket(kindVorbis, fields...))
	b.add(serial, 0, 0, vorbisSetup)
	b.add(serial, 0, 4096, []byte("audio-1"), []byte("audio-2"))
	b.add(serial, flagEOS, 8192, []byte("audio-3"))
	return b
}

func TestCRCTableMatchesPolynomial(t *testing.T) {
	for i := range 256 {
		r := uint32(i) << 24
		for range 8 {
			if r&0x80000000 != 0 {
				r = r<<1 ^ 0x04c11db7
			} else {
				r <<= 1
			}
		}
		if crcTable[i] != r {
			t.Fatalf("crcTable[%d] = %#08x, want %#08x", i, crcTable[i], r)
		}
	}
}

func TestLacing(t *testing.T) {
	tests := []struct {
		n    int
		want []byte
	}{
		{0, []byte{0}},
		{1, []byte{1}},
		{254, []byte{254}},
		{255, []byte{255, 0}},
		{300, []byte{255, 45}},
		{510, []byte{255, 255, 0}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, lacing(tt.n), "lacing(%d)", tt.n)
	}
}

func TestPaginateSpillsAcrossPages(t *testing.T) {
	big := bytes.Repeat([]byte{0xAB}, 255*255+10)
	pages := paginate(3, 10, flagBOS, [][]byte{big, []byte("tail")})
	require.Len(t, pages, 2)

	assert.Equal(t, byte(flagBOS), pages[0].Flags)
	assert.Len(t, pages[0].Segments, 255)
	assert.Equal(t, granuleNone, pages[0].Granule, "no packet ends on the first page")

	assert.Equal(t, byte(flagContinued), pages[1].Flags)
	assert.Equal(t, uint32(11), pages[1].Sequence)
	assert.Equal(t, []byte{10, 4}, pages[1].Segments)
	assert.Equal(t, uint64(0), pages[1].Granule)
}

func TestPaginateExactMultipleGetsTerminator(t *testing.T) {
	pages := paginate(1, 0, 0, [][]byte{bytes.Repeat([]byte{1}, 255*255)})
	require.Len(t, pages, 2)
	assert.Len(t, pages[0].Segments, 255)
	assert.Equal(t, []byte{0}, pages[1].Segments)
	assert.Empty(t, pages[1].Data)

	var a assembler
	for _, p := range pages {
		_, err := a.feed(p, -1)
		require.NoError(t, err)
	}
	require.Len(t, a.packets, 1)
	assert.Len(t, a.packets[0], 255*255)
}

func TestRead(t *testing.T) {
	in := vorbisFile(42, "TITLE=Song", "ARTIST=A", "ARTIST=B", "MOOD=calm").bytes()

	tags := readOgg(t, in)
	assert.Equal(t, "Song", tags.First(types.KeyTitle))
	assert.Equal(t, []string{"A", "B"}, tags.Texts(types.KeyArtist))
	assert.Equal(t, "calm", tags.First(types.KeyMood))
}

func TestWriteVorbisKeepsHeaderPackets(t *testing.T) {
	in := vorbisFile(42, "TITLE=Old", "ALBUM=Keep").bytes()

	changes := types.Tags{}
	changes.SetText(types.KeyTitle, "New")
	out := writeOgg(t, in, changes)

	pages := splitPages(t, out)
	assertValidPages(t, pages)
	assert.Equal(t, uint32(7), pages[0].Sequence, "numbering starts from the stream's first sequence")
	assert.Equal(t, byte(flagBOS), pages[0].Flags)

	packets := packetsOf(t, pages, 42)
	require.Len(t, packets, 6)
	assert.Equal(t, vorbisIdent, packets[0])
	assert.Equal(t, vorbisSetup, packets[2])
	assert.Equal(t, []byte("audio-1"), packets[3])
	assert.Equal(t, []byte("audio-3"), packets[5])
	assert.Equal(t, byte(0x01), packets[1][len(packets[1])-1], "framing bit")

	tags := readOgg(t, out)
	assert.Equal(t, "New", tags.First(types.KeyTitle))
	assert.Equal(t, "Keep", tags.First(types.KeyAlbum))

	last := pages[len(pages)-1]
	assert.Equal(t, uint64(8192), last.Granule)
	assert.NotZero(t, last.Flags&flagEOS)
}

func TestWriteLargeCommentRenumbersDataPages(t *testing.T) {
	in := vorbisFile(5).bytes()

	changes := types.Tags{}
	changes.Set(types.KeyUserDefinedText, types.UserText{Description: "NOTES", Value: strings.Repeat("x", 200_000)})
	out := writeOgg(t, in, changes)

	pages := splitPages(t, out)
	assertValidPages(t, pages)
	assert.Greater(t, len(pages), 5)

	packets := packetsOf(t, pages, 5)
	require.Len(t, packets, 6)
	assert.Equal(t, vorbisIdent, packets[0])
	assert.Equal(t, vorbisSetup, packets[2])

	// Data pages keep their bytes apart from the sequence and checksum.
	orig := splitPages(t, in)
	got := pages[len(pages)-1]
	want := orig[len(orig)-1]
	assert.Equal(t, want.Data, got.Data)
	assert.Equal(t, want.Granule, got.Granule)
	assert.NotEqual(t, want.Sequence, got.Sequence)

	tags := readOgg(t, out)
	require.Len(t, tags[types.KeyUserDefinedText], 1)
	assert.Equal(t, "NOTES", tags[types.KeyUserDefinedText][0].(types.UserText).Description)
}

func TestWriteSmallerCommentKeepsDataPagesVerbatim(t *testing.T) {
	b := &bitstream{}
	b.add(9, flagBOS, 0, vorbisIdent)
	b.add(9, 0, 0, commentPacket(kindVorbis, "TITLE=Old"), vorbisSetup)
	b.add(9, 0, 4096, []byte("audio-1"))
	b.add(9, flagEOS, 8192, []byte("audio-2"))
	in := b.bytes()

	changes := types.Tags{}
	changes.Set(types.KeyTitle)
	out := writeOgg(t, in, changes)

	orig := splitPages(t, in)
	pages := splitPages(t, out)
	require.Len(t, pages, len(orig))
	for i := 2; i < len(orig); i++ {
		assert.Equal(t, orig[i].Raw, pages[i].Raw, "data page %d", i)
	}
	assert.False(t, readOgg(t, out).Has(types.KeyTitle))
}

func TestWriteOpus(t *testing.T) {
	b := &bitstream{}
	b.add(1, flagBOS, 0, opusIdent)
	b.add(1, 0, 0, commentPacket(kindOpus, "TITLE=Old"))
	b.add(1, flagEOS, 960, []byte{0xFC, 0xFF, 0xFE})
	in := b.bytes()

	changes := types.Tags{}
	changes.SetText(types.KeyTitle, "Opus Song")
	changes.SetText(types.KeyGenre, "Jazz")
	out := writeOgg(t, in, changes)

	pages := splitPages(t, out)
	assertValidPages(t, pages)
	packets := packetsOf(t, pages, 1)
	require.Len(t, packets, 3)
	assert.Equal(t, opusIdent, packets[0])
	assert.True(t, bytes.HasPrefix(packets[1], []byte("OpusTags")))
	assert.Equal(t, []byte{0xFC, 0xFF, 0xFE}, packets[2])

	tags := readOgg(t, out)
	assert.Equal(t, "Opus Song", tags.First(types.KeyTitle))
	assert.Equal(t, "Jazz", tags.First(types.KeyGenre))
}

func TestWriteMultiplexedStreams(t *testing.T) {
	skeleton := []byte("fishead\x00 skeleton header")
	b := &bitstream{}
	b.add(1, flagBOS, 0, vorbisIdent)
	b.add(2, flagBOS, 0, skeleton)
	b.add(1, 0, 0, commentPacket(kindVorbis, "TITLE=Old"))
	b.add(2, flagEOS, 0, []byte("skeleton eos"))
	b.add(1, 0, 0, vorbisSetup)
	b.add(1, flagEOS, 1024, []byte("audio"))
	in := b.bytes()
	orig := splitPages(t, in)

	changes := types.Tags{}
	changes.SetText(types.KeyTitle, strings.Repeat("long title ", 40))
	out := writeOgg(t, in, changes)

	pages := splitPages(t, out)
	assertValidPages(t, pages)
	// Comment and setup now share a page.
	require.Len(t, pages, len(orig)-1)

	// Both BOS pages stay ahead of any other page.
	assert.Equal(t, uint32(1), pages[0].Serial)
	assert.NotZero(t, pages[0].Flags&flagBOS)
	assert.Equal(t, orig[1].Raw, pages[1].Raw)
	assert.Equal(t, orig[3].Raw, pages[3].Raw)

	assert.Equal(t, [][]byte{skeleton, []byte("skeleton eos")}, packetsOf(t, pages, 2))
	assert.Equal(t, strings.Repeat("long title ", 40), readOgg(t, out).First(types.KeyTitle))
}

func TestWriteRejectsAudioOnHeaderPage(t *testing.T) {
	b := &bitstream{}
	b.add(1, flagBOS, 0, vorbisIdent)
	b.add(1, 0, 0, commentPacket(kindVorbis), vorbisSetup, []byte("audio"))
	in := b.bytes()

	var out bytes.Buffer
	err := Codec{}.Write(&out, bytes.NewReader(in), int64(len(in)), "test.ogg", types.Tags{})
	var corrupt *types.CorruptedFileError
	require.ErrorAs(t, err, &corrupt)
}

func TestWriteWithoutEditableStream(t *testing.T) {
	b := &bitstream{}
	b.add(1, flagBOS, 0, []byte("\x80theora"))
	b.add(1, flagEOS, 0, []byte("frame"))
	in := b.bytes()

	var out bytes.Buffer
	err := Codec{}.Write(&out, bytes.NewReader(in), int64(len(in)), "test.ogg", types.Tags{})
	assert.True(t, errors.Is(err, types.ErrNoTag))

	_, err = Codec{}.Read(bytes.NewReader(in), int64(len(in)), "test.ogg")
	assert.True(t, errors.Is(err, types.ErrNoTag))
}

func TestWriteTruncatedHeaders(t *testing.T) {
	b := &bitstream{}
	b.add(1, flagBOS, 0, vorbisIdent)
	b.add(1, 0, 0, commentPacket(kindVorbis))
	in := b.bytes()

	var out bytes.Buffer
	err := Codec{}.Write(&out, bytes.NewReader(in), int64(len(in)), "test.ogg", types.Tags{})
	var corrupt *types.CorruptedFileError
	require.ErrorAs(t, err, &corrupt)
	assert.Contains(t, corrupt.Reason, "ends before its headers")
}

func TestReadRejectsGarbage(t *testing.T) {
	in := []byte("OggX not a page at all, but long enough for a header")
	_, err := Codec{}.Read(bytes.NewReader(in), int64(len(in)), "bad.ogg")
	var corrupt *types.CorruptedFileError
	require.ErrorAs(t, err, &corrupt)
}

func BenchmarkWrite(b *testing.B) {
	in := vorbisFile(1, "TITLE=Song", "ARTIST=Someone").bytes()
	changes := types.Tags{}
	changes.SetText(types.KeyTitle, "Other")
	for b.Loop() {
		var out bytes.Buffer
		if err := (Codec{}).Write(&out, bytes.NewReader(in), int64(len(in)), "bench.ogg", changes); err != nil {
			b.Fatal(err)
		}
	}
}

func TestRoundTripEveryKey(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 3}
	for _, key := range types.AllFrameKeys() {
		if !(Codec{}).Supports(key) {
			continue
		}
		t.Run(key.String(), func(t *testing.T) {
			var want types.TagValue
			switch key {
			case types.KeyAttachedPicture:
				want = types.Picture{MIME: "image/png", Data: png, Type: types.PictureBackCover, Description: "back"}
			case types.KeyUserDefinedText:
				want = types.UserText{Description: "SOURCE", Value: "sample"}
			case types.KeyUserDefinedURL:
				want = types.UserURL{URL: "https://example.com/?a=b"}
			default:
				want = types.Text("sample " + key.String())
			}

			out := writeOgg(t, vorbisFile(42).bytes(), types.Tags{key: {want}})
			assertValidPages(t, splitPages(t, out))
			got := readOgg(t, out)

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
