package mp4

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/dhowden/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bin "github.com/simonhull/tagengine/internal/binary"
	"github.com/simonhull/tagengine/internal/types"
)

var (
	chunkData = []byte("chunk-one.......chunk-two.......")
	pngData   = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}, bytes.Repeat([]byte{7}, 32)...)
)

type layout struct {
	mdatFirst bool
	co64      bool
	noUdta    bool
}

func textItem(code string, values ...string) *node {
	data := make([]*node, 0, len(values))
	for _, v := range values {
		data = append(data, dataNode(typeUTF8, []byte(v)))
	}
	return itemNode(code, data...)
}

func chunkTable(co64 bool, offsets []int64) *node {
	payload := []byte{0, 0, 0, 0}
	payload = binary.BigEndian.AppendUint32(payload, uint32(len(offsets)))
	for _, off := range offsets {
		if co64 {
			payload = binary.BigEndian.AppendUint64(payload, uint64(off))
		} else {
			payload = binary.BigEndian.AppendUint32(payload, uint32(off))
		}
	}
	typ := "stco"
	if co64 {
		typ = "co64"
	}
	return leaf(typ, payload)
}

func movieBox(l layout, items []*node, offsets []int64) *node {
	stbl := &node{Type: "stbl", Children: []*node{chunkTable(l.co64, offsets)}}
	trak := &node{Type: "trak", Children: []*node{
		{Type: "mdia", Children: []*node{{Type: "minf", Children: []*node{stbl}}}},
	}}
	moov := &node{Type: "moov", Children: []*node{leaf("mvhd", make([]byte, 100)), trak}}
	if !l.noUdta {
		meta := &node{Type: "meta", Prefix: []byte{0, 0, 0, 0}, Children: []*node{
			handler(),
			{Type: "ilst", Children: items},
		}}
		moov.Children = append(moov.Children, &node{Type: "udta", Children: []*node{meta}})
	}
	return moov
}

// buildMP4 lays out ftyp, moov and mdat with a chunk table pointing at
// the two chunks in mdat.
func buildMP4(l layout, items ...*node) []byte {
	ftyp := leaf("ftyp", []byte("M4A \x00\x00\x02\x00M4A mp42isom"))
	mdat := leaf("mdat", chunkData)
	moovSize := movieBox(l, items, []int64{0, 0}).size()

	mdatStart := ftyp.size()
	if !l.mdatFirst {
		mdatStart += moovSize
	}
	offsets := []int64{mdatStart + boxHeaderSize, mdatStart + boxHeaderSize + 16}
	moov := movieBox(l, items, offsets)

	out := ftyp.marshal(nil)
	if l.mdatFirst {
		out = mdat.marshal(out)
		return moov.marshal(out)
	}
	out = moov.marshal(out)
	return mdat.marshal(out)
}

func readMP4(t *testing.T, b []byte) *types.File {
	t.Helper()
	f, err := Codec{}.Read(bytes.NewReader(b), int64(len(b)), "test.m4a")
	require.NoError(t, err)
	return f
}

func writeMP4(t *testing.T, b []byte, changes types.Tags) []byte {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, Codec{}.Write(&out, bytes.NewReader(b), int64(len(b)), "test.m4a", changes))
	return out.Bytes()
}

func chunkOffsets(t *testing.T, b []byte) []int64 {
	t.Helper()
	m, err := loadMovie(bin.NewBytesReader(b, "test.m4a"))
	require.NoError(t, err)
	table := m.Root.path("trak", "mdia", "minf", "stbl", "stco")
	width := 4
	if table == nil {
		table = m.Root.path("trak", "mdia", "minf", "stbl", "co64")
		width = 8
	}
	require.NotNil(t, table)
	p := table.payload()
	count := int(binary.BigEndian.Uint32(p[4:8]))
	offsets := make([]int64, count)
	for i := range offsets {
		e := p[8+i*width:]
		if width == 4 {
			offsets[i] = int64(binary.BigEndian.Uint32(e))
		} else {
			offsets[i] = int64(binary.BigEndian.Uint64(e))
		}
	}
	return offsets
}

func assertChunksIntact(t *testing.T, b []byte) {
	t.Helper()
	offsets := chunkOffsets(t, b)
	require.Len(t, offsets, 2)
	assert.Equal(t, "chunk-one", string(b[offsets[0]:offsets[0]+9]))
	assert.Equal(t, "chunk-two", string(b[offsets[1]:offsets[1]+9]))
}

func TestRead(t *testing.T) {
	trkn := make([]byte, 8)
	binary.BigEndian.PutUint16(trkn[2:], 3)
	binary.BigEndian.PutUint16(trkn[4:], 12)

	in := buildMP4(layout{},
		textItem("\xA9nam", "Song"),
		textItem("\xA9ART", "A", "B"),
		itemNode("trkn", dataNode(typeImplicit, trkn)),
		itemNode("gnre", dataNode(typeImplicit, []byte{0, 18})),
		itemNode("tmpo", dataNode(typeInteger, []byte{0, 120})),
		itemNode("cpil", dataNode(typeInteger, []byte{1})),
		itemNode("covr", dataNode(typePNG, pngData)),
		freeformNode(ItunesNamespace, "MOOD", dataNode(typeUTF8, []byte("calm"))),
		freeformNode(ItunesNamespace, "MY FIELD", dataNode(typeUTF8, []byte("mine"))),
		freeformNode("org.example", "rating", dataNode(typeUTF8, []byte("5"))),
	)

	f := readMP4(t, in)
	assert.Equal(t, types.FormatItunes, f.Format)
	assert.Equal(t, "Song", f.Tags.First(types.KeyTitle))
	assert.Equal(t, []string{"A", "B"}, f.Tags.Texts(types.KeyArtist))
	assert.Equal(t, "3", f.Tags.First(types.KeyTrackNumber))
	assert.Equal(t, "12", f.Tags.First(types.KeyTotalTracks))
	assert.Equal(t, "Rock", f.Tags.First(types.KeyGenre))
	assert.Equal(t, "120", f.Tags.First(types.KeyBeatsPerMinute))
	assert.Equal(t, "1", f.Tags.First(types.KeyCompilation))
	assert.Equal(t, "calm", f.Tags.First(types.KeyMood))

	pics := f.Tags.Pictures(types.KeyAttachedPicture)
	require.Len(t, pics, 1)
	assert.Equal(t, "image/png", pics[0].MIME)
	assert.Equal(t, types.PictureTypeNone, pics[0].Type)

	assert.Equal(t, []types.TagValue{types.UserText{Description: "MY FIELD", Value: "mine"}}, f.Tags[types.KeyUserDefinedText])
	assert.Equal(t, []types.FreeformTag{{Mean: "org.example", Name: "rating", Value: "5"}}, f.Freeforms)
}

func TestReadWithoutIlst(t *testing.T) {
	f := readMP4(t, buildMP4(layout{noUdta: true}))
	assert.Empty(t, f.Tags)
}

func TestReadWithoutMoov(t *testing.T) {
	in := leaf("ftyp", []byte("M4A \x00\x00\x00\x00")).marshal(nil)
	in = leaf("mdat", chunkData).marshal(in)

	_, err := Codec{}.Read(bytes.NewReader(in), int64(len(in)), "test.m4a")
	var corrupt *types.CorruptedFileError
	require.ErrorAs(t, err, &corrupt)
	assert.Contains(t, corrupt.Reason, "moov")
}

func TestWriteShiftsChunkOffsets(t *testing.T) {
	tests := []struct {
		name   string
		layout layout
		moved  bool
	}{
		{"stco after moov", layout{}, true},
		{"co64 after moov", layout{co64: true}, true},
		{"mdat first", layout{mdatFirst: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := buildMP4(tt.layout, textItem("\xA9nam", "Old"))
			before := chunkOffsets(t, in)

			changes := types.Tags{}
			changes.SetText(types.KeyTitle, strings.Repeat("A much longer title ", 20))
			changes.SetText(types.KeyAlbum, "Album")
			out := writeMP4(t, in, changes)

			delta := int64(len(out) - len(in))
			require.Positive(t, delta)
			after := chunkOffsets(t, out)
			for i := range before {
				want := before[i]
				if tt.moved {
					want += delta
				}
				assert.Equal(t, want, after[i], "chunk %d", i)
			}
			assertChunksIntact(t, out)
			assert.Equal(t, "Album", readMP4(t, out).Tags.First(types.KeyAlbum))
		})
	}
}

func TestWriteShrinkingTag(t *testing.T) {
	in := buildMP4(layout{}, textItem("\xA9nam", strings.Repeat("long ", 100)), textItem("\xA9alb", "Keep"))

	changes := types.Tags{}
	changes.Set(types.KeyTitle)
	out := writeMP4(t, in, changes)

	assert.Less(t, len(out), len(in))
	assertChunksIntact(t, out)
	f := readMP4(t, out)
	assert.False(t, f.Tags.Has(types.KeyTitle))
	assert.Equal(t, "Keep", f.Tags.First(types.KeyAlbum))
}

func TestWriteSynthesizesMeta(t *testing.T) {
	in := buildMP4(layout{noUdta: true})

	changes := types.Tags{}
	changes.SetText(types.KeyTitle, "Fresh")
	changes.SetText(types.KeyArtist, "Someone")
	out := writeMP4(t, in, changes)
	assertChunksIntact(t, out)

	f := readMP4(t, out)
	assert.Equal(t, "Fresh", f.Tags.First(types.KeyTitle))

	var dump bytes.Buffer
	require.NoError(t, Dump(&dump, bytes.NewReader(out), int64(len(out)), "test.m4a"))
	assert.Contains(t, dump.String(), "hdlr")
	assert.Contains(t, dump.String(), "©nam")

	m, err := tag.ReadFrom(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "Fresh", m.Title())
	assert.Equal(t, "Someone", m.Artist())
}

func TestWriteKeepsUntargetedItems(t *testing.T) {
	unknown := itemNode("\xA9xyz", dataNode(typeUTF8, []byte("opaque")))
	foreign := freeformNode("org.example", "rating", dataNode(typeUTF8, []byte("5")))
	in := buildMP4(layout{}, textItem("\xA9nam", "Old"), unknown, foreign)

	changes := types.Tags{}
	changes.SetText(types.KeyTitle, "New")
	changes.Set(types.KeyUserDefinedText, types.UserText{Description: "NOTE", Value: "hi"})
	out := writeMP4(t, in, changes)

	assert.True(t, bytes.Contains(out, unknown.marshal(nil)))
	f := readMP4(t, out)
	assert.Equal(t, "New", f.Tags.First(types.KeyTitle))
	assert.Len(t, f.Freeforms, 1)
	assert.Equal(t, []types.TagValue{types.UserText{Description: "NOTE", Value: "hi"}}, f.Tags[types.KeyUserDefinedText])
}

func TestWritePairMergesWithExisting(t *testing.T) {
	trkn := make([]byte, 8)
	binary.BigEndian.PutUint16(trkn[2:], 3)
	binary.BigEndian.PutUint16(trkn[4:], 12)
	in := buildMP4(layout{}, itemNode("trkn", dataNode(typeImplicit, trkn)))

	changes := types.Tags{}
	changes.SetText(types.KeyTotalTracks, "15")
	changes.SetText(types.KeyDiscNumber, "2/3")
	out := writeMP4(t, in, changes)

	f := readMP4(t, out)
	assert.Equal(t, "3", f.Tags.First(types.KeyTrackNumber))
	assert.Equal(t, "15", f.Tags.First(types.KeyTotalTracks))
	assert.Equal(t, "2", f.Tags.First(types.KeyDiscNumber))
	assert.Equal(t, "3", f.Tags.First(types.KeyTotalDiscs))
}

func TestWriteNativeAndFreeformValues(t *testing.T) {
	in := buildMP4(layout{}, itemNode("gnre", dataNode(typeImplicit, []byte{0, 18})))

	changes := types.Tags{}
	changes.SetText(types.KeyGenre, "Jazz")
	changes.SetText(types.KeyBeatsPerMinute, "128")
	changes.SetText(types.KeyGapless, "true")
	changes.SetText(types.KeyISRC, "USABC1234567")
	changes.Set(types.KeyAttachedPicture, types.Picture{Data: pngData})
	out := writeMP4(t, in, changes)

	f := readMP4(t, out)
	assert.Equal(t, []string{"Jazz"}, f.Tags.Texts(types.KeyGenre), "gnre is replaced")
	assert.Equal(t, "128", f.Tags.First(types.KeyBeatsPerMinute))
	assert.Equal(t, "1", f.Tags.First(types.KeyGapless))
	assert.Equal(t, "USABC1234567", f.Tags.First(types.KeyISRC))
	require.Len(t, f.Tags.Pictures(types.KeyAttachedPicture), 1)
	assert.Equal(t, "image/png", f.Tags.Pictures(types.KeyAttachedPicture)[0].MIME)
}

func TestWriteCustomNamespace(t *testing.T) {
	in := buildMP4(layout{})
	c := Codec{Namespace: "org.tagengine"}

	changes := types.Tags{}
	changes.SetText(types.KeyMood, "calm")
	var out bytes.Buffer
	require.NoError(t, c.Write(&out, bytes.NewReader(in), int64(len(in)), "test.m4a", changes))
	assert.True(t, bytes.Contains(out.Bytes(), []byte("org.tagengine")))

	f, err := c.Read(bytes.NewReader(out.Bytes()), int64(out.Len()), "test.m4a")
	require.NoError(t, err)
	assert.Equal(t, "calm", f.Tags.First(types.KeyMood))
	assert.Empty(t, f.Freeforms)
}

func TestWriteRejectsBadInteger(t *testing.T) {
	in := buildMP4(layout{})
	changes := types.Tags{}
	changes.SetText(types.KeyBeatsPerMinute, "fast")

	var out bytes.Buffer
	err := Codec{}.Write(&out, bytes.NewReader(in), int64(len(in)), "test.m4a", changes)
	var invalid *types.InvalidValueError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, types.KeyBeatsPerMinute, invalid.Key)
}

func TestSupports(t *testing.T) {
	assert.True(t, Supports(types.KeyTitle))
	assert.True(t, Supports(types.KeyMusicBrainzTrackID))
	assert.False(t, Supports(types.KeyPrivate))
	assert.False(t, Supports(types.FrameKey(-1)))
}

func TestAtomCodesAreUnique(t *testing.T) {
	seen := make(map[string]types.FrameKey)
	for k, a := range atoms {
		if prev, dup := seen[a.code]; dup {
			t.Errorf("%q used by %s and %s", a.code, prev, k)
		}
		seen[a.code] = k
	}
}

func TestWriteKeepsContainerTail(t *testing.T) {
	ftyp := leaf("ftyp", []byte("M4A \x00\x00\x02\x00M4A mp42isom"))
	mdat := leaf("mdat", chunkData)
	start := ftyp.size() + boxHeaderSize
	moov := movieBox(layout{mdatFirst: true}, []*node{textItem("\xA9alb", "Old")}, []int64{start, start + 16})
	terminator := []byte{0, 0, 0, 0}
	moov.child("udta").Tail = terminator
	in := moov.marshal(mdat.marshal(ftyp.marshal(nil)))

	out := writeMP4(t, in, types.Tags{types.KeyAlbum: {types.Text("New")}})

	m, err := loadMovie(bin.NewBytesReader(out, "test.m4a"))
	require.NoError(t, err)
	udta := m.Root.child("udta")
	require.NotNil(t, udta)
	assert.Len(t, udta.Children, 1)
	assert.Equal(t, terminator, udta.Tail)
	assert.Equal(t, "New", readMP4(t, out).Tags.First(types.KeyAlbum))
	assertChunksIntact(t, out)
}

func TestParseChildrenTail(t *testing.T) {
	b := leaf("free", []byte("x")).marshal(nil)
	b = append(b, 0, 0, 0)
	children, tail, err := parseChildren(b)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, []byte{0, 0, 0}, tail)

	_, tail, err = parseChildren(leaf("free").marshal(nil))
	require.NoError(t, err)
	assert.Nil(t, tail)
}

// sampleValue returns a value for key that an ilst stores without
// normalization: numbers for integer and pair items, text otherwise.
func sampleValue(key types.FrameKey) types.TagValue {
	switch key {
	case types.KeyAttachedPicture:
		return types.Picture{MIME: "image/png", Data: pngData}
	case types.KeyComments:
		return types.Comment{Text: "sample"}
	case types.KeyUserDefinedText:
		return types.UserText{Description: "SOURCE", Value: "sample"}
	case types.KeyUserDefinedURL:
		return types.UserURL{URL: "https://example.com/?a=b"}
	}
	if a, ok := atoms[key]; ok && a.kind != atomText {
		return types.Text("1")
	}
	if _, _, pair := pairAtom(key); pair {
		return types.Text("7")
	}
	return types.Text("sample " + key.String())
}

func TestRoundTripEveryKey(t *testing.T) {
	for _, key := range types.AllFrameKeys() {
		if !(Codec{}).Supports(key) {
			continue
		}
		t.Run(key.String(), func(t *testing.T) {
			want := sampleValue(key)
			out := writeMP4(t, buildMP4(layout{}), types.Tags{key: {want}})
			assertChunksIntact(t, out)
			f := readMP4(t, out)

			require.Len(t, f.Tags, 1, "only %s is written", key)
			require.Len(t, f.Tags.Get(key), 1)
			assert.Empty(t, f.Freeforms)
			switch w := want.(type) {
			case types.Picture:
				p := f.Tags.Pictures(key)[0]
				assert.Equal(t, w.MIME, p.MIME)
				assert.Equal(t, w.Data, p.Data)
			case types.UserText, types.UserURL:
				assert.Equal(t, want, f.Tags.Get(key)[0])
			default:
				assert.Equal(t, []string{types.TextOf(want)}, f.Tags.Texts(key))
			}
		})
	}
}

func TestFreeformDoesNotShadowNativeItems(t *testing.T) {
	in := buildMP4(layout{},
		textItem("\xA9nam", "Native"),
		freeformNode(ItunesNamespace, "TITLE", dataNode(typeUTF8, []byte("Imported"))),
		freeformNode(ItunesNamespace, "MOOD", dataNode(typeUTF8, []byte("calm"))),
	)

	f := readMP4(t, in)
	assert.Equal(t, []string{"Native"}, f.Tags.Texts(types.KeyTitle))
	assert.Equal(t, "calm", f.Tags.First(types.KeyMood))
	assert.Equal(t, []types.TagValue{types.UserText{Description: "TITLE", Value: "Imported"}},
		f.Tags.Get(types.KeyUserDefinedText))

	out := writeMP4(t, in, types.Tags{types.KeyTitle: {types.Text("New")}})
	f = readMP4(t, out)
	assert.Equal(t, []string{"New"}, f.Tags.Texts(types.KeyTitle))
	assert.Equal(t, "Imported", f.Tags.First(types.KeyUserDefinedText), "a title change keeps the freeform atom")
}
