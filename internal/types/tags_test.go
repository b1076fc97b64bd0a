package types

import (
	"encoding/json"
	"testing"
)

func TestTags_Accessors(t *testing.T) {
	tags := make(Tags)
	tags.SetText(KeyArtist, "A", "B")
	tags.Add(KeyAttachedPicture, Picture{MIME: "image/png", Data: []byte{1}})
	tags.AddText(KeyTitle, "", "Song")

	if got := tags.First(KeyArtist); got != "A" {
		t.Errorf("First(artist) = %q, want A", got)
	}
	if got := tags.Texts(KeyArtist); len(got) != 2 || got[1] != "B" {
		t.Errorf("Texts(artist) = %v", got)
	}
	if got := tags.Pictures(KeyAttachedPicture); len(got) != 1 {
		t.Errorf("Pictures() = %v", got)
	}
	if got := tags.Texts(KeyTitle); len(got) != 1 {
		t.Errorf("AddText should skip empty values, got %v", got)
	}

	keys := tags.Keys()
	want := []FrameKey{KeyTitle, KeyArtist, KeyAttachedPicture}
	if len(keys) != len(want) {
		t.Fatalf("Keys() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys()[%d] = %v, want %v", i, keys[i], want[i])
		}
	}
}

func TestTags_Merge(t *testing.T) {
	old := Tags{KeyTitle: {Text("Old")}, KeyAlbum: {Text("Album")}}
	merged := old.Merge(Tags{KeyTitle: {Text("New")}, KeyAlbum: {}})

	if merged.First(KeyTitle) != "New" {
		t.Errorf("title = %q", merged.First(KeyTitle))
	}
	if merged.Has(KeyAlbum) {
		t.Error("empty sequence should delete album")
	}
	if old.First(KeyTitle) != "Old" {
		t.Error("Merge must not mutate the receiver")
	}
}

func TestComputeDiff(t *testing.T) {
	old := Tags{KeyTitle: {Text("Same")}, KeyAlbum: {Text("Old")}}
	update := Tags{
		KeyTitle:  {Text("Same")},
		KeyAlbum:  {Text("New")},
		KeyArtist: {Text("Fresh")},
		KeyGenre:  {},
	}
	diffs := ComputeDiff(old, update)
	if len(diffs) != 2 {
		t.Fatalf("expected 2 diffs, got %d: %+v", len(diffs), diffs)
	}
	if diffs[0].Key != KeyArtist || diffs[0].Before != nil {
		t.Errorf("artist diff = %+v", diffs[0])
	}
	if diffs[1].Key != KeyAlbum || TextOf(diffs[1].Before[0]) != "Old" || TextOf(diffs[1].After[0]) != "New" {
		t.Errorf("album diff = %+v", diffs[1])
	}
}

func TestTags_JSON(t *testing.T) {
	tags := Tags{
		KeyTitle:           {Text("Song")},
		KeyAttachedPicture: {Picture{MIME: "image/png", Data: []byte{1, 2, 3}, Type: PictureFrontCover}},
		KeyUserDefinedText: {UserText{Description: "MOOD", Value: "calm"}},
		KeyComments:        {Comment{Language: "eng", Text: "hi"}},
	}
	b, err := json.Marshal(tags)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Tags
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for k, vs := range tags {
		if !EqualSequences(vs, back[k]) {
			t.Errorf("%s: got %v, want %v", k, back[k], vs)
		}
	}
}

func TestTags_JSONShorthand(t *testing.T) {
	var tags Tags
	if err := json.Unmarshal([]byte(`{"title":"Song","artist":["A","B"],"genre":[]}`), &tags); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if tags.First(KeyTitle) != "Song" {
		t.Errorf("title = %q", tags.First(KeyTitle))
	}
	if len(tags.Texts(KeyArtist)) != 2 {
		t.Errorf("artist = %v", tags.Texts(KeyArtist))
	}
	if vs, ok := tags[KeyGenre]; !ok || len(vs) != 0 {
		t.Errorf("genre should be an explicit deletion, got %v %v", vs, ok)
	}

	if err := json.Unmarshal([]byte(`{"nope":"x"}`), &tags); err == nil {
		t.Error("expected unknown key error")
	}
}
