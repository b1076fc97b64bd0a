// Package tagengine reads and rewrites audio metadata tags.
//
// A Backend detects which tag container a file carries (ID3v1, ID3v2.2,
// ID3v2.3, ID3v2.4, MP4/iTunes, FLAC or Ogg Vorbis/Opus), decodes it into
// a format-independent model, and writes changes back while leaving every
// frame, atom, block and page it did not target byte-identical.
//
// # Quick Start
//
// Reading tags:
//
//	file, err := tagengine.Read("song.flac")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(file.Format, file.Tags.First(tagengine.KeyTitle))
//
// Writing tags:
//
//	tags := make(tagengine.Tags)
//	tags.SetText(tagengine.KeyArtist, "A", "B")
//	tags.Set(tagengine.KeyComments) // delete
//
//	b := tagengine.New(tagengine.WithBackup(".bak"))
//	for _, res := range b.WriteChanges(ctx, tagengine.Changes{
//		Paths: []string{"a.mp3", "b.m4a"},
//		Tags:  tags,
//	}) {
//		fmt.Println(res.Path, res.Status, res.Err)
//	}
//
// # Model
//
// Tags maps a FrameKey to the complete ordered sequence of its values. In a
// write request an absent key is left untouched and a key with an empty
// sequence is deleted. Values are one of Text, Picture, UserText, UserURL
// or Comment.
//
// # Writes
//
// Every write streams a new copy of the file into a temporary sibling and
// renames it over the original, so a failed write never leaves a partial
// file behind. Writes to the same path are serialized inside one Backend;
// callers sharing files across processes must coordinate themselves.
//
// Keys the target format has no slot for are skipped and logged. Results
// carry a per-key diff of what changed.
package tagengine
