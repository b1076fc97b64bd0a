package tagengine_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/simonhull/tagengine"
)

// createM4B writes a minimal M4B file: an ftyp box and an empty moov.
func createM4B(tb testing.TB) string {
	tb.Helper()

	buf := &bytes.Buffer{}

	ftypBuf := &bytes.Buffer{}
	ftypBuf.WriteString("M4B ")
	binary.Write(ftypBuf, binary.BigEndian, uint32(0))
	ftypBuf.WriteString("M4B ")

	binary.Write(buf, binary.BigEndian, uint32(8+ftypBuf.Len()))
	buf.WriteString("ftyp")
	buf.Write(ftypBuf.Bytes())

	binary.Write(buf, binary.BigEndian, uint32(8))
	buf.WriteString("moov")

	tmpFile, err := os.CreateTemp(tb.TempDir(), "bench*.m4b")
	if err != nil {
		tb.Fatal(err)
	}
	defer tmpFile.Close()

	if _, err := tmpFile.Write(buf.Bytes()); err != nil {
		tb.Fatal(err)
	}
	return tmpFile.Name()
}

func quiet() tagengine.Option {
	l, _ := test.NewNullLogger()
	return tagengine.WithLogger(l)
}

// TestReadManyCancellation verifies that a cancelled context stops the batch.
func TestReadManyCancellation(t *testing.T) {
	path := createM4B(t)
	paths := []string{path, path, path, path}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tagengine.New(quiet()).ReadMany(ctx, paths...)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestReadEmptyMovie(t *testing.T) {
	file, err := tagengine.Read(createM4B(t), quiet())
	if err != nil {
		t.Fatal(err)
	}
	if file.Format != tagengine.FormatItunes {
		t.Errorf("expected %s, got %s", tagengine.FormatItunes, file.Format)
	}
	if len(file.Tags) != 0 {
		t.Errorf("expected no tags, got %v", file.Tags)
	}
}

// BenchmarkRead measures reading a single file.
func BenchmarkRead(b *testing.B) {
	path := createM4B(b)
	backend := tagengine.New(quiet())

	b.ReportAllocs()
	for b.Loop() {
		if _, err := backend.Read(path); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkReadMany measures concurrent reads.
func BenchmarkReadMany(b *testing.B) {
	path := createM4B(b)
	paths := make([]string, 32)
	for i := range paths {
		paths[i] = path
	}
	backend := tagengine.New(quiet())
	ctx := context.Background()

	b.ReportAllocs()
	for b.Loop() {
		if _, err := backend.ReadMany(ctx, paths...); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkWriteDryRun measures detection, decode and diff without I/O on write.
func BenchmarkWriteDryRun(b *testing.B) {
	path := createM4B(b)
	backend := tagengine.New(quiet())
	tags := make(tagengine.Tags)
	tags.SetText(tagengine.KeyTitle, "Title")
	changes := tagengine.Changes{Paths: []string{path}, Tags: tags, DryRun: true}
	ctx := context.Background()

	b.ReportAllocs()
	for b.Loop() {
		if res := backend.WriteChanges(ctx, changes); res[0].Err != nil {
			b.Fatal(res[0].Err)
		}
	}
}
