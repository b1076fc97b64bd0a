package tagengine

import (
	"context"
	"io"
	"os"
	"runtime"
	"slices"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/simonhull/tagengine/internal/atomicfile"
	"github.com/simonhull/tagengine/internal/detect"
	"github.com/simonhull/tagengine/internal/registry"
	"github.com/simonhull/tagengine/internal/types"
)

// Backend detects formats, dispatches to the matching codec and computes
// write diffs. It is safe for concurrent use; writes to the same path are
// serialized.
type Backend struct {
	cfg      Config
	registry *registry.Registry
	log      logrus.FieldLogger
	validate bool
	locks    pathLocks
}

// New returns a Backend configured by opts.
func New(opts ...Option) *Backend {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Backend{
		cfg: o.cfg,
		registry: registry.New(registry.Options{
			ID3Padding:     o.cfg.ID3.Padding,
			ID3PreferUTF16: o.cfg.ID3.PreferUTF16,
			VorbisVendor:   o.cfg.Vorbis.Vendor,
			MP4Namespace:   o.cfg.MP4.FreeformNamespace,
		}),
		log:      o.logger,
		validate: o.validate,
	}
}

// Read decodes the tags of path with a Backend built from opts.
//
// Example:
//
//	file, err := tagengine.Read("song.m4a")
//	if err != nil {
//		return err
//	}
//	fmt.Println(file.Tags.Texts(tagengine.KeyArtist))
func Read(path string, opts ...Option) (*File, error) {
	return New(opts...).Read(path)
}

// Read decodes the tags of path.
//
// A file whose format is recognized but carries no tag yet (an untagged
// .mp3) reads as empty Tags. Errors are *UnsupportedFormatError or
// *ReadFailedError.
func (b *Backend) Read(path string) (*File, error) {
	f, size, err := open(path)
	if err != nil {
		return nil, readFailed(path, err)
	}
	defer f.Close() //nolint:errcheck // Read-only

	file, _, err := b.decode(f, size, path)
	return file, err
}

// ReadMany reads multiple files concurrently.
//
// Results are returned in the same order as the input paths. The first
// failure cancels the remaining reads and is returned.
//
// Example:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//
//	files, err := b.ReadMany(ctx, paths...)
func (b *Backend) ReadMany(ctx context.Context, paths ...string) ([]*File, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers())

	results := make([]*File, len(paths))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			file, err := b.Read(path)
			if err != nil {
				return err
			}
			results[i] = file
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// WriteChanges applies changes to every path and returns one result per
// path, in input order.
//
// Paths are independent: a failure on one does not stop the others. Keys
// the target format has no slot for are skipped. With DryRun set, diffs
// are computed and nothing is written. A cancelled ctx fails the paths
// not yet started.
func (b *Backend) WriteChanges(ctx context.Context, changes Changes) []WriteResult {
	results := make([]WriteResult, len(changes.Paths))

	if err := changes.Validate(); err != nil {
		for i, path := range changes.Paths {
			results[i] = WriteResult{
				Path:   path,
				Status: StatusFailed,
				Err:    writeFailed(path, "invalid value", err),
			}
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(b.workers())
	for i, path := range changes.Paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = WriteResult{Path: path, Status: StatusFailed, Err: writeFailed(path, "write cancelled", err)}
				return nil
			}
			results[i] = b.write(path, changes)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // Failures are recorded per path
	return results
}

func (b *Backend) write(path string, changes Changes) WriteResult {
	res := WriteResult{Path: path, Status: StatusFailed}
	log := b.log.WithField("path", path)

	unlock := b.locks.lock(path)
	defer unlock()

	f, size, err := open(path)
	if err != nil {
		res.Err = readFailed(path, err)
		log.WithError(err).Warn("open failed")
		return res
	}
	defer f.Close() //nolint:errcheck // Read-only

	file, codec, err := b.decode(f, size, path)
	if err != nil {
		var unsupported *UnsupportedFormatError
		if errors.As(err, &unsupported) {
			res.Status = StatusUnsupported
		}
		res.Err = err
		log.WithError(err).Warn("read before write failed")
		return res
	}
	log = log.WithField("format", file.Format)

	update := make(Tags, len(changes.Tags))
	for _, key := range changes.TargetKeys() {
		if !codec.Supports(key) {
			log.WithField("key", key).Info("format has no slot for key, skipped")
			continue
		}
		update[key] = changes.Tags[key]
	}

	res.Diff = types.ComputeDiff(file.Tags, update)
	if changes.DryRun {
		res.Status = StatusDryRun
		return res
	}
	if len(res.Diff) == 0 {
		log.Debug("tags already match, nothing to write")
		res.Status = StatusOK
		return res
	}

	opts := atomicfile.Options{
		BackupSuffix:    b.cfg.Write.BackupSuffix,
		PreserveModTime: b.cfg.Write.PreserveModTime,
	}
	if b.validate {
		opts.Verify = func(tmp string) error {
			return verify(codec, tmp, path)
		}
	}
	err = atomicfile.Replace(path, opts, func(w io.Writer) error {
		return codec.Write(w, f, size, path, update)
	})
	if err != nil {
		res.Err = writeFailed(path, "could not rewrite file", err)
		log.WithError(err).Warn("write failed")
		return res
	}

	log.WithField("keys", len(res.Diff)).Debug("tags written")
	res.Status = StatusOK
	return res
}

// decode detects the format of the file behind r and reads it with the
// matching codec.
func (b *Backend) decode(r io.ReaderAt, size int64, path string) (*File, registry.Codec, error) {
	format := detect.Format(r, size, path)
	log := b.log.WithFields(logrus.Fields{"path": path, "format": format})

	codec, ok := b.registry.Codec(format)
	if !ok {
		log.Debug("no codec claims format")
		return nil, nil, &UnsupportedFormatError{Path: path, Format: format}
	}

	file, err := codec.Read(r, size, path)
	noTag := errors.Is(err, ErrNoTag)
	switch {
	case noTag:
		log.Debug("no tag present, reading as empty")
		file = &File{Tags: make(Tags)}
	case err != nil:
		return nil, nil, readFailed(path, err)
	}

	file.ID = uuid.New()
	file.Path = path
	if file.Format == FormatUnknown {
		file.Format = format
	}
	file.TagFormats = detect.All(r, size, path)
	if noTag {
		file.TagFormats = slices.DeleteFunc(file.TagFormats, func(f Format) bool { return f == format })
	}
	return file, codec, nil
}

// verify re-reads a rewritten file with the codec that wrote it.
func verify(codec registry.Codec, tmp, path string) error {
	f, size, err := open(tmp)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck // Read-only

	if _, err := codec.Read(f, size, path); err != nil && !errors.Is(err, ErrNoTag) {
		return err
	}
	return nil
}

func (b *Backend) workers() int {
	if n := b.cfg.Write.Workers; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

func open(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, errors.Wrap(err, "open file")
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close() //nolint:errcheck // Already failing
		return nil, 0, errors.Wrap(err, "stat file")
	}
	return f, info.Size(), nil
}

// readFailed wraps err with a message safe to show to a user.
func readFailed(path string, err error) *ReadFailedError {
	return &ReadFailedError{
		Path:     path,
		Public:   publicReason(err, "could not read tags"),
		Internal: err.Error(),
		Err:      err,
	}
}

func writeFailed(path, public string, err error) *WriteFailedError {
	return &WriteFailedError{
		Path:     path,
		Public:   publicReason(err, public),
		Internal: err.Error(),
		Err:      err,
	}
}

func publicReason(err error, fallback string) string {
	var (
		corrupted *CorruptedFileError
		bounds    *OutOfBoundsError
		invalid   *InvalidValueError
	)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return "file does not exist"
	case errors.Is(err, os.ErrPermission):
		return "permission denied"
	case errors.As(err, &corrupted):
		return "file is corrupted: " + corrupted.Reason
	case errors.As(err, &bounds):
		return "file is truncated"
	case errors.As(err, &invalid):
		return invalid.Error()
	}
	return fallback
}
