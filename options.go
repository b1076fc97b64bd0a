package tagengine

import (
	"github.com/sirupsen/logrus"

	"github.com/simonhull/tagengine/internal/config"
)

// Config is the full set of settings a Backend runs with.
type Config = config.Config

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfig reads a TOML settings file over the defaults. An empty path
// returns the defaults.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// Option configures a Backend.
//
// Options use the functional options pattern:
//
//	b := tagengine.New(
//	    tagengine.WithLogger(log),
//	    tagengine.WithBackup(".bak"),
//	)
type Option func(*options)

// options holds the configuration a Backend is built from.
type options struct {
	cfg      Config
	logger   logrus.FieldLogger
	validate bool
}

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		cfg:    *config.Default(),
		logger: defaultLogger(),
	}
}

func defaultLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return l
}

// WithConfig replaces every setting with cfg. Options given after it
// still apply on top.
func WithConfig(cfg *Config) Option {
	return func(o *options) {
		if cfg != nil {
			o.cfg = *cfg
		}
	}
}

// WithLogger sets the logger dispatch decisions, skipped keys and write
// failures are reported to. The default logs warnings to stderr.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithWorkers bounds how many paths ReadMany and WriteChanges process at
// once. Zero or less means runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(o *options) {
		o.cfg.Write.Workers = n
	}
}

// WithBackup keeps the original of every rewritten file as path+suffix.
//
// If the backup file already exists, it is overwritten.
func WithBackup(suffix string) Option {
	return func(o *options) {
		o.cfg.Write.BackupSuffix = suffix
	}
}

// WithPreserveModTime keeps the original modification time of rewritten
// files.
func WithPreserveModTime() Option {
	return func(o *options) {
		o.cfg.Write.PreserveModTime = true
	}
}

// WithValidation re-reads every rewritten file before it replaces the
// original. A file that no longer decodes fails the write and the
// original is kept.
func WithValidation() Option {
	return func(o *options) {
		o.validate = true
	}
}

// WithID3Padding appends n zero bytes after the frames of rewritten
// ID3v2 tags.
func WithID3Padding(n int) Option {
	return func(o *options) {
		o.cfg.ID3.Padding = n
	}
}

// WithID3UTF16 encodes ID3 text as UTF-16 even when Latin-1 would do.
func WithID3UTF16() Option {
	return func(o *options) {
		o.cfg.ID3.PreferUTF16 = true
	}
}

// WithVorbisVendor sets the vendor string of newly created FLAC comment
// blocks.
func WithVorbisVendor(vendor string) Option {
	return func(o *options) {
		o.cfg.Vorbis.Vendor = vendor
	}
}

// WithMP4Namespace sets the mean of newly created MP4 freeform atoms.
func WithMP4Namespace(ns string) Option {
	return func(o *options) {
		o.cfg.MP4.FreeformNamespace = ns
	}
}
