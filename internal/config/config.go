// Package config loads tagengine settings from an optional TOML file.
package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// Config is the full set of settings.
type Config struct {
	Write  WriteConfig  `koanf:"write"`
	ID3    ID3Config    `koanf:"id3"`
	Vorbis VorbisConfig `koanf:"vorbis"`
	MP4    MP4Config    `koanf:"mp4"`
}

// WriteConfig controls how rewritten files replace the originals.
type WriteConfig struct {
	BackupSuffix    string `koanf:"backup_suffix"`     // keep the original as <path><suffix>
	PreserveModTime bool   `koanf:"preserve_mod_time"` // restore mtime after a write
	Workers         int    `koanf:"workers"`           // batch concurrency; 0 means NumCPU
}

// ID3Config tunes rewritten ID3v2 tags.
type ID3Config struct {
	Padding     int  `koanf:"padding"`      // zero bytes appended after the frames
	PreferUTF16 bool `koanf:"prefer_utf16"` // encode text as UTF-16 even when Latin-1 fits
}

// VorbisConfig tunes new Vorbis comment blocks.
type VorbisConfig struct {
	Vendor string `koanf:"vendor"`
}

// MP4Config tunes new freeform atoms.
type MP4Config struct {
	FreeformNamespace string `koanf:"freeform_namespace"`
}

// Default returns the settings used when no file overrides them.
func Default() *Config {
	return &Config{
		Vorbis: VorbisConfig{Vendor: "tagengine"},
		MP4:    MP4Config{FreeformNamespace: "com.apple.iTunes"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(expandPath(path)), toml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "load config %s", path)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrapf(err, "decode config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate rejects settings no codec can honor.
func (c *Config) Validate() error {
	if c.Write.Workers < 0 {
		return errors.Errorf("write.workers must not be negative, got %d", c.Write.Workers)
	}
	if c.ID3.Padding < 0 {
		return errors.Errorf("id3.padding must not be negative, got %d", c.ID3.Padding)
	}
	return nil
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
