package archive

import (
	"os"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Config is the on-disk form of EncoderOptions and ReaderOptions. Both sides
// of an archive must agree on HeaderSize, so it is usually shared through one
// file.
type Config struct {
	HeaderSize    int    `toml:"header_size" default:"4" comment:"width of the metadata length header in bytes: 4 or 8"`
	UseMmap       bool   `toml:"use_mmap" default:"true" comment:"map archives into memory when reading"`
	Verify        string `toml:"verify" default:"checked" comment:"metadata verification: checked or trusted"`
	DigestPayload bool   `toml:"digest_payload" default:"false" comment:"store a blake3 digest of the payload in the metadata"`
	Sync          bool   `toml:"sync" default:"false" comment:"fsync archives after writing"`
}

// DefaultConfig returns the configuration matching DefaultEncoderOptions and
// DefaultReaderOptions.
func DefaultConfig() Config {
	return Config{
		HeaderSize: int(Header32),
		UseMmap:    true,
		Verify:     VerifyChecked.String(),
	}
}

// LoadConfig loads the TOML config at path. If the file does not exist it is
// created with DefaultConfig so later runs see the same values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := DefaultConfig()
		out, err := toml.Marshal(cfg)
		if err != nil {
			return Config{}, errors.Wrap(err, "encode config")
		}
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return Config{}, errors.Wrap(err, "create config file")
		}
		return cfg, nil
	}
	if err != nil {
		return Config{}, errors.Wrap(err, "read config file")
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "decode config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate checks that every value maps to a supported option.
func (c Config) Validate() error {
	if err := HeaderSize(c.HeaderSize).valid(); err != nil {
		return err
	}
	_, err := ParseVerifyMode(c.Verify)
	return err
}

// ParseVerifyMode parses "checked" or "trusted". The empty string means
// checked.
func ParseVerifyMode(s string) (VerifyMode, error) {
	switch s {
	case "", "checked":
		return VerifyChecked, nil
	case "trusted":
		return VerifyTrusted, nil
	}
	return VerifyChecked, errors.Errorf("unknown verify mode %q", s)
}

// EncoderOptions returns the encoder side of c, or an error if c is invalid.
func (c Config) EncoderOptions() (EncoderOptions, error) {
	if err := c.Validate(); err != nil {
		return EncoderOptions{}, err
	}
	return EncoderOptions{
		HeaderSize:    HeaderSize(c.HeaderSize),
		DigestPayload: c.DigestPayload,
		Sync:          c.Sync,
	}, nil
}

// ReaderOptions returns the reader side of c, or an error if c is invalid.
func (c Config) ReaderOptions() (ReaderOptions, error) {
	if err := c.Validate(); err != nil {
		return ReaderOptions{}, err
	}
	mode, err := ParseVerifyMode(c.Verify)
	if err != nil {
		return ReaderOptions{}, err
	}
	return ReaderOptions{
		HeaderSize: HeaderSize(c.HeaderSize),
		UseMmap:    c.UseMmap,
		Verify:     mode,
	}, nil
}
