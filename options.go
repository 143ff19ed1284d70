package archive

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// HeaderSize adalah lebar header panjang metadata di awal arsip (byte).
type HeaderSize int

const (
	Header32 HeaderSize = 4 // metadata hingga 4 GiB
	Header64 HeaderSize = 8
)

func (h HeaderSize) valid() error {
	if h != Header32 && h != Header64 {
		return errors.Wrapf(ErrHeaderSize, "got %d", int(h))
	}
	return nil
}

// VerifyMode controls how the metadata region is checked before a view is
// built over it.
type VerifyMode int

const (
	// VerifyChecked validates the encoded structure of the metadata region.
	VerifyChecked VerifyMode = iota

	// VerifyTrusted skips structural validation. The caller asserts that the
	// archive was produced by a trusted Encoder and has not been modified; a
	// malformed region may panic on field access. The header bound check still
	// runs.
	VerifyTrusted
)

func (m VerifyMode) String() string {
	switch m {
	case VerifyChecked:
		return "checked"
	case VerifyTrusted:
		return "trusted"
	}
	return "unknown"
}

// EncoderOptions menyediakan opsi konfigurasi untuk Encoder.
//
//   - HeaderSize:    lebar header (Header32 atau Header64), harus sama dengan Reader
//   - DigestPayload: isi PayloadDigest dengan blake3 dari payload
//   - Sync:          fsync file sebelum ditutup (WriteFile)
//   - Logger:        logger untuk pesan debug (nil = logger standar logrus)
type EncoderOptions struct {
	HeaderSize    HeaderSize
	DigestPayload bool
	Sync          bool
	Logger        *logrus.Entry
}

// ReaderOptions menyediakan opsi konfigurasi untuk Open dan NewReader.
//
//   - HeaderSize: lebar header yang dipakai saat encode
//   - UseMmap:    petakan file ke memori; false = baca metadata dengan ReadAt
//   - Verify:     VerifyChecked (default) atau VerifyTrusted
//   - Logger:     logger untuk pesan debug (nil = logger standar logrus)
type ReaderOptions struct {
	HeaderSize HeaderSize
	UseMmap    bool
	Verify     VerifyMode
	Logger     *logrus.Entry
}

// DefaultEncoderOptions mengembalikan konfigurasi default Encoder.
func DefaultEncoderOptions() EncoderOptions {
	return EncoderOptions{
		HeaderSize: Header32,
	}
}

// DefaultReaderOptions mengembalikan konfigurasi default Reader.
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{
		HeaderSize: Header32,
		UseMmap:    true,
		Verify:     VerifyChecked,
	}
}

func loggerOrDefault(l *logrus.Entry) *logrus.Entry {
	if l != nil {
		return l
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
