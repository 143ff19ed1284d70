package archive

import (
	"io"
	"os"
	"sync"
	"sync/atomic"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/sirupsen/logrus"
)

// Encoder menghasilkan arsip header ++ metadata ++ payload.
//
// Semua operasi aman untuk goroutine; builder flatbuffers dipakai ulang lewat
// sync.Pool.
type Encoder struct {
	// diakses secara atomik; tetap di awal struct agar 64-bit aligned
	statEncoded       uint64
	statFailures      uint64
	statMetadataBytes uint64
	statPayloadBytes  uint64

	opts     EncoderOptions
	log      *logrus.Entry
	builders sync.Pool
}

// NewEncoder membuat Encoder dengan opsi yang diberikan.
func NewEncoder(opts EncoderOptions) (*Encoder, error) {
	if err := opts.HeaderSize.valid(); err != nil {
		return nil, err
	}
	return &Encoder{
		opts: opts,
		log:  loggerOrDefault(opts.Logger).WithField("component", "encoder"),
	}, nil
}

// EncodeMetadata serializes rec as given, without header or payload. The
// returned slice is owned by the caller.
func (e *Encoder) EncodeMetadata(rec MetadataRecord) ([]byte, error) {
	meta, err := e.encodeMetadata(rec)
	if err != nil {
		e.fail("encode", err)
		return nil, err
	}
	return meta, nil
}

func (e *Encoder) encodeMetadata(rec MetadataRecord) ([]byte, error) {
	if err := validateRecord(rec); err != nil {
		return nil, err
	}
	b := e.getBuilder()
	meta, err := encodeRecord(b, rec)
	if err != nil {
		// builder state is unknown after a recovered panic
		return nil, err
	}
	e.returnBuilder(b)
	return meta, nil
}

// frame encodes rec for payload and returns the header, the metadata and the
// resulting layout.
func (e *Encoder) frame(rec MetadataRecord, payload []byte) ([]byte, []byte, Layout, error) {
	if e.opts.DigestPayload {
		rec.PayloadDigest = Digest(payload)
	}
	meta, err := e.encodeMetadata(rec)
	if err != nil {
		return nil, nil, Layout{}, err
	}
	hdr := make([]byte, e.opts.HeaderSize)
	if err := putHeader(hdr, e.opts.HeaderSize, uint64(len(meta))); err != nil {
		return nil, nil, Layout{}, err
	}
	l := Layout{
		HeaderSize:  e.opts.HeaderSize,
		MetadataLen: uint64(len(meta)),
		PayloadLen:  uint64(len(payload)),
		RootOffset:  uint32(flatbuffers.GetUOffsetT(meta)),
	}
	return hdr, meta, l, nil
}

// Encode returns the complete archive for rec and payload in one buffer.
func (e *Encoder) Encode(rec MetadataRecord, payload []byte) ([]byte, Layout, error) {
	hdr, meta, l, err := e.frame(rec, payload)
	if err != nil {
		e.fail("encode", err)
		return nil, Layout{}, err
	}
	out := make([]byte, 0, l.Size())
	out = append(out, hdr...)
	out = append(out, meta...)
	out = append(out, payload...)
	e.done(l)
	return out, l, nil
}

// EncodeTo streams the archive to w without building it in memory first.
func (e *Encoder) EncodeTo(w io.Writer, rec MetadataRecord, payload []byte) (Layout, error) {
	hdr, meta, l, err := e.frame(rec, payload)
	if err == nil {
		err = writeParts(w, "", hdr, meta, payload)
	}
	if err != nil {
		e.fail("write", err)
		return Layout{}, err
	}
	e.done(l)
	return l, nil
}

func writeParts(w io.Writer, path string, parts ...[]byte) error {
	for _, part := range parts {
		if _, err := w.Write(part); err != nil {
			return ioError("write", path, err)
		}
	}
	return nil
}

// WriteFile writes the archive to path, replacing any existing file. The
// record is encoded before path is touched, so an encoding failure leaves an
// existing file intact. A partial file is removed when writing fails.
func (e *Encoder) WriteFile(path string, rec MetadataRecord, payload []byte) (l Layout, err error) {
	defer func() {
		if err != nil {
			e.fail("write", err)
		}
	}()

	hdr, meta, l, err := e.frame(rec, payload)
	if err != nil {
		return Layout{}, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return Layout{}, ioError("create", path, err)
	}
	err = writeParts(f, path, hdr, meta, payload)
	if err == nil && e.opts.Sync {
		if serr := f.Sync(); serr != nil {
			err = ioError("sync", path, serr)
		}
	}
	if cerr := f.Close(); cerr != nil && err == nil {
		err = ioError("close", path, cerr)
	}
	if err != nil {
		os.Remove(path)
		return Layout{}, err
	}

	e.done(l)
	e.log.WithFields(logrus.Fields{
		"path":         path,
		"metadata_len": l.MetadataLen,
		"payload_len":  l.PayloadLen,
	}).Debug("archive written")
	return l, nil
}

func (e *Encoder) done(l Layout) {
	atomic.AddUint64(&e.statEncoded, 1)
	atomic.AddUint64(&e.statMetadataBytes, l.MetadataLen)
	atomic.AddUint64(&e.statPayloadBytes, l.PayloadLen)
	encodedTotal.Inc()
	metadataBytes.Observe(float64(l.MetadataLen))
}

func (e *Encoder) fail(op string, err error) {
	atomic.AddUint64(&e.statFailures, 1)
	failuresTotal.WithLabelValues(op, kindLabel(err)).Inc()
	e.log.WithError(err).WithField("op", op).Debug("encode failed")
}
