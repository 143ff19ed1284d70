package archive

import (
	"bytes"
	"io"
	"math"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type accessMode string

const (
	modeMmap   accessMode = "mmap"
	modeFile   accessMode = "file"
	modeMemory accessMode = "memory"
)

// Archive adalah satu arsip yang sudah dibuka: header terbaca, metadata sudah
// diverifikasi (kecuali VerifyTrusted) dan payload belum pernah disentuh.
//
// Archive tidak berubah setelah dibuka dan aman dibaca dari banyak goroutine.
// Close tidak boleh dipanggil selama masih ada MetadataView atau slice payload
// yang dipakai; hal ini tidak diperiksa saat runtime.
type Archive struct {
	path   string
	mode   accessMode
	m      *mapping // nil untuk NewReader dan OpenReaderAt
	region []byte   // mmap/memory: seluruh arsip; file: header ++ metadata saja
	layout Layout
	meta   MetadataView
	log    *logrus.Entry

	src         *io.SectionReader // region payload
	payload     []byte
	payloadOnce sync.Once
	payloadErr  error

	closed uint32
}

// Open membuka arsip di path. Dengan UseMmap seluruh file dipetakan read-only;
// tanpa mmap hanya header dan metadata yang dibaca dengan ReadAt.
func Open(path string, opts ReaderOptions) (*Archive, error) {
	a, err := open(path, opts)
	if err != nil {
		return nil, openFailed(opts, err)
	}
	a.opened()
	return a, nil
}

func open(path string, opts ReaderOptions) (*Archive, error) {
	if err := opts.HeaderSize.valid(); err != nil {
		return nil, err
	}
	m, err := openFile(path)
	if err != nil {
		return nil, err
	}

	var a *Archive
	if opts.UseMmap {
		// mmap of an empty file fails with EINVAL; report it as a short header.
		if _, err = locate(uint64(m.size), opts.HeaderSize, 0); err == nil {
			if err = m.mmap(); err == nil {
				a, err = fromRegion(m.data, opts, modeMmap)
			}
		}
	} else {
		a, err = fromReaderAt(m.file, m.size, opts)
	}
	if err != nil {
		m.close()
		return nil, withPath(err, path)
	}
	a.m = m
	a.path = path
	return a, nil
}

// OpenReaderAt membaca arsip berukuran size dari r tanpa mmap. Payload
// dibaca dari r hanya saat Payload atau PayloadReader dipakai, jadi r harus
// tetap valid selama Archive dipakai.
func OpenReaderAt(r io.ReaderAt, size int64, opts ReaderOptions) (*Archive, error) {
	a, err := func() (*Archive, error) {
		if err := opts.HeaderSize.valid(); err != nil {
			return nil, err
		}
		if size < 0 {
			return nil, ioError("open", "", errors.Errorf("negative archive size %d", size))
		}
		return fromReaderAt(r, size, opts)
	}()
	if err != nil {
		return nil, openFailed(opts, err)
	}
	a.opened()
	return a, nil
}

// NewReader membuka arsip yang sudah berada di memori. Metadata dan payload
// meminjam region; region tidak boleh diubah selama Archive dipakai.
func NewReader(region []byte, opts ReaderOptions) (*Archive, error) {
	a, err := func() (*Archive, error) {
		if err := opts.HeaderSize.valid(); err != nil {
			return nil, err
		}
		return fromRegion(region, opts, modeMemory)
	}()
	if err != nil {
		return nil, openFailed(opts, err)
	}
	a.opened()
	return a, nil
}

func fromRegion(region []byte, opts ReaderOptions, mode accessMode) (*Archive, error) {
	n, err := readHeader(region, opts.HeaderSize)
	if err != nil {
		return nil, err
	}
	l, err := locate(uint64(len(region)), opts.HeaderSize, n)
	if err != nil {
		return nil, err
	}
	hs, off := int(opts.HeaderSize), int(l.PayloadOffset())
	meta, root, err := decodeMetadata(region[hs:off], uint64(hs), opts.Verify)
	if err != nil {
		return nil, err
	}
	l.RootOffset = root

	payload := region[off:len(region):len(region)]
	return &Archive{
		mode:    mode,
		region:  region,
		layout:  l,
		meta:    meta,
		log:     loggerOrDefault(opts.Logger).WithField("component", "reader"),
		src:     io.NewSectionReader(bytes.NewReader(payload), 0, int64(len(payload))),
		payload: payload,
	}, nil
}

func fromReaderAt(r io.ReaderAt, size int64, opts ReaderOptions) (*Archive, error) {
	h := opts.HeaderSize
	if _, err := locate(uint64(size), h, 0); err != nil {
		return nil, err
	}
	hdr := make([]byte, h)
	if err := readAtFull(r, hdr, 0); err != nil {
		return nil, ioError("read header", "", err)
	}
	n, err := readHeader(hdr, h)
	if err != nil {
		return nil, err
	}
	// Bound check before allocating: a forged 8-byte header must not trigger
	// a huge allocation.
	l, err := locate(uint64(size), h, n)
	if err != nil {
		return nil, err
	}
	if l.PayloadOffset() > math.MaxInt {
		return nil, ioError("read metadata", "", errors.Errorf("metadata region of %d bytes cannot be buffered", l.MetadataLen))
	}

	region := make([]byte, l.PayloadOffset())
	copy(region, hdr)
	if err := readAtFull(r, region[h:], int64(h)); err != nil {
		return nil, ioError("read metadata", "", err)
	}
	meta, root, err := decodeMetadata(region[h:], uint64(h), opts.Verify)
	if err != nil {
		return nil, err
	}
	l.RootOffset = root

	return &Archive{
		mode:   modeFile,
		region: region,
		layout: l,
		meta:   meta,
		log:    loggerOrDefault(opts.Logger).WithField("component", "reader"),
		src:    io.NewSectionReader(r, int64(l.PayloadOffset()), int64(l.PayloadLen)),
	}, nil
}

// Metadata mengembalikan view zero-copy atas record metadata. View tidak boleh
// dipakai setelah Close.
func (a *Archive) Metadata() *MetadataView { return &a.meta }

// Payload mengembalikan region payload. Untuk mmap dan memory, slice meminjam
// memori arsip dan tidak boleh diubah; untuk mode file, payload dibaca sekali
// pada panggilan pertama.
func (a *Archive) Payload() ([]byte, error) {
	if a.isClosed() {
		return nil, ErrClosed
	}
	if a.mode != modeFile {
		return a.payload, nil
	}
	a.payloadOnce.Do(func() {
		if a.layout.PayloadLen > math.MaxInt {
			a.payloadErr = ioError("read payload", a.path, errors.Errorf("payload of %d bytes cannot be buffered", a.layout.PayloadLen))
			return
		}
		buf := make([]byte, a.layout.PayloadLen)
		if err := readAtFull(a.src, buf, 0); err != nil {
			a.payloadErr = ioError("read payload", a.path, err)
			return
		}
		a.payload = buf
	})
	return a.payload, a.payloadErr
}

// PayloadReader mengembalikan reader baru atas region payload tanpa menyalin
// seluruh payload ke memori.
func (a *Archive) PayloadReader() *io.SectionReader {
	return io.NewSectionReader(a.src, 0, a.src.Size())
}

// Close melepas mmap dan menutup file. Panggilan berikutnya tidak berefek.
func (a *Archive) Close() error {
	if !atomic.CompareAndSwapUint32(&a.closed, 0, 1) {
		return nil
	}
	var err error
	if a.m != nil {
		err = a.m.close()
	}
	a.region, a.payload = nil, nil
	a.meta = MetadataView{}
	a.src = io.NewSectionReader(closedReaderAt{}, 0, int64(a.layout.PayloadLen))
	a.log.WithField("path", a.path).Debug("archive closed")
	return err
}

func (a *Archive) isClosed() bool { return atomic.LoadUint32(&a.closed) == 1 }

func (a *Archive) opened() {
	openedTotal.WithLabelValues(string(a.mode)).Inc()
	a.log.WithFields(logrus.Fields{
		"path":         a.path,
		"mode":         a.mode,
		"header_size":  int(a.layout.HeaderSize),
		"metadata_len": a.layout.MetadataLen,
		"payload_len":  a.layout.PayloadLen,
	}).Debug("archive opened")
}

func openFailed(opts ReaderOptions, err error) error {
	failuresTotal.WithLabelValues("open", kindLabel(err)).Inc()
	loggerOrDefault(opts.Logger).WithError(err).Debug("open failed")
	return err
}

type closedReaderAt struct{}

func (closedReaderAt) ReadAt([]byte, int64) (int, error) { return 0, ErrClosed }

// readAtFull fills p from r at off. Per the io.ReaderAt contract a full read
// may come back with io.EOF, which is not an error here.
func readAtFull(r io.ReaderAt, p []byte, off int64) error {
	n, err := r.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

func withPath(err error, path string) error {
	var e *Error
	if errors.As(err, &e) && e.Path == "" {
		e.Path = path
	}
	return err
}
