package archive

import (
	"math"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// mapping merepresentasikan satu file arsip yang terbuka.
//
// Apabila opsi `UseMmap` aktif, field `data` berisi hasil `unix.Mmap` atas
// seluruh file (read-only, MAP_SHARED) sehingga metadata dan payload cukup
// diakses sebagai slice tanpa syscall I/O. Tanpa mmap, `data` nil dan file
// dipakai langsung sebagai io.ReaderAt.
type mapping struct {
	file *os.File // descriptor file fisik
	data []byte   // region memory-map (nil bila mmap dimatikan)
	path string
	size int64
}

// openFile membuka path untuk dibaca dan mencatat ukurannya.
func openFile(path string) (*mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioError("open", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ioError("stat", path, err)
	}
	if !st.Mode().IsRegular() {
		f.Close()
		return nil, ioError("open", path, errors.Errorf("not a regular file: %s", st.Mode()))
	}
	return &mapping{file: f, path: path, size: st.Size()}, nil
}

// mmap memetakan seluruh file. File kosong tidak bisa dipetakan, jadi pemanggil
// harus sudah menolak ukuran di bawah header.
func (m *mapping) mmap() error {
	if m.size > math.MaxInt {
		return ioError("mmap", m.path, errors.Errorf("file size %d exceeds address space", m.size))
	}
	data, err := unix.Mmap(int(m.file.Fd()), 0, int(m.size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return ioError("mmap", m.path, err)
	}
	// Akses acak: jangan biarkan readahead kernel ikut menarik halaman payload.
	_ = unix.Madvise(data, unix.MADV_RANDOM)
	m.data = data
	return nil
}

// close melepas mmap lalu menutup file; error pertama yang dikembalikan.
func (m *mapping) close() error {
	var firstErr error
	if m.data != nil {
		if err := unix.Munmap(m.data); err != nil {
			firstErr = ioError("munmap", m.path, err)
		}
		m.data = nil
	}
	if err := m.file.Close(); err != nil && firstErr == nil {
		firstErr = ioError("close", m.path, err)
	}
	return firstErr
}
