package archive

import "sync/atomic"

// EncoderStats menyimpan statistik Encoder sejak dibuat atau sejak ResetStats.
type EncoderStats struct {
	Encoded       uint64 // arsip yang berhasil dihasilkan
	Failures      uint64
	MetadataBytes uint64 // total byte metadata yang ditulis
	PayloadBytes  uint64
}

// Stats mengambil snapshot statistik tanpa lock.
func (e *Encoder) Stats() EncoderStats {
	return EncoderStats{
		Encoded:       atomic.LoadUint64(&e.statEncoded),
		Failures:      atomic.LoadUint64(&e.statFailures),
		MetadataBytes: atomic.LoadUint64(&e.statMetadataBytes),
		PayloadBytes:  atomic.LoadUint64(&e.statPayloadBytes),
	}
}

// ResetStats mengatur ulang semua penghitung.
func (e *Encoder) ResetStats() {
	atomic.StoreUint64(&e.statEncoded, 0)
	atomic.StoreUint64(&e.statFailures, 0)
	atomic.StoreUint64(&e.statMetadataBytes, 0)
	atomic.StoreUint64(&e.statPayloadBytes, 0)
}

// HeaderSize mengembalikan lebar header yang dipakai Encoder.
func (e *Encoder) HeaderSize() HeaderSize { return e.opts.HeaderSize }

// Layout mengembalikan posisi setiap region di arsip.
func (a *Archive) Layout() Layout { return a.layout }

// Path mengembalikan path file arsip, kosong untuk arsip di memori.
func (a *Archive) Path() string { return a.path }

// Mode mengembalikan cara arsip dibuka: "mmap", "file" atau "memory".
func (a *Archive) Mode() string { return string(a.mode) }
