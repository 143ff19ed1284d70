package archive

import (
	flatbuffers "github.com/google/flatbuffers/go"
)

const (
	initialBuilderSize = 256
	// builder yang tumbuh melebihi batas ini tidak dikembalikan ke pool supaya
	// satu record besar tidak menahan memori selamanya.
	maxPooledBuilderSize = 1 << 20
)

// getBuilder mengambil builder dari pool atau membuat baru jika tidak tersedia.
func (e *Encoder) getBuilder() *flatbuffers.Builder {
	if b, ok := e.builders.Get().(*flatbuffers.Builder); ok {
		return b
	}
	return flatbuffers.NewBuilder(initialBuilderSize)
}

// returnBuilder mengembalikan builder yang sudah di-reset ke pool. Bytes hasil
// encode selalu disalin keluar sebelum builder kembali ke pool.
func (e *Encoder) returnBuilder(b *flatbuffers.Builder) {
	if cap(b.Bytes) > maxPooledBuilderSize {
		return
	}
	b.Reset()
	e.builders.Put(b)
}
