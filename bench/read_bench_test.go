package bench_test

import (
	"database/sql"
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"

	archive "github.com/luhtfiimanal/go-meta-archive"
	_ "modernc.org/sqlite"
)

var payloadSizes = []int{1 << 10, 1 << 20, 16 << 20}

// prepareStores menulis satu arsip dan satu baris sqlite dengan payload
// berukuran size.
func prepareStores(b *testing.B, size int) (string, *sql.DB) {
	b.Helper()
	dir := b.TempDir()
	r := randomRow(rand.New(rand.NewSource(int64(size))), 1, size)

	enc, err := archive.NewEncoder(archive.DefaultEncoderOptions())
	if err != nil {
		b.Fatalf("create encoder: %v", err)
	}
	path := archivePath(dir, 1)
	if _, err := enc.WriteFile(path, r.record(), r.Payload); err != nil {
		b.Fatalf("archive write: %v", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "bench.db"))
	if err != nil {
		b.Fatalf("open sqlite: %v", err)
	}
	if _, err := db.Exec(createTable); err != nil {
		b.Fatalf("create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO tbl (id, name, age, description, payload) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.Name, int(r.Age), r.Description, r.Payload); err != nil {
		b.Fatalf("sqlite insert: %v", err)
	}
	return path, db
}

// BenchmarkDecodeMetadata membuka arsip dan membaca metadata saja. Waktu per
// operasi tidak boleh bergantung pada ukuran payload.
func BenchmarkDecodeMetadata(b *testing.B) {
	for _, size := range payloadSizes {
		path, db := prepareStores(b, size)

		for _, mode := range []struct {
			name    string
			useMmap bool
		}{{"mmap", true}, {"file", false}} {
			opts := archive.DefaultReaderOptions()
			opts.UseMmap = mode.useMmap
			b.Run(fmt.Sprintf("%s/payload=%d", mode.name, size), func(bb *testing.B) {
				bb.ReportAllocs()
				for i := 0; i < bb.N; i++ {
					a, err := archive.Open(path, opts)
					if err != nil {
						bb.Fatalf("open: %v", err)
					}
					if len(a.Metadata().NameBytes()) != asciiLen {
						bb.Fatalf("unexpected name %q", a.Metadata().Name())
					}
					a.Close()
				}
			})
		}

		b.Run(fmt.Sprintf("sqlite/payload=%d", size), func(bb *testing.B) {
			for i := 0; i < bb.N; i++ {
				var name string
				var age int
				if err := db.QueryRow(`SELECT name, age FROM tbl WHERE id=1`).Scan(&name, &age); err != nil {
					bb.Fatalf("sqlite read: %v", err)
				}
			}
		})
		db.Close()
	}
}

// BenchmarkReadPayload membaca seluruh payload per iterasi.
func BenchmarkReadPayload(b *testing.B) {
	size := payloadSizes[1]
	path, db := prepareStores(b, size)
	defer db.Close()

	a, err := archive.Open(path, archive.DefaultReaderOptions())
	if err != nil {
		b.Fatalf("open: %v", err)
	}
	defer a.Close()

	b.Run("mmap", func(bb *testing.B) {
		bb.SetBytes(int64(size))
		var sum byte
		for i := 0; i < bb.N; i++ {
			p, err := a.Payload()
			if err != nil {
				bb.Fatalf("payload: %v", err)
			}
			for _, c := range p {
				sum ^= c
			}
		}
		_ = sum
	})

	b.Run("sqlite", func(bb *testing.B) {
		bb.SetBytes(int64(size))
		for i := 0; i < bb.N; i++ {
			var p []byte
			if err := db.QueryRow(`SELECT payload FROM tbl WHERE id=1`).Scan(&p); err != nil {
				bb.Fatalf("sqlite read: %v", err)
			}
		}
	})
}
