package bench_test

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"

	archive "github.com/luhtfiimanal/go-meta-archive"
	_ "modernc.org/sqlite"
)

type testRow struct {
	ID          int64
	Name        string
	Age         uint8
	Description string
	Payload     []byte
}

const (
	asciiLen    = 16
	payloadSize = 4 << 10
)

const createTable = `CREATE TABLE tbl (id INTEGER PRIMARY KEY, name TEXT NOT NULL, age INTEGER, description TEXT, payload BLOB);`

func randomASCII(rng *rand.Rand, n int) string {
	letters := []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rng.Intn(len(letters))]
	}
	return string(b)
}

func randomRow(rng *rand.Rand, id int64, size int) testRow {
	p := make([]byte, size)
	rng.Read(p)
	return testRow{
		ID:          id,
		Name:        randomASCII(rng, asciiLen),
		Age:         uint8(rng.Intn(256)),
		Description: randomASCII(rng, asciiLen),
		Payload:     p,
	}
}

func (r testRow) record() archive.MetadataRecord {
	return archive.MetadataRecord{Name: r.Name, Age: r.Age, Description: r.Description}
}

func archivePath(dir string, id int64) string {
	return filepath.Join(dir, fmt.Sprintf("%06d.archive", id))
}

// TestCompareWithSQLite menulis record yang sama ke arsip dan SQLite lalu
// memvalidasi keduanya identik.
func TestCompareWithSQLite(t *testing.T) {
	const total = 200
	rng := rand.New(rand.NewSource(1))
	dir := t.TempDir()

	enc, err := archive.NewEncoder(archive.DefaultEncoderOptions())
	if err != nil {
		t.Fatalf("create encoder: %v", err)
	}

	// --- Prepare SQLite (in-memory DB)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		t.Fatalf("create table: %v", err)
	}
	stmt, err := db.PrepareContext(ctx, `INSERT INTO tbl (id, name, age, description, payload) VALUES (?, ?, ?, ?, ?);`)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	defer stmt.Close()

	for i := int64(1); i <= total; i++ {
		r := randomRow(rng, i, payloadSize)
		if _, err := enc.WriteFile(archivePath(dir, i), r.record(), r.Payload); err != nil {
			t.Fatalf("archive write %d: %v", i, err)
		}
		if _, err := stmt.ExecContext(ctx, r.ID, r.Name, int(r.Age), r.Description, r.Payload); err != nil {
			t.Fatalf("sqlite insert %d: %v", i, err)
		}
	}

	// Validate random subset
	for i := 0; i < 50; i++ {
		id := int64(rng.Intn(total) + 1)

		a, err := archive.Open(archivePath(dir, id), archive.DefaultReaderOptions())
		if err != nil {
			t.Fatalf("archive open %d: %v", id, err)
		}
		payload, err := a.Payload()
		if err != nil {
			t.Fatalf("archive payload %d: %v", id, err)
		}
		m := a.Metadata()
		got := testRow{ID: id, Name: m.Name(), Age: m.Age(), Description: m.Description(), Payload: bytes.Clone(payload)}
		a.Close()

		var sq testRow
		var age int
		row := db.QueryRowContext(ctx, `SELECT id, name, age, description, payload FROM tbl WHERE id=?;`, id)
		if err := row.Scan(&sq.ID, &sq.Name, &age, &sq.Description, &sq.Payload); err != nil {
			t.Fatalf("sqlite read %d: %v", id, err)
		}
		sq.Age = uint8(age)

		if got.Name != sq.Name || got.Age != sq.Age || got.Description != sq.Description || !bytes.Equal(got.Payload, sq.Payload) {
			t.Fatalf("mismatch for id %d: archive=%+v sqlite=%+v", id, got.record(), sq.record())
		}
	}
}

// BenchmarkWrite membandingkan throughput tulis arsip dan sqlite.
func BenchmarkWrite(b *testing.B) {
	b.Run("archive", func(bb *testing.B) {
		rng := rand.New(rand.NewSource(42))
		dir := bb.TempDir()
		enc, err := archive.NewEncoder(archive.DefaultEncoderOptions())
		if err != nil {
			bb.Fatalf("create encoder: %v", err)
		}
		rows := make([]testRow, bb.N)
		for i := range rows {
			rows[i] = randomRow(rng, int64(i+1), payloadSize)
		}
		bb.ResetTimer()
		for i := 0; i < bb.N; i++ {
			r := rows[i]
			if _, err := enc.WriteFile(archivePath(dir, r.ID), r.record(), r.Payload); err != nil {
				bb.Fatalf("write: %v", err)
			}
		}
	})

	b.Run("sqlite", func(bb *testing.B) {
		rng := rand.New(rand.NewSource(42))
		db, err := sql.Open("sqlite", filepath.Join(bb.TempDir(), "bench.db"))
		if err != nil {
			bb.Fatalf("open sqlite: %v", err)
		}
		defer db.Close()
		if _, err := db.Exec(createTable); err != nil {
			bb.Fatalf("create table: %v", err)
		}
		stmt, err := db.Prepare(`INSERT INTO tbl (id, name, age, description, payload) VALUES (?, ?, ?, ?, ?);`)
		if err != nil {
			bb.Fatalf("prepare: %v", err)
		}
		defer stmt.Close()
		rows := make([]testRow, bb.N)
		for i := range rows {
			rows[i] = randomRow(rng, int64(i+1), payloadSize)
		}
		bb.ResetTimer()
		for i := 0; i < bb.N; i++ {
			r := rows[i]
			if _, err := stmt.Exec(r.ID, r.Name, int(r.Age), r.Description, r.Payload); err != nil {
				bb.Fatalf("insert: %v", err)
			}
		}
	})
}
