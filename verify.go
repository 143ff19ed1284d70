package archive

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/pkg/errors"
)

// vtable slots of the Meta table, in schema order.
const (
	slotName          = 4
	slotAge           = 6
	slotDescription   = 8
	slotPayloadDigest = 10
)

var stringSlots = [...]struct {
	slot uint64
	name string
}{
	{slotName, "name"},
	{slotDescription, "description"},
	{slotPayloadDigest, "payload_digest"},
}

// verifier walks an encoded Meta table and checks that every offset the
// accessors will follow stays inside buf. base is the absolute archive offset
// of buf[0] and only affects error reporting.
type verifier struct {
	buf  []byte
	base uint64
}

func (v *verifier) fail(off, want, have uint64, format string, args ...interface{}) error {
	return &Error{
		Kind:   ErrInvalidMetadata,
		Op:     "verify metadata",
		Offset: v.base + off,
		Want:   want,
		Have:   have,
		Err:    errors.Errorf(format, args...),
	}
}

func (v *verifier) need(off, n uint64, what string) error {
	size := uint64(len(v.buf))
	if off > size || n > size-off {
		var have uint64
		if off < size {
			have = size - off
		}
		return v.fail(off, n, have, "%s out of bounds", what)
	}
	return nil
}

func (v *verifier) u16(off uint64) uint64 { return uint64(binary.LittleEndian.Uint16(v.buf[off:])) }

func (v *verifier) u32(off uint64) uint64 { return uint64(binary.LittleEndian.Uint32(v.buf[off:])) }

// verifyMetadata returns the root table offset of a structurally valid region.
func verifyMetadata(buf []byte, base uint64) (uint32, error) {
	v := &verifier{buf: buf, base: base}
	// table positions are computed with int32 arithmetic by the accessors
	if uint64(len(buf)) > math.MaxInt32 {
		return 0, v.fail(0, math.MaxInt32, uint64(len(buf)), "metadata region exceeds 2 GiB")
	}
	if err := v.need(0, flatbuffers.SizeUOffsetT, "root offset"); err != nil {
		return 0, err
	}
	root := v.u32(0)
	if err := v.need(root, flatbuffers.SizeSOffsetT, "root table"); err != nil {
		return 0, err
	}

	vt := int64(root) - int64(int32(uint32(v.u32(root))))
	if vt < 0 || uint64(vt) >= uint64(len(buf)) {
		return 0, v.fail(root, 0, 0, "vtable position %d out of bounds", vt)
	}
	vtable := uint64(vt)
	if err := v.need(vtable, 2*flatbuffers.SizeVOffsetT, "vtable header"); err != nil {
		return 0, err
	}
	vtLen, tblLen := v.u16(vtable), v.u16(vtable+2)
	if vtLen < 4 || vtLen%2 != 0 {
		return 0, v.fail(vtable, 0, 0, "malformed vtable length %d", vtLen)
	}
	if err := v.need(vtable, vtLen, "vtable"); err != nil {
		return 0, err
	}
	if tblLen < flatbuffers.SizeSOffsetT {
		return 0, v.fail(vtable+2, 0, 0, "malformed table length %d", tblLen)
	}
	if err := v.need(root, tblLen, "table"); err != nil {
		return 0, err
	}

	field := func(slot uint64) uint64 {
		if slot+2 > vtLen {
			return 0
		}
		return v.u16(vtable + slot)
	}

	if field(slotName) == 0 {
		return 0, v.fail(root, 0, 0, "required field name is missing")
	}
	for _, s := range stringSlots {
		if off := field(s.slot); off != 0 {
			if err := v.str(root, tblLen, off, s.name); err != nil {
				return 0, err
			}
		}
	}
	if off := field(slotAge); off != 0 && off+1 > tblLen {
		return 0, v.fail(root+off, 1, tblLen-min(off, tblLen), "field age overruns table")
	}
	return uint32(root), nil
}

func (v *verifier) str(root, tblLen, off uint64, name string) error {
	if off+flatbuffers.SizeUOffsetT > tblLen {
		return v.fail(root+off, flatbuffers.SizeUOffsetT, tblLen-min(off, tblLen), "field %s overruns table", name)
	}
	pos := root + off
	at := pos + v.u32(pos)
	if err := v.need(at, flatbuffers.SizeUOffsetT, name+" length"); err != nil {
		return err
	}
	n := v.u32(at)
	start := at + flatbuffers.SizeUOffsetT
	// n bytes plus the NUL terminator the encoding always writes
	if err := v.need(start, n+1, name); err != nil {
		return err
	}
	if v.buf[start+n] != 0 {
		return v.fail(start+n, 0, 0, "field %s is not NUL-terminated", name)
	}
	if !utf8.Valid(v.buf[start : start+n]) {
		return v.fail(start, 0, 0, "field %s is not valid UTF-8", name)
	}
	return nil
}
