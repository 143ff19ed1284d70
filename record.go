package archive

import (
	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/luhtfiimanal/go-meta-archive/internal/metafb"
)

// MetadataRecord is the small structured descriptor stored in front of the
// payload. Strings must be valid UTF-8.
type MetadataRecord struct {
	Name        string
	Age         uint8
	Description string

	// PayloadDigest is "blake3:<hex>" of the payload, or empty. The Encoder
	// fills it when EncoderOptions.DigestPayload is set.
	PayloadDigest string
}

// MetadataView reads record fields in place from the archive's memory. The
// *Bytes accessors return sub-slices of that memory and must be treated as
// read-only; the string accessors copy.
//
// A view is only valid until the Archive that returned it is closed.
type MetadataView struct {
	meta metafb.Meta
}

func (v *MetadataView) init(region []byte) {
	v.meta.Init(region, flatbuffers.GetUOffsetT(region))
}

func (v *MetadataView) NameBytes() []byte { return v.meta.Name() }

func (v *MetadataView) Name() string { return string(v.meta.Name()) }

func (v *MetadataView) Age() uint8 { return v.meta.Age() }

func (v *MetadataView) DescriptionBytes() []byte { return v.meta.Description() }

func (v *MetadataView) Description() string { return string(v.meta.Description()) }

func (v *MetadataView) PayloadDigestBytes() []byte { return v.meta.PayloadDigest() }

func (v *MetadataView) PayloadDigest() string { return string(v.meta.PayloadDigest()) }

// Record copies every field into an owned MetadataRecord that stays valid after
// the archive is closed.
func (v *MetadataView) Record() MetadataRecord {
	return MetadataRecord{
		Name:          v.Name(),
		Age:           v.Age(),
		Description:   v.Description(),
		PayloadDigest: v.PayloadDigest(),
	}
}
