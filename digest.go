package archive

import (
	"encoding/hex"
	"io"

	"github.com/pkg/errors"
	"lukechampine.com/blake3"
)

const digestPrefix = "blake3:"

// Digest returns the payload digest stored in MetadataRecord.PayloadDigest.
func Digest(payload []byte) string {
	sum := blake3.Sum256(payload)
	return digestPrefix + hex.EncodeToString(sum[:])
}

// VerifyPayload hashes the payload and compares it with the stored digest.
// It is the only operation that reads the whole payload; opening never does.
func (a *Archive) VerifyPayload() error {
	if a.isClosed() {
		return ErrClosed
	}
	want := a.meta.PayloadDigest()
	if want == "" {
		return ErrNoDigest
	}

	h := blake3.New(32, nil)
	if _, err := io.Copy(h, a.PayloadReader()); err != nil {
		return ioError("verify payload", a.path, err)
	}
	got := digestPrefix + hex.EncodeToString(h.Sum(nil))
	if got != want {
		err := &Error{
			Kind:   ErrCorruptArchive,
			Op:     "verify payload",
			Path:   a.path,
			Offset: a.layout.PayloadOffset(),
			Err:    errors.Errorf("payload digest %s does not match stored %s", got, want),
		}
		failuresTotal.WithLabelValues("verify", kindLabel(err)).Inc()
		return err
	}
	return nil
}
