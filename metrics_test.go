package archive

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterMetrics(reg))
	// registering twice with the same registry is harmless
	require.NoError(t, RegisterMetrics(reg))

	enc, err := NewEncoder(DefaultEncoderOptions())
	require.NoError(t, err)
	_, _, err = enc.Encode(MetadataRecord{Name: "metric"}, nil)
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg,
		"metaarchive_archive_encoded_total",
		"metaarchive_archive_metadata_bytes",
	)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// a second registry gets the collectors too
	other := prometheus.NewRegistry()
	require.NoError(t, RegisterMetrics(other))
	n, err = testutil.GatherAndCount(other, "metaarchive_archive_encoded_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// a foreign collector with the same name is reported
	clash := prometheus.NewRegistry()
	require.NoError(t, clash.Register(prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "metaarchive", Subsystem: "archive", Name: "encoded_total", Help: "Number of archives produced by an Encoder.",
	})))
	err = RegisterMetrics(clash)
	var are prometheus.AlreadyRegisteredError
	assert.ErrorAs(t, err, &are)
}

func TestMetricsCount(t *testing.T) {
	enc, err := NewEncoder(DefaultEncoderOptions())
	require.NoError(t, err)

	encoded := testutil.ToFloat64(encodedTotal)
	buf, _, err := enc.Encode(MetadataRecord{Name: "counted"}, []byte("p"))
	require.NoError(t, err)
	assert.Equal(t, encoded+1, testutil.ToFloat64(encodedTotal))

	opened := testutil.ToFloat64(openedTotal.WithLabelValues("memory"))
	a, err := NewReader(buf, DefaultReaderOptions())
	require.NoError(t, err)
	require.NoError(t, a.Close())
	assert.Equal(t, opened+1, testutil.ToFloat64(openedTotal.WithLabelValues("memory")))

	corrupt := testutil.ToFloat64(failuresTotal.WithLabelValues("open", "corrupt"))
	_, err = NewReader(buf[:2], DefaultReaderOptions())
	require.ErrorIs(t, err, ErrCorruptArchive)
	assert.Equal(t, corrupt+1, testutil.ToFloat64(failuresTotal.WithLabelValues("open", "corrupt")))

	invalid := testutil.ToFloat64(failuresTotal.WithLabelValues("encode", "encoding"))
	_, err = enc.EncodeMetadata(MetadataRecord{Name: "\xff"})
	require.ErrorIs(t, err, ErrEncoding)
	assert.Equal(t, invalid+1, testutil.ToFloat64(failuresTotal.WithLabelValues("encode", "encoding")))
}
