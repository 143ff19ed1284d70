package archive

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "metaarchive"
	subsystem = "archive"
)

var (
	encodedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "encoded_total",
		Help:      "Number of archives produced by an Encoder.",
	})

	openedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "opened_total",
		Help:      "Number of archives opened, by access mode.",
	}, []string{"mode"})

	failuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "failures_total",
		Help:      "Number of failed archive operations, by operation and error kind.",
	}, []string{"op", "kind"})

	metadataBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "metadata_bytes",
		Help:      "Size of encoded metadata regions.",
		Buckets:   prometheus.ExponentialBuckets(16, 4, 8),
	})
)

// RegisterMetrics registers the package collectors with reg. Registering
// again with the same registry is a no-op; any other registration error is
// returned.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{encodedTotal, openedTotal, failuresTotal, metadataBytes} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) && are.ExistingCollector == c {
				continue
			}
			return errors.Wrap(err, "register metrics")
		}
	}
	return nil
}
