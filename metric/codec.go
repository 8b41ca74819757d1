package metric

import (
	stderrors "errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/haoxiangmiao/ditto/errors"
)

// CodecMetrics holds the codec-level Prometheus collectors. It implements
// envelope.Observer and is safe for concurrent use.
type CodecMetrics struct {
	EnvelopesEncoded *prometheus.CounterVec
	EnvelopesDecoded *prometheus.CounterVec
	DecodeFailures   *prometheus.CounterVec
}

// NewCodecMetrics creates the codec metric collectors, unregistered.
func NewCodecMetrics() *CodecMetrics {
	return &CodecMetrics{
		EnvelopesEncoded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ditto",
				Subsystem: "codec",
				Name:      "envelopes_encoded_total",
				Help:      "Total number of envelopes encoded to wire bytes",
			},
			[]string{"type"},
		),

		EnvelopesDecoded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ditto",
				Subsystem: "codec",
				Name:      "envelopes_decoded_total",
				Help:      "Total number of envelopes decoded from wire bytes",
			},
			[]string{"type"},
		),

		DecodeFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ditto",
				Subsystem: "codec",
				Name:      "decode_failures_total",
				Help:      "Total number of decode failures by taxonomy kind",
			},
			[]string{"kind"},
		),
	}
}

// Register adds all collectors to a Prometheus registerer.
func (m *CodecMetrics) Register(reg prometheus.Registerer) error {
	for _, collector := range []prometheus.Collector{
		m.EnvelopesEncoded,
		m.EnvelopesDecoded,
		m.DecodeFailures,
	} {
		if err := reg.Register(collector); err != nil {
			var alreadyRegErr prometheus.AlreadyRegisteredError
			if stderrors.As(err, &alreadyRegErr) {
				return errors.WrapInvalid(err, "CodecMetrics", "Register",
					"duplicate collector registration")
			}
			return errors.WrapFatal(err, "CodecMetrics", "Register",
				"collector registration")
		}
	}
	return nil
}

// EnvelopeEncoded implements envelope.Observer.
func (m *CodecMetrics) EnvelopeEncoded(typeTag string) {
	m.EnvelopesEncoded.WithLabelValues(typeTag).Inc()
}

// EnvelopeDecoded implements envelope.Observer.
func (m *CodecMetrics) EnvelopeDecoded(typeTag string) {
	m.EnvelopesDecoded.WithLabelValues(typeTag).Inc()
}

// DecodeFailed implements envelope.Observer.
func (m *CodecMetrics) DecodeFailed(kind string) {
	m.DecodeFailures.WithLabelValues(kind).Inc()
}
