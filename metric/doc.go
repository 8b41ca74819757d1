// Package metric provides Prometheus-based metrics for the envelope codec.
//
// CodecMetrics implements the envelope.Observer interface, so attaching it
// to a codec is a single option:
//
//	metrics := metric.NewCodecMetrics()
//	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
//	    log.Fatal(err)
//	}
//	codec := envelope.NewCodec(registry, envelope.WithObserver(metrics))
//
// Encode and decode totals are labelled by wire type tag; decode failures
// are labelled by taxonomy kind (malformed_input, unknown_type, ...), so
// unsupported-type noise is distinguishable from corrupt payloads on a
// dashboard without log diving.
package metric
