// Package http adapts envelopes to HTTP exchanges. The envelope status
// becomes the HTTP status line and envelope headers pass through as HTTP
// headers, so a plain HTTP client sees an ordinary REST response.
package http

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"

	"github.com/haoxiangmiao/ditto/envelope"
	"github.com/haoxiangmiao/ditto/errors"
)

// EnvelopeHeader carries the encoded envelope for statuses that forbid a
// response body, 204 No Content in particular.
const EnvelopeHeader = "Ditto-Envelope"

const contentTypeJSON = "application/json"

// defaultMaxResponseSize bounds response bodies read by ReadResponse.
const defaultMaxResponseSize = 1 << 20 // 1 MiB

// transport headers never mirrored into envelope headers.
var transportHeaders = map[string]struct{}{
	EnvelopeHeader:   {},
	"Content-Type":   {},
	"Content-Length": {},
	"Date":           {},
}

// Adapter writes envelopes to HTTP responses and reads them back.
type Adapter struct {
	codec           *envelope.Codec
	version         int
	pred            envelope.Predicate
	logger          *slog.Logger
	maxResponseSize int64
}

// Option is a functional option for configuring the Adapter.
type Option func(*Adapter) error

// WithSchemaVersion selects which declared fields are emitted.
func WithSchemaVersion(version int) Option {
	return func(a *Adapter) error {
		if version < envelope.SchemaVersionV1 || version > envelope.LatestSchemaVersion {
			return errors.WrapFatal(errors.ErrInvalidConfig, "Adapter", "WithSchemaVersion",
				"unsupported schema version")
		}
		a.version = version
		return nil
	}
}

// WithPredicate restricts which declared fields are emitted.
func WithPredicate(pred envelope.Predicate) Option {
	return func(a *Adapter) error {
		if pred == nil {
			pred = envelope.All
		}
		a.pred = pred
		return nil
	}
}

// WithLogger sets a custom structured logger for the adapter.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// WithMaxResponseSize bounds the response bodies ReadResponse accepts.
func WithMaxResponseSize(limit int64) Option {
	return func(a *Adapter) error {
		if limit < 1 {
			return errors.WrapFatal(errors.ErrInvalidConfig, "Adapter", "WithMaxResponseSize",
				"limit must be positive")
		}
		a.maxResponseSize = limit
		return nil
	}
}

// NewAdapter builds an adapter around a codec.
func NewAdapter(codec *envelope.Codec, opts ...Option) (*Adapter, error) {
	if codec == nil {
		return nil, errors.WrapFatal(errors.ErrInvalidConfig, "Adapter", "NewAdapter",
			"codec cannot be nil")
	}

	a := &Adapter{
		codec:           codec,
		version:         envelope.LatestSchemaVersion,
		pred:            envelope.All,
		logger:          slog.Default(),
		maxResponseSize: defaultMaxResponseSize,
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// WriteEnvelope renders the envelope as an HTTP response. Statuses that
// forbid a body, 204 in particular, carry the encoded envelope in the
// EnvelopeHeader instead.
func (a *Adapter) WriteEnvelope(w http.ResponseWriter, env *envelope.Envelope) error {
	if min := env.Definition().RequiredVersion(env.Variant()); a.version < min {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Adapter", "WriteEnvelope",
			fmt.Sprintf("schema version %d drops required fields of %s, need at least %d",
				a.version, env.TypeTag(), min))
	}

	data, err := a.codec.Encode(env, a.version, a.pred)
	if err != nil {
		return err
	}

	env.Headers().ForEach(w.Header().Set)
	w.Header().Set("Content-Type", contentTypeJSON)

	if !bodyAllowed(env.Status()) {
		w.Header().Set(EnvelopeHeader, string(data))
		w.WriteHeader(int(env.Status()))
		return nil
	}

	w.WriteHeader(int(env.Status()))
	if _, err := w.Write(data); err != nil {
		return errors.WrapInvalid(err, "Adapter", "WriteEnvelope", "response write")
	}
	return nil
}

// ReadResponse decodes an HTTP response into an envelope. The HTTP
// status line supplies the response status; the body, or the
// EnvelopeHeader for body-less statuses, supplies everything else.
func (a *Adapter) ReadResponse(resp *http.Response) (*envelope.Envelope, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, a.maxResponseSize+1))
	if err != nil {
		return nil, errors.WrapInvalid(errors.ErrMalformedInput, "Adapter", "ReadResponse",
			"body read")
	}
	if int64(len(body)) > a.maxResponseSize {
		return nil, errors.WrapInvalid(errors.ErrMalformedInput, "Adapter", "ReadResponse",
			"response body exceeds size limit")
	}

	if len(body) == 0 {
		encoded := resp.Header.Get(EnvelopeHeader)
		if encoded == "" {
			return nil, errors.WrapInvalid(errors.ErrMalformedInput, "Adapter", "ReadResponse",
				"empty body without an envelope header")
		}
		body = []byte(encoded)
	}

	return a.codec.DecodeWithStatus(body, envelope.Status(resp.StatusCode), ambientHeaders(resp.Header))
}

// WriteError renders a decode or construction failure as a JSON error
// response without leaking internals to the client.
func (a *Adapter) WriteError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	if errors.IsInvalid(err) {
		code = http.StatusBadRequest
	}

	a.logger.Warn("request failed",
		"kind", envelope.ErrorKind(err),
		"status", code,
		"error", err)

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(code)

	body, _ := json.Marshal(map[string]any{
		"error":  envelope.ErrorKind(err),
		"status": code,
	})
	_, _ = w.Write(body)
}

// bodyAllowed reports whether the HTTP status permits a response body.
func bodyAllowed(s envelope.Status) bool {
	return s != envelope.StatusNoContent
}

// ambientHeaders mirrors HTTP headers into envelope headers in a stable
// key order, leaving transport bookkeeping behind.
func ambientHeaders(h http.Header) envelope.Headers {
	keys := make([]string, 0, len(h))
	for key := range h {
		if _, skip := transportHeaders[key]; skip {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, key := range keys {
		pairs = append(pairs, key, h.Get(key))
	}
	return envelope.NewHeaders(pairs...)
}
