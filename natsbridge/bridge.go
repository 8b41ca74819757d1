package natsbridge

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/haoxiangmiao/ditto/envelope"
	"github.com/haoxiangmiao/ditto/errors"
)

// NATS header names used by the bridge. Status rides in a header so
// subscribers can route on it without parsing the body.
const (
	StatusHeader      = "Status"
	CorrelationHeader = "Correlation-Id"
)

// Conn is the slice of a NATS connection the bridge needs. *nats.Conn
// satisfies it.
type Conn interface {
	PublishMsg(msg *nats.Msg) error
	Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error)
	Flush() error
}

// Handler receives decoded envelopes from a subscription.
type Handler func(env *envelope.Envelope)

// Bridge publishes and subscribes envelopes over NATS.
type Bridge struct {
	conn   Conn
	codec  *envelope.Codec
	cfg    Config
	logger *slog.Logger
	pred   envelope.Predicate
}

// NewBridge builds a bridge over an established connection.
func NewBridge(conn Conn, codec *envelope.Codec, cfg Config, opts ...Option) (*Bridge, error) {
	if conn == nil {
		return nil, errors.WrapFatal(errors.ErrInvalidConfig, "Bridge", "NewBridge",
			"connection cannot be nil")
	}
	if codec == nil {
		return nil, errors.WrapFatal(errors.ErrInvalidConfig, "Bridge", "NewBridge",
			"codec cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := &Bridge{
		conn:   conn,
		codec:  codec,
		cfg:    cfg,
		logger: slog.Default(),
		pred:   envelope.All,
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, errors.WrapFatal(err, "Bridge", "NewBridge", "apply option")
		}
	}
	return b, nil
}

// SubjectFor derives the publish subject of an envelope from its type
// tag, e.g. "ditto.responses.things.responses.modifyAttribute".
func (b *Bridge) SubjectFor(env *envelope.Envelope) string {
	return b.cfg.SubjectPrefix + "." + strings.ReplaceAll(env.TypeTag(), ":", ".")
}

// Publish encodes the envelope and sends it on its derived subject. The
// envelope's headers become NATS headers; a correlation id is generated
// when the envelope does not carry one. The correlation id in effect is
// returned so callers can match the eventual consumer.
func (b *Bridge) Publish(ctx context.Context, env *envelope.Envelope) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.WrapInvalid(err, "Bridge", "Publish", "context check")
	}
	if min := env.Definition().RequiredVersion(env.Variant()); b.cfg.SchemaVersion < min {
		return "", errors.WrapInvalid(errors.ErrInvalidConfig, "Bridge", "Publish",
			fmt.Sprintf("schemaVersion %d drops required fields of %s, need at least %d",
				b.cfg.SchemaVersion, env.TypeTag(), min))
	}

	data, err := b.codec.Encode(env, b.cfg.SchemaVersion, b.pred)
	if err != nil {
		return "", err
	}

	msg := nats.NewMsg(b.SubjectFor(env))
	msg.Data = data
	env.Headers().ForEach(func(key, value string) {
		msg.Header.Set(key, value)
	})
	msg.Header.Set(StatusHeader, strconv.Itoa(int(env.Status())))

	correlation := msg.Header.Get(CorrelationHeader)
	if correlation == "" {
		correlation = uuid.NewString()
		msg.Header.Set(CorrelationHeader, correlation)
	}

	if err := b.conn.PublishMsg(msg); err != nil {
		return "", errors.WrapInvalid(err, "Bridge", "Publish", "nats publish")
	}

	b.logger.Debug("published envelope",
		"subject", msg.Subject,
		"type", env.TypeTag(),
		"status", int(env.Status()),
		"correlation_id", correlation)
	return correlation, nil
}

// Receive decodes a NATS message into an envelope. The status header,
// when present, takes precedence over the status member in the body.
func (b *Bridge) Receive(msg *nats.Msg) (*envelope.Envelope, error) {
	headers := ambientHeaders(msg.Header)

	raw := msg.Header.Get(StatusHeader)
	if raw == "" {
		return b.codec.Decode(msg.Data, headers)
	}

	code, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.WrapInvalid(errors.ErrIllegalStatus, "Bridge", "Receive",
			"status header "+strconv.Quote(raw)+" is not numeric")
	}
	return b.codec.DecodeWithStatus(msg.Data, envelope.Status(code), headers)
}

// Subscribe attaches a handler to a subject. Messages that fail to
// decode are logged and dropped; the subscription stays alive.
func (b *Bridge) Subscribe(subject string, handler Handler) (*nats.Subscription, error) {
	if handler == nil {
		return nil, errors.WrapFatal(errors.ErrInvalidConfig, "Bridge", "Subscribe",
			"handler cannot be nil")
	}

	sub, err := b.conn.Subscribe(subject, func(msg *nats.Msg) {
		env, err := b.Receive(msg)
		if err != nil {
			b.logger.Warn("dropping undecodable message",
				"subject", msg.Subject,
				"kind", envelope.ErrorKind(err),
				"error", err)
			return
		}
		handler(env)
	})
	if err != nil {
		return nil, errors.WrapInvalid(err, "Bridge", "Subscribe", "nats subscribe")
	}
	return sub, nil
}

// Flush forces delivery of buffered messages.
func (b *Bridge) Flush() error {
	if err := b.conn.Flush(); err != nil {
		return errors.WrapInvalid(err, "Bridge", "Flush", "nats flush")
	}
	return nil
}

// ambientHeaders converts NATS headers to envelope headers in a stable
// key order, leaving out the status header which is transport detail.
func ambientHeaders(h nats.Header) envelope.Headers {
	keys := make([]string, 0, len(h))
	for key := range h {
		if key == StatusHeader {
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
