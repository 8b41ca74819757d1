// Package natsbridge moves encoded envelopes over NATS subjects.
//
// The bridge publishes envelopes produced by a domain package and hands
// inbound messages to the codec for decoding. Envelope headers travel as
// NATS message headers, and the response status is mirrored into a
// dedicated header so that subscribers can route on it without parsing
// the body. Messages published without a correlation id get one assigned,
// so a response can always be matched to the command that caused it.
//
// The bridge works against a small Conn interface satisfied by
// *nats.Conn, which keeps the package testable without a running server.
package natsbridge
