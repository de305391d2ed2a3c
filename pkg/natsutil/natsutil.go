// Package natsutil provides typed NATS publish/subscribe helpers with
// OpenTelemetry trace propagation and retry-count headers for queue
// redelivery.
package natsutil

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
)

// RetryHeader counts how many times a message has been requeued.
const RetryHeader = "X-Retry-Count"

// natsHeaderCarrier adapts nats.Msg headers for OTel TextMapCarrier.
type natsHeaderCarrier nats.Msg

func (c *natsHeaderCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *natsHeaderCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *natsHeaderCarrier) Keys() []string {
	if c.Header == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

// Publish serializes v as JSON and publishes it, injecting trace context
// into the message headers.
func Publish[T any](ctx context.Context, nc *nats.Conn, subject string, v T) error {
	return PublishRetry(ctx, nc, subject, v, 0)
}

// PublishRetry is Publish with an explicit retry count header.
func PublishRetry[T any](ctx context.Context, nc *nats.Conn, subject string, v T, retries int) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	msg := &nats.Msg{Subject: subject, Data: data}
	if retries > 0 {
		msg.Header = nats.Header{RetryHeader: []string{strconv.Itoa(retries)}}
	}
	otel.GetTextMapPropagator().Inject(ctx, (*natsHeaderCarrier)(msg))
	return nc.PublishMsg(msg)
}

// RetryCount reads the retry header from a message, 0 when absent.
func RetryCount(msg *nats.Msg) int {
	n, _ := strconv.Atoi(msg.Header.Get(RetryHeader))
	return n
}

// Subscribe registers a handler for JSON messages of type T. Trace
// context is extracted from message headers. Malformed messages are
// dropped.
func Subscribe[T any](nc *nats.Conn, subject string, handler func(context.Context, T)) (*nats.Subscription, error) {
	return SubscribeMsg(nc, subject, func(ctx context.Context, v T, _ *nats.Msg) {
		handler(ctx, v)
	})
}

// SubscribeMsg is Subscribe with access to the raw message, for handlers
// that need headers.
func SubscribeMsg[T any](nc *nats.Conn, subject string, handler func(context.Context, T, *nats.Msg)) (*nats.Subscription, error) {
	return nc.Subscribe(subject, func(msg *nats.Msg) {
		var v T
		if err := json.Unmarshal(msg.Data, &v); err != nil {
			return // drop malformed messages
		}
		ctx := otel.GetTextMapPropagator().Extract(context.Background(), (*natsHeaderCarrier)(msg))
		handler(ctx, v, msg)
	})
}
