package ingest

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/LexGuardAI/lexguard-mvp/engine/domain"
	"github.com/LexGuardAI/lexguard-mvp/pkg/natsutil"
)

const (
	// Subject carries documents queued for ingestion.
	Subject = "engine.docs.ingest"
	// DLQSubject receives documents that keep failing.
	DLQSubject = "engine.docs.ingest.dlq"
	// MaxRetries before a document goes to the DLQ.
	MaxRetries = 3
)

// dlqMessage wraps a failed document with its final error.
type dlqMessage struct {
	Doc     domain.Document `json:"doc"`
	Error   string          `json:"error"`
	Retries int             `json:"retries"`
}

// StartConsumer subscribes to the ingest subject and runs each queued
// document through the pipeline. Failed documents are requeued with an
// incremented retry header and dead-lettered after MaxRetries. Already
// cataloged documents are skipped.
func StartConsumer(nc *nats.Conn, deps Deps) (*nats.Subscription, error) {
	pipeline := NewPipeline(deps)
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	return natsutil.SubscribeMsg(nc, Subject, func(ctx context.Context, doc domain.Document, msg *nats.Msg) {
		if deps.Catalog != nil {
			exists, err := deps.Catalog.Exists(ctx, doc.ID)
			if err != nil {
				log.Warn("ingest: dedup check failed", "doc_id", doc.ID, "error", err)
			} else if exists {
				log.Info("ingest: skipping duplicate", "doc_id", doc.ID)
				return
			}
		}

		result := pipeline(ctx, doc)
		if result.IsOk() {
			id, _ := result.Unwrap()
			log.Info("ingest: success", "doc_id", id)
			return
		}

		_, pipeErr := result.Unwrap()
		retries := natsutil.RetryCount(msg) + 1
		log.Error("ingest: pipeline failed", "doc_id", doc.ID, "error", pipeErr, "retry", retries)

		if retries >= MaxRetries {
			dlq := dlqMessage{Doc: doc, Error: pipeErr.Error(), Retries: retries}
			if err := natsutil.Publish(ctx, nc, DLQSubject, dlq); err != nil {
				log.Error("ingest: dlq publish failed", "doc_id", doc.ID, "error", err)
			}
			return
		}
		if err := natsutil.PublishRetry(ctx, nc, Subject, doc, retries); err != nil {
			log.Error("ingest: retry publish failed", "doc_id", doc.ID, "error", err)
		}
	})
}
