package rosterevents

import (
	"context"
	"log/slog"
)

// LogPublisher is the sink used when no broker is configured.
type LogPublisher struct {
	log *slog.Logger
}

func NewLogPublisher(log *slog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, e Event) error {
	p.log.InfoContext(ctx, "roster_event",
		"type", e.Type,
		"user_id", e.UserID,
		"at", e.At,
	)
	return nil
}
