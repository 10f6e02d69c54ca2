// Package rosterevents announces roster changes so consumers can re-sync
// without polling GET /users.
package rosterevents

import (
	"context"
	"time"

	"github.com/geocoder89/rosterhub/internal/domain/user"
)

const (
	TypeUserCreated = "user.created"
	TypeUserDeleted = "user.deleted"
)

type Event struct {
	Type   string       `json:"type"`
	UserID int          `json:"userId"`
	User   *user.Record `json:"user,omitempty"`
	At     time.Time    `json:"at"`
}

func UserCreated(rec user.Record, at time.Time) Event {
	return Event{Type: TypeUserCreated, UserID: rec.ID, User: &rec, At: at}
}

func UserDeleted(id int, at time.Time) Event {
	return Event{Type: TypeUserDeleted, UserID: id, At: at}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}
