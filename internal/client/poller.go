package client

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/rosterhub/internal/domain/user"
	"github.com/geocoder89/rosterhub/internal/health"
)

// DefaultPollInterval matches the frontend's health refresh period.
const DefaultPollInterval = 15 * time.Second

// Snapshot is the consumer's view of the service after the last sync.
// Err holds the most recent failure and is cleared by the next successful call.
type Snapshot struct {
	Health        *health.Status
	Users         []user.Record
	LastRefreshed time.Time
	Err           error
}

type Poller struct {
	client   *Client
	interval time.Duration
	now      func() time.Time
	onUpdate func(Snapshot)

	mu    sync.Mutex
	state Snapshot
}

func NewPoller(c *Client, interval time.Duration, onUpdate func(Snapshot)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if onUpdate == nil {
		onUpdate = func(Snapshot) {}
	}

	return &Poller{client: c, interval: interval, now: time.Now, onUpdate: onUpdate}
}

// Run refreshes health immediately and then on every tick until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	p.Refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.Refresh(ctx)
		}
	}
}

// Refresh polls /health once. It is also the manual refresh action.
func (p *Poller) Refresh(ctx context.Context) Snapshot {
	st, err := p.client.Health(ctx)

	return p.update(func(s *Snapshot) {
		s.Err = err
		if err == nil {
			s.Health = &st
			s.LastRefreshed = p.now()
		}
	})
}

// SyncUsers reloads the roster.
func (p *Poller) SyncUsers(ctx context.Context) Snapshot {
	page, err := p.client.ListUsers(ctx)

	return p.update(func(s *Snapshot) {
		s.Err = err
		if err == nil {
			s.Users = page.Items
		}
	})
}

// DeleteUser deletes id and re-syncs the roster whether or not the delete succeeded.
// Subscribers see a single update; a delete failure takes precedence over the sync result.
func (p *Poller) DeleteUser(ctx context.Context, id int) (Snapshot, error) {
	_, delErr := p.client.DeleteUser(ctx, id)
	page, listErr := p.client.ListUsers(ctx)

	snap := p.update(func(s *Snapshot) {
		if listErr == nil {
			s.Users = page.Items
		}

		s.Err = listErr
		if delErr != nil {
			s.Err = delErr
		}
	})

	return snap, delErr
}

func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.copyLocked()
}

func (p *Poller) update(fn func(*Snapshot)) Snapshot {
	p.mu.Lock()
	fn(&p.state)
	snap := p.copyLocked()
	p.mu.Unlock()

	p.onUpdate(snap)
	return snap
}

func (p *Poller) copyLocked() Snapshot {
	snap := p.state
	if p.state.Users != nil {
		snap.Users = append([]user.Record(nil), p.state.Users...)
	}
	if p.state.Health != nil {
		h := *p.state.Health
		snap.Health = &h
	}
	return snap
}

// FormatUptime renders seconds as "1h 2m 5s"; zero hour and minute parts are omitted.
func FormatUptime(totalSeconds float64) string {
	if math.IsNaN(totalSeconds) || math.IsInf(totalSeconds, 0) {
		return "-"
	}

	hours := int(math.Floor(totalSeconds / 3600))
	minutes := int(math.Floor(math.Mod(totalSeconds, 3600) / 60))
	seconds := int(math.Floor(math.Mod(totalSeconds, 60)))

	parts := make([]string, 0, 3)
	if hours > 0 {
		parts = append(parts, strconv.Itoa(hours)+"h")
	}
	if minutes > 0 {
		parts = append(parts, strconv.Itoa(minutes)+"m")
	}
	parts = append(parts, strconv.Itoa(seconds)+"s")

	return strings.Join(parts, " ")
}
