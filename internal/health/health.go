package health

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/geocoder89/rosterhub/internal/utils"
)

var ErrShuttingDown = errors.New("shutting down")

// Pinger is a dependency the service needs before it reports ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Status struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
}

type Reporter struct {
	startedAt    time.Time
	now          func() time.Time
	checks       map[string]Pinger
	pingTimeout  time.Duration
	shuttingDown atomic.Bool
}

func NewReporter(startedAt time.Time) *Reporter {
	return &Reporter{
		startedAt:   startedAt,
		now:         time.Now,
		checks:      make(map[string]Pinger),
		pingTimeout: 500 * time.Millisecond,
	}
}

// WithClock is used by tests to pin the reported timestamp.
func (r *Reporter) WithClock(now func() time.Time) *Reporter {
	r.now = now
	return r
}

// AddCheck registers a readiness dependency. Not safe to call once serving.
func (r *Reporter) AddCheck(name string, p Pinger) {
	r.checks[name] = p
}

func (r *Reporter) Report() Status {
	now := r.now()

	return Status{
		Status:    "ok",
		Timestamp: utils.ISOTimestamp(now),
		Uptime:    now.Sub(r.startedAt).Seconds(),
	}
}

func (r *Reporter) MarkShuttingDown() {
	r.shuttingDown.Store(true)
}

func (r *Reporter) Ready(ctx context.Context) error {
	if r.shuttingDown.Load() {
		return ErrShuttingDown
	}

	for name, p := range r.checks {
		pctx, cancel := context.WithTimeout(ctx, r.pingTimeout)
		err := p.Ping(pctx)
		cancel()

		if err != nil {
			return fmt.Errorf("%s not ready: %w", name, err)
		}
	}

	return nil
}
