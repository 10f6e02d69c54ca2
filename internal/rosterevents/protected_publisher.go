package rosterevents

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker open")

type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

type ProtectedPublisherConfig struct {
	Timeout          time.Duration // per publish
	FailureThreshold int           // consecutive failures before opening
	Cooldown         time.Duration // time open before a trial call
	HalfOpenMaxCalls int
}

// ProtectedPublisher puts a circuit breaker in front of a broker so a dead
// Redis costs writes nothing once the circuit is open.
type ProtectedPublisher struct {
	inner Publisher
	cfg   ProtectedPublisherConfig
	now   func() time.Time

	mu                  sync.Mutex
	state               breakerState
	consecutiveFailures int
	openedAt            time.Time
	halfOpenInFlight    int
}

func NewProtectedPublisher(inner Publisher, cfg ProtectedPublisherConfig) *ProtectedPublisher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Second
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 15 * time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}

	return &ProtectedPublisher{inner: inner, cfg: cfg, now: time.Now}
}

func (p *ProtectedPublisher) Publish(ctx context.Context, e Event) error {
	if !p.allowRequest() {
		return ErrCircuitOpen
	}

	pctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	err := p.inner.Publish(pctx, e)
	p.afterRequest(err)

	return err
}

func (p *ProtectedPublisher) allowRequest() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case stateOpen:
		if p.now().Sub(p.openedAt) < p.cfg.Cooldown {
			return false
		}
		p.state = stateHalfOpen
		p.halfOpenInFlight = 1
		return true
	case stateHalfOpen:
		if p.halfOpenInFlight >= p.cfg.HalfOpenMaxCalls {
			return false
		}
		p.halfOpenInFlight++
		return true
	default:
		return true
	}
}

func (p *ProtectedPublisher) afterRequest(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == stateHalfOpen && p.halfOpenInFlight > 0 {
		p.halfOpenInFlight--
	}

	if err == nil {
		p.consecutiveFailures = 0
		p.state = stateClosed
		return
	}

	p.consecutiveFailures++

	if p.state == stateHalfOpen || p.consecutiveFailures >= p.cfg.FailureThreshold {
		p.state = stateOpen
		p.openedAt = p.now()
	}
}
