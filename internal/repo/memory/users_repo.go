package memory

import (
	"sync"
	"time"

	"github.com/geocoder89/rosterhub/internal/domain/user"
	"github.com/geocoder89/rosterhub/internal/utils"
)

// UsersRepo owns the roster. Records keep insertion order; order holds the ids
// and items the records keyed by id.
type UsersRepo struct {
	mu    sync.RWMutex
	now   func() time.Time
	order []int
	items map[int]user.Record
}

type Option func(*UsersRepo)

// WithClock overrides the clock used to stamp joinedAt.
func WithClock(now func() time.Time) Option {
	return func(r *UsersRepo) {
		if now != nil {
			r.now = now
		}
	}
}

// WithSeed preloads records. Records with a duplicate or non-positive id are skipped.
func WithSeed(records []user.Record) Option {
	return func(r *UsersRepo) {
		for _, rec := range records {
			if rec.ID <= 0 {
				continue
			}
			if _, exists := r.items[rec.ID]; exists {
				continue
			}
			r.order = append(r.order, rec.ID)
			r.items[rec.ID] = rec
		}
	}
}

func NewUsersRepo(opts ...Option) *UsersRepo {
	r := &UsersRepo{
		now:   time.Now,
		items: make(map[int]user.Record),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *UsersRepo) List() []user.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.Record, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}

	return out
}

func (r *UsersRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}

func (r *UsersRepo) Add(name, role, location string) user.Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := user.Record{
		ID:       r.nextIDLocked(),
		Name:     name,
		Role:     role,
		Location: location,
		JoinedAt: utils.ISOTimestamp(r.now()),
	}

	r.order = append(r.order, rec.ID)
	r.items[rec.ID] = rec

	return rec
}

// Remove reports whether a record with id existed. A miss leaves the roster untouched.
func (r *UsersRepo) Remove(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return false
	}

	delete(r.items, id)

	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return true
}

func (r *UsersRepo) nextIDLocked() int {
	max := 0
	for id := range r.items {
		if id > max {
			max = id
		}
	}

	return max + 1
}
