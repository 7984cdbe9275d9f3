package roster

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mergington/activities/internal/domain"
)

// Listener receives every successful membership change. Listeners are called
// after the registry lock is released, in the same order the changes were
// applied. They may read the registry but must not block or mutate it.
type Listener func(domain.RosterEvent)

// Option configures a Registry.
type Option func(*Registry)

// WithListener registers a change listener. Multiple listeners are called in
// registration order.
func WithListener(l Listener) Option {
	return func(r *Registry) {
		if l != nil {
			r.listeners = append(r.listeners, l)
		}
	}
}

// WithClock overrides the time source used to stamp events.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// Registry holds the activity catalog. It is safe for concurrent use: one
// RWMutex serializes mutations and lets snapshot reads run in parallel.
type Registry struct {
	mu         sync.RWMutex
	notifyMu   sync.Mutex // held from a mutation until its listeners return
	activities map[string]*domain.Activity
	order      []string

	listeners []Listener
	now       func() time.Time
}

// New builds a registry from the seed catalog. The seed is copied, so the
// caller may reuse or modify it afterwards.
func New(seed []domain.Activity, opts ...Option) (*Registry, error) {
	if err := ValidateSeed(seed); err != nil {
		return nil, err
	}

	r := &Registry{
		activities: make(map[string]*domain.Activity, len(seed)),
		order:      make([]string, 0, len(seed)),
		now:        time.Now,
	}
	for _, a := range seed {
		c := a.Clone()
		r.activities[c.Name] = &c
		r.order = append(r.order, c.Name)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// List returns a snapshot of every activity keyed by name. The returned map
// and slices are copies and may be modified freely.
func (r *Registry) List() map[string]domain.Activity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]domain.Activity, len(r.activities))
	for name, a := range r.activities {
		out[name] = a.Clone()
	}
	return out
}

// Get returns a snapshot of a single activity.
func (r *Registry) Get(name string) (domain.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.activities[name]
	if !ok {
		return domain.Activity{}, ErrNotFound
	}
	return a.Clone(), nil
}

// Names returns activity names in seed order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Signup appends email to the named activity's participants.
//
// It fails with ErrNotFound when the activity does not exist and with
// ErrAlreadyRegistered when email is already on the roster. Capacity is not
// checked.
func (r *Registry) Signup(activity, email string) (domain.Confirmation, error) {
	r.mu.Lock()
	a, ok := r.activities[activity]
	if !ok {
		r.mu.Unlock()
		return domain.Confirmation{}, ErrNotFound
	}
	if a.IndexOf(email) >= 0 {
		r.mu.Unlock()
		return domain.Confirmation{}, ErrAlreadyRegistered
	}
	a.Participants = append(a.Participants, email)
	evt := r.event(domain.EventSignup, activity, email, len(a.Participants))
	r.notifyMu.Lock()
	r.mu.Unlock()

	r.notify(evt)
	r.notifyMu.Unlock()
	return domain.Confirmation{
		Message: fmt.Sprintf("Signed up %s for %s", email, activity),
	}, nil
}

// Unregister removes email from the named activity's participants, keeping
// the order of the remaining entries.
//
// It fails with ErrNotFound when the activity does not exist and with
// ErrNotRegistered when email is not on the roster.
func (r *Registry) Unregister(activity, email string) (domain.Confirmation, error) {
	r.mu.Lock()
	a, ok := r.activities[activity]
	if !ok {
		r.mu.Unlock()
		return domain.Confirmation{}, ErrNotFound
	}
	i := a.IndexOf(email)
	if i < 0 {
		r.mu.Unlock()
		return domain.Confirmation{}, ErrNotRegistered
	}
	a.Participants = append(a.Participants[:i], a.Participants[i+1:]...)
	evt := r.event(domain.EventUnregister, activity, email, len(a.Participants))
	r.notifyMu.Lock()
	r.mu.Unlock()

	r.notify(evt)
	r.notifyMu.Unlock()
	return domain.Confirmation{
		Message: fmt.Sprintf("Removed %s from %s", email, activity),
	}, nil
}

func (r *Registry) event(t domain.RosterEventType, activity, email string, count int) domain.RosterEvent {
	return domain.RosterEvent{
		ID:               uuid.New().String(),
		Type:             t,
		Activity:         activity,
		Email:            email,
		ParticipantCount: count,
		OccurredAt:       r.now().UTC(),
	}
}

func (r *Registry) notify(evt domain.RosterEvent) {
	for _, l := range r.listeners {
		l(evt)
	}
}
