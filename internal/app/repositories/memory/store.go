// Package memory provides an in-process implementation of the repositories for
// tests. It is never wired into the server: a failed transaction restores a
// snapshot of every table, which would also discard writes made outside the
// transaction by other goroutines in the meantime.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/bobasi/bursary/internal/app/models"
	"github.com/bobasi/bursary/internal/app/repositories"
)

type state struct {
	seq           int64
	users         map[int64]models.User
	students      map[int64]models.Student
	applications  map[int64]models.Application
	reviews       map[int64]models.Review
	disbursements map[int64]models.Disbursement
	grants        map[int64]models.Grant
	notifications map[int64]models.Notification
	documents     map[int64]models.Document
}

func newState() *state {
	return &state{
		users:         map[int64]models.User{},
		students:      map[int64]models.Student{},
		applications:  map[int64]models.Application{},
		reviews:       map[int64]models.Review{},
		disbursements: map[int64]models.Disbursement{},
		grants:        map[int64]models.Grant{},
		notifications: map[int64]models.Notification{},
		documents:     map[int64]models.Document{},
	}
}

func (s *state) clone() *state {
	return &state{
		seq:           s.seq,
		users:         maps.Clone(s.users),
		students:      maps.Clone(s.students),
		applications:  maps.Clone(s.applications),
		reviews:       maps.Clone(s.reviews),
		disbursements: maps.Clone(s.disbursements),
		grants:        maps.Clone(s.grants),
		notifications: maps.Clone(s.notifications),
		documents:     maps.Clone(s.documents),
	}
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

// Store keeps every table in maps. Transactions are serialized and roll back
// to a snapshot when the unit of work fails.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	st   *state

	faultMu sync.Mutex
	faults  map[string]error

	now func() time.Time
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		st:     newState(),
		faults: map[string]error{},
		now:    time.Now,
	}
}

// SetFault makes the named operation (for example "Grants.Create") fail with
// err until cleared with a nil error.
func (s *Store) SetFault(name string, err error) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	if err == nil {
		delete(s.faults, name)
		return
	}
	s.faults[name] = err
}

func (s *Store) fault(name string) error {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	return s.faults[name]
}

// Repos returns repositories reading and writing the live state
func (s *Store) Repos() *repositories.Repositories {
	return &repositories.Repositories{
		Users:         &userRepo{s},
		Students:      &studentRepo{s},
		Applications:  &applicationRepo{s},
		Reviews:       &reviewRepo{s},
		Disbursements: &disbursementRepo{s},
		Grants:        &grantRepo{s},
		Notifications: &notificationRepo{s},
		Documents:     &documentRepo{s},
	}
}

// WithinTransaction implements repositories.TxManager
func (s *Store) WithinTransaction(ctx context.Context, fn repositories.TxFn) (err error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.st.clone()
	s.mu.RUnlock()

	defer func() {
		if r := recover(); r != nil {
			s.restore(snapshot)
			panic(r)
		}
		if err != nil {
			s.restore(snapshot)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, s.Repos())
}

func (s *Store) restore(snapshot *state) {
	s.mu.Lock()
	s.st = snapshot
	s.mu.Unlock()
}
