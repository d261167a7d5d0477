// Package session keeps one ledger per browser session. Each session is
// private: uploads replace its ledger wholesale and never touch another.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/ledger"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/models"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/pipeline"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("session not found")

// State tells "no file yet" apart from "last file failed" and "parsed".
type State string

const (
	StateEmpty  State = "empty"
	StateFailed State = "failed"
	StateReady  State = "ready"
)

// Session is a snapshot of one session. FileName, Format, Mapping, Ledger
// and Report describe the last successful upload and survive a later
// failure; FailedFile and Err describe that failure.
type Session struct {
	ID         string
	State      State
	FileName   string
	Format     models.SourceFormat
	Mapping    models.RoleMapping
	Ledger     *ledger.Ledger
	Report     ledger.ParseReport
	FailedFile string
	Err        error
	UpdatedAt  time.Time
	LastSeen   time.Time
}

// HasLedger reports whether a successfully parsed ledger is available.
func (s Session) HasLedger() bool {
	return s.Ledger != nil
}

// Store is an in-memory, concurrency-safe session registry. Sessions idle
// for longer than the TTL are removed by Expire; a zero TTL keeps them.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewStore() *Store {
	return NewStoreWithTTL(0)
}

// NewStoreWithTTL returns a Store whose sessions expire after ttl idle.
func NewStoreWithTTL(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a session with no file.
func (s *Store) Create() Session {
	now := s.now()
	sess := &Session{ID: uuid.NewString(), State: StateEmpty, UpdatedAt: now, LastSeen: now}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return *sess
}

// Get returns a snapshot of the session and marks it as seen.
func (s *Store) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	sess.LastSeen = s.now()
	return *sess, nil
}

// Succeed replaces the session ledger with a new pipeline result.
func (s *Store) Succeed(id string, res *pipeline.Result) (Session, error) {
	return s.update(id, func(sess *Session) {
		sess.State = StateReady
		sess.FileName = res.Source
		sess.Format = res.Format
		sess.Mapping = res.Mapping
		sess.Ledger = res.Ledger
		sess.Report = res.Report
		sess.FailedFile = ""
		sess.Err = nil
	})
}

// Fail records a rejected upload. The previous upload, if any, is kept.
func (s *Store) Fail(id, fileName string, err error) (Session, error) {
	return s.update(id, func(sess *Session) {
		sess.State = StateFailed
		sess.FailedFile = fileName
		sess.Err = err
	})
}

// Delete forgets a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Expire removes sessions idle for longer than the TTL and returns how
// many were removed.
func (s *Store) Expire() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.sessions {
		if sess.LastSeen.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Janitor calls Expire every interval until ctx is done.
func (s *Store) Janitor(ctx context.Context, interval time.Duration, onExpire func(n int)) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Expire(); n > 0 && onExpire != nil {
				onExpire(n)
			}
		}
	}
}

func (s *Store) update(id string, fn func(*Session)) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	fn(sess)
	sess.UpdatedAt = s.now()
	sess.LastSeen = sess.UpdatedAt
	return *sess, nil
}
