package birthday

import (
	"context"
	"errors"
	"sync"
	"time"

	"wishsender/internal/model"
)

// fakeStore is an in-memory LogStore that mimics the storage-level dedup
// index: a second 'sent' entry for the same contact and day is rejected.
type fakeStore struct {
	mu        sync.Mutex
	entries   []model.SendLogEntry
	nextID    int64
	queryErr  error
	appendErr error
	loc       *time.Location
}

func newFakeStore() *fakeStore {
	return &fakeStore{loc: time.UTC}
}

func (s *fakeStore) QueryLogs(_ context.Context, from, to time.Time) ([]model.SendLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	out := []model.SendLogEntry{}
	for _, e := range s.entries {
		if !e.SentAt.Before(from) && e.SentAt.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeStore) AppendLog(_ context.Context, entry *model.SendLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	if entry.Status == model.StatusSent {
		day := entry.SentAt.In(s.loc).Format("2006-01-02")
		for _, e := range s.entries {
			if e.ContactID == entry.ContactID &&
				e.Status == model.StatusSent &&
				e.SentAt.In(s.loc).Format("2006-01-02") == day {
				return ErrDuplicateSend
			}
		}
	}
	s.nextID++
	entry.ID = s.nextID
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *fakeStore) sentCountFor(contactID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if e.ContactID == contactID && e.Status == model.StatusSent {
			n++
		}
	}
	return n
}

// fakeDirectory returns a fixed contact set or an error.
type fakeDirectory struct {
	contacts []model.Contact
	err      error
}

func (d *fakeDirectory) ListContacts(context.Context) ([]model.Contact, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.contacts, nil
}

// fakeChannel records sends and fails on demand, per address or globally.
type fakeChannel struct {
	mu       sync.Mutex
	sent     []string
	failAll  bool
	failFor  map[string]bool
	lastBody string
}

func (c *fakeChannel) Name() string { return "fake" }

func (c *fakeChannel) Send(_ context.Context, to, _ string, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAll || c.failFor[to] {
		return errors.New("delivery refused")
	}
	c.sent = append(c.sent, to)
	c.lastBody = body
	return nil
}

func (c *fakeChannel) sentTo() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.sent...)
}

// fakeWisher fails on demand so the fallback path can be exercised.
type fakeWisher struct {
	body string
	err  error
}

func (w *fakeWisher) Render(_ context.Context, _ model.Contact) (string, error) {
	if w.err != nil {
		return "", w.err
	}
	return w.body, nil
}
