package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"lifeflow/internal/repository"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recordingNotifier struct {
	mu         sync.Mutex
	permission Permission
	sent       []Notification
	requests   int
	grantOnAsk bool
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{permission: PermissionGranted}
}

func (n *recordingNotifier) Notify(_ context.Context, note Notification) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.permission != PermissionGranted {
		return false
	}
	n.sent = append(n.sent, note)
	return true
}

func (n *recordingNotifier) Permission() Permission {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.permission
}

func (n *recordingNotifier) SetPermission(p Permission) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.permission = p
}

func (n *recordingNotifier) RequestPermission(context.Context) Permission {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requests++
	if n.grantOnAsk {
		n.permission = PermissionGranted
	}
	return n.permission
}

func (n *recordingNotifier) Sent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.sent...)
}

// brokenRepository fails every call, like storage that is full or denied.
type brokenRepository struct{}

var errStorageDenied = errors.New("storage denied")

func (brokenRepository) Load(context.Context, string) ([]byte, error) {
	return nil, errStorageDenied
}

func (brokenRepository) Save(context.Context, string, []byte) error {
	return errStorageDenied
}

var _ DocumentRepository = (*repository.MemoryRepository)(nil)
