package catalog

// Schema changes on a view (derive a join name, then persist the join) are
// not atomic, so writers take the view's lock around them. Entries are
// reference counted and dropped once no writer holds or waits for them.

import (
	"sync"
	"sync/atomic"
)

type RefCount struct {
	count int32
}

func NewRefCount() *RefCount {
	return &RefCount{count: 1}
}

func (r *RefCount) Inc() {
	atomic.AddInt32(&r.count, 1)
}

func (r *RefCount) Dec() bool {
	newCount := atomic.AddInt32(&r.count, -1)
	if newCount < 0 {
		panic("refcount dropped below zero")
	}
	return newCount == 0
}

func (r *RefCount) Get() int32 {
	return atomic.LoadInt32(&r.count)
}

type viewLock struct {
	mu   sync.Mutex
	refs *RefCount
}

// Locks serializes schema writers per view id.
type Locks struct {
	mu    sync.Mutex
	views map[string]*viewLock
}

func NewLocks() *Locks {
	return &Locks{views: make(map[string]*viewLock)}
}

// Acquire blocks until the caller is the only writer of viewID and returns
// the function that releases it.
func (l *Locks) Acquire(viewID string) (release func()) {
	l.mu.Lock()
	vl, ok := l.views[viewID]
	if ok {
		vl.refs.Inc()
	} else {
		vl = &viewLock{refs: NewRefCount()}
		l.views[viewID] = vl
	}
	l.mu.Unlock()

	vl.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			vl.mu.Unlock()
			l.mu.Lock()
			if vl.refs.Dec() {
				delete(l.views, viewID)
			}
			l.mu.Unlock()
		})
	}
}

// Held returns the number of writers holding or waiting for viewID.
func (l *Locks) Held(viewID string) int32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if vl, ok := l.views[viewID]; ok {
		return vl.refs.Get()
	}
	return 0
}

// WithView runs fn while holding the lock of view.ID.
func (l *Locks) WithView(viewID string, fn func() error) error {
	release := l.Acquire(viewID)
	defer release()
	return fn()
}
