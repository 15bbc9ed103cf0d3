package crmclient

import (
	"context"
	"errors"
	"sync"
)

var ErrViewClosed = errors.New("crmclient: view closed")

// View scopes requests to the lifetime of one page. Closing it cancels
// requests in flight and drops any response that still arrives.
type View struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

func NewView(parent context.Context) *View {
	ctx, cancel := context.WithCancel(parent)
	return &View{ctx: ctx, cancel: cancel}
}

// Context is the context every request issued by the page should use.
func (v *View) Context() context.Context {
	return v.ctx
}

func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.cancel()
}

func (v *View) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

// Deliver hands r to apply unless the view has closed, in which case r is
// dropped and ErrViewClosed returned. apply runs under the view lock, so it
// never races with Close.
func Deliver[T any](v *View, r Result[T], apply func(Result[T])) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrViewClosed
	}
	apply(r)
	return nil
}
