// Copyright (c) 2026 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package workscope provides a custom bean scope bound to a unit of work,
// such as a request or a job, carried in a context.Context.
//
//	c, _ := beans.New(beans.WithScope("request", workscope.NewProvider()))
//
//	ctx, unit := workscope.Begin(ctx)
//	defer unit.End(ctx)
//	session, err := c.Get(ctx, "session")
//
// Every unit holds its own instance of each bean in the scope. Ending the
// unit runs the destruction callbacks of its beans, most recent first.
package workscope

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/beans"
	"go.uber.org/beans/beanevent"
	"go.uber.org/beans/internal/beanclock"
	"go.uber.org/beans/internal/lifecycle"
)

type unitKey struct{}

// Unit is one unit of work.
type Unit struct {
	mu      sync.Mutex
	entries map[string]*entry
	ended   bool

	callbacks *lifecycle.Lifecycle
}

type entry struct {
	done chan struct{}
	obj  interface{}
	err  error
}

// Begin starts a unit of work and returns a context carrying it.
func Begin(ctx context.Context) (context.Context, *Unit) {
	u := &Unit{
		entries:   make(map[string]*entry),
		callbacks: lifecycle.New(beanevent.NopLogger, beanclock.System),
	}
	return context.WithValue(ctx, unitKey{}, u), u
}

// FromContext returns the unit of work carried by ctx.
func FromContext(ctx context.Context) (*Unit, bool) {
	u, ok := ctx.Value(unitKey{}).(*Unit)
	return u, ok
}

// Names lists the beans the unit holds.
func (u *Unit) Names() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	var names []string
	for name, e := range u.entries {
		select {
		case <-e.done:
			if e.err == nil {
				names = append(names, name)
			}
		default:
		}
	}
	return names
}

// End finishes the unit. The destruction callbacks of its beans run in
// reverse registration order; their errors are combined. Ending a unit
// twice is a no-op.
func (u *Unit) End(ctx context.Context) error {
	u.mu.Lock()
	if u.ended {
		u.mu.Unlock()
		return nil
	}
	u.ended = true
	u.entries = make(map[string]*entry)
	u.mu.Unlock()

	return u.callbacks.Stop(ctx)
}

func (u *Unit) get(ctx context.Context, name string, create beans.ObjectFactory) (interface{}, error) {
	u.mu.Lock()
	if u.ended {
		u.mu.Unlock()
		return nil, errors.Wrap(beans.ErrScopeNotActive, "unit of work has ended")
	}
	if e, ok := u.entries[name]; ok {
		u.mu.Unlock()
		<-e.done
		return e.obj, e.err
	}
	e := &entry{done: make(chan struct{})}
	u.entries[name] = e
	u.mu.Unlock()

	e.err = errors.New("scoped bean creation panicked")
	defer func() {
		if e.err != nil {
			u.mu.Lock()
			if u.entries[name] == e {
				delete(u.entries, name)
			}
			u.mu.Unlock()
		}
		close(e.done)
	}()

	e.obj, e.err = create(ctx)
	return e.obj, e.err
}

func (u *Unit) remove(name string) (interface{}, bool) {
	u.mu.Lock()
	e, ok := u.entries[name]
	if ok {
		delete(u.entries, name)
	}
	u.mu.Unlock()
	if !ok {
		return nil, false
	}

	<-e.done
	u.callbacks.Remove(name)
	if e.err != nil {
		return nil, false
	}
	return e.obj, true
}

// Provider is a beans.ScopeProvider that stores beans in the unit of work
// found in the context.
type Provider struct{}

var _ beans.ScopeProvider = (*Provider)(nil)

// NewProvider builds a Provider.
func NewProvider() *Provider {
	return &Provider{}
}

func (p *Provider) unit(ctx context.Context) (*Unit, error) {
	u, ok := FromContext(ctx)
	if !ok {
		return nil, errors.Wrap(beans.ErrScopeNotActive, "no unit of work in context")
	}
	return u, nil
}

// Get implements beans.ScopeProvider. Concurrent callers in the same unit
// share one creation.
func (p *Provider) Get(ctx context.Context, name string, create beans.ObjectFactory) (interface{}, error) {
	u, err := p.unit(ctx)
	if err != nil {
		return nil, err
	}
	return u.get(ctx, name, create)
}

// Remove implements beans.ScopeProvider.
func (p *Provider) Remove(ctx context.Context, name string) (interface{}, bool) {
	u, err := p.unit(ctx)
	if err != nil {
		return nil, false
	}
	return u.remove(name)
}

// RegisterDestructionCallback implements beans.ScopeProvider.
func (p *Provider) RegisterDestructionCallback(ctx context.Context, name string, callback func(context.Context) error) error {
	u, err := p.unit(ctx)
	if err != nil {
		return err
	}
	u.callbacks.Append(lifecycle.Hook{Name: name, OnStop: callback})
	return nil
}
