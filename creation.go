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

package beans

import (
	"context"
	"sync"
	"sync/atomic"
)

var _frameIDs uint64

type frameKey struct{}

// creationFrame is the state of one retrieval call chain. It travels in the
// context passed to Get and to everything Get calls, and replaces
// thread-local bookkeeping: the id owns in-flight constructions, and
// prototypes records which prototype beans this chain is building.
type creationFrame struct {
	id uint64

	mu         sync.Mutex
	prototypes map[prototypeKey]struct{}
}

type prototypeKey struct {
	c    *Container
	name string
}

// withCreationFrame returns ctx carrying a creation frame, reusing the one
// already present.
func withCreationFrame(ctx context.Context) (context.Context, *creationFrame) {
	if ctx == nil {
		ctx = context.Background()
	}
	if f, ok := ctx.Value(frameKey{}).(*creationFrame); ok {
		return ctx, f
	}
	f := &creationFrame{
		id:         atomic.AddUint64(&_frameIDs, 1),
		prototypes: make(map[prototypeKey]struct{}),
	}
	return context.WithValue(ctx, frameKey{}, f), f
}

// attachFrame makes sure ctx carries f. Scope providers may hand the
// creation callback a context of their own.
func attachFrame(ctx context.Context, f *creationFrame) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if cur, ok := ctx.Value(frameKey{}).(*creationFrame); ok && cur == f {
		return ctx
	}
	return context.WithValue(ctx, frameKey{}, f)
}

func (f *creationFrame) prototypeInCreation(c *Container, name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.prototypes[prototypeKey{c, name}]
	return ok
}

func (f *creationFrame) beginPrototype(c *Container, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prototypes[prototypeKey{c, name}] = struct{}{}
}

func (f *creationFrame) endPrototype(c *Container, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.prototypes, prototypeKey{c, name})
}

// markCreated records that name is created or being created. The first time
// it happens the cached effective definition is marked stale so creation
// sees the final definition state.
func (c *Container) markCreated(name string) {
	if _, loaded := c.created.LoadOrStore(name, struct{}{}); !loaded {
		c.merged.markStale(name)
	}
}

func (c *Container) unmarkCreated(name string) {
	c.created.Delete(name)
}

func (c *Container) hasBeenCreated(name string) bool {
	_, ok := c.created.Load(name)
	return ok
}
