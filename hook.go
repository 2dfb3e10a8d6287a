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
)

// Hook is a set of callbacks applied around bean creation and destruction.
// Any callback may be nil. Hooks run in the order they were added.
type Hook struct {
	// BeforeInstantiation may return an object to use instead of
	// constructing the bean. Only AfterInitialization callbacks are applied
	// to such an object.
	BeforeInstantiation func(ctx context.Context, name string, def *MergedDefinition) (interface{}, error)

	// AfterInstantiation runs before properties are populated. Returning
	// false skips property population.
	AfterInstantiation func(ctx context.Context, name string, obj interface{}) (bool, error)

	// EarlyReference may wrap the reference to a singleton handed out to
	// break a circular reference.
	EarlyReference func(ctx context.Context, name string, obj interface{}) (interface{}, error)

	// BeforeInitialization and AfterInitialization may replace the bean.
	// Returning nil keeps the current object.
	BeforeInitialization func(ctx context.Context, name string, obj interface{}) (interface{}, error)
	AfterInitialization  func(ctx context.Context, name string, obj interface{}) (interface{}, error)

	// BeforeDestruction runs before the bean's own Destroy method.
	BeforeDestruction func(ctx context.Context, name string, obj interface{}) error
}

// AddHook appends a hook. Hooks only affect beans created afterwards.
func (c *Container) AddHook(h Hook) {
	c.hooksMu.Lock()
	defer c.hooksMu.Unlock()
	c.hooks = append(c.hooks, h)
}

func (c *Container) currentHooks() []Hook {
	c.hooksMu.RLock()
	defer c.hooksMu.RUnlock()
	return c.hooks
}

func (c *Container) hasDestructionHooks() bool {
	for _, h := range c.currentHooks() {
		if h.BeforeDestruction != nil {
			return true
		}
	}
	return false
}

// NameAware beans are told their bean name after population.
type NameAware interface {
	SetBeanName(name string)
}

// ContainerAware beans receive the container that created them after
// population.
type ContainerAware interface {
	SetContainer(c *Container)
}

// Initializer beans are initialized once their properties are set.
type Initializer interface {
	Init(ctx context.Context) error
}

// Disposable beans release resources when the container or their scope
// ends.
type Disposable interface {
	Destroy(ctx context.Context) error
}

// SingletonsReady singletons are notified once PreInstantiateSingletons has
// created every eager singleton.
type SingletonsReady interface {
	AfterSingletonsInstantiated(ctx context.Context) error
}
