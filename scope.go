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
	"sort"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/beans/beanevent"
	"go.uber.org/beans/internal/lifecycle"
)

// ObjectFactory creates a bean on behalf of a ScopeProvider.
type ObjectFactory func(ctx context.Context) (interface{}, error)

// ScopeProvider is a lifetime policy for beans other than singleton and
// prototype, such as beans tied to a request or a unit of work.
//
// A provider that has no active scope for ctx returns an error matching
// ErrScopeNotActive.
type ScopeProvider interface {
	// Get returns the scoped bean named name, calling create if the scope
	// does not hold it yet.
	Get(ctx context.Context, name string, create ObjectFactory) (interface{}, error)

	// Remove takes the named bean out of the scope. The destruction
	// callback registered for it, if any, is dropped and not run.
	Remove(ctx context.Context, name string) (interface{}, bool)

	// RegisterDestructionCallback registers a callback to run when the
	// scope ends.
	RegisterDestructionCallback(ctx context.Context, name string, callback func(context.Context) error) error
}

type scopeRegistry struct {
	mu        sync.RWMutex
	providers map[string]ScopeProvider
}

func newScopeRegistry() *scopeRegistry {
	return &scopeRegistry{providers: make(map[string]ScopeProvider)}
}

func (r *scopeRegistry) get(name string) (ScopeProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

func (r *scopeRegistry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RegisterScope installs the provider for a custom scope. The "singleton"
// and "prototype" scopes are built in and cannot be replaced.
func (c *Container) RegisterScope(name string, provider ScopeProvider) error {
	if name == "" {
		return errors.New("scope name must not be empty")
	}
	if name == SingletonScope || name == PrototypeScope {
		return errors.Errorf("cannot replace built-in scope %q", name)
	}
	if provider == nil {
		return errors.Errorf("scope provider for %q must not be nil", name)
	}

	c.scopes.mu.Lock()
	c.scopes.providers[name] = provider
	c.scopes.mu.Unlock()

	c.logger.LogEvent(&beanevent.ScopeRegistered{Scope: name})
	return nil
}

// RegisteredScopeNames lists the custom scopes, sorted.
func (c *Container) RegisteredScopeNames() []string {
	return c.scopes.names()
}

// ScopeProvider returns the provider registered for a custom scope.
func (c *Container) ScopeProvider(name string) (ScopeProvider, bool) {
	return c.scopes.get(name)
}

// DestroyScopedBean removes a custom-scoped bean from its scope and runs its
// destruction callbacks.
func (c *Container) DestroyScopedBean(ctx context.Context, name string) error {
	beanName := c.transformedName(name)
	mbd, err := c.MergedDefinition(beanName)
	if err != nil {
		return err
	}
	if mbd.Scope.Kind != ScopeCustom {
		return errors.Errorf("bean %q is %s-scoped, not custom-scoped", beanName, mbd.Scope)
	}
	provider, ok := c.scopes.get(mbd.Scope.Name)
	if !ok {
		return &ScopeError{Name: beanName, Scope: mbd.Scope.Name}
	}
	obj, ok := provider.Remove(ctx, beanName)
	if !ok {
		return nil
	}
	return c.destroyers.Run(ctx, lifecycle.Hook{
		Name:   beanName,
		OnStop: c.destructionCallback(beanName, mbd, obj),
	})
}
