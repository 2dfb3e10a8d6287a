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

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/uber-go/tally/v4"
	"go.uber.org/beans/beanevent"
	"go.uber.org/beans/internal/beanclock"
	"go.uber.org/beans/internal/beanreflect"
	"go.uber.org/beans/internal/lifecycle"
	"go.uber.org/multierr"
)

// Container creates, caches, and destroys beans from their definitions.
// It is safe for concurrent use.
type Container struct {
	parent *Container

	logger       beanevent.Logger
	clock        beanclock.Clock
	constructor  Constructor
	converters   []TypeConverter
	typeResolver TypeResolver
	metricsScope tally.Scope
	metrics      *metrics
	tracer       opentracing.Tracer
	cfg          Config

	store   DefinitionStore
	aliases *aliasMap
	merged  *mergedCache

	// created holds the names that have been created or are being created.
	created    sync.Map
	singletons *singletonRegistry
	products   *productCache
	scopes     *scopeRegistry

	pendingScopes []scopeOption

	hooksMu sync.RWMutex
	hooks   []Hook

	destroyers *lifecycle.Lifecycle
	innerIDs   uint64
	shutdown   atomic.Bool
}

// New builds a Container. It fails only if an option is invalid.
func New(opts ...Option) (*Container, error) {
	c := &Container{
		logger:       beanevent.NopLogger,
		clock:        beanclock.System,
		constructor:  ReflectConstructor{},
		metricsScope: tally.NoopScope,
		tracer:       opentracing.NoopTracer{},
		cfg:          DefaultConfig(),
		store:        newMapStore(),
		aliases:      newAliasMap(),
		merged:       newMergedCache(),
		singletons:   newSingletonRegistry(),
		scopes:       newScopeRegistry(),
	}
	c.products = newProductCache(c.singletons.waits)
	for _, opt := range opts {
		opt.apply(c)
	}
	c.converters = append(c.converters, defaultConverter{})
	c.metrics = newMetrics(c.metricsScope)
	c.destroyers = lifecycle.New(c.logger, c.clock)

	var errs error
	for _, s := range c.pendingScopes {
		errs = multierr.Append(errs, c.RegisterScope(s.name, s.provider))
	}
	c.pendingScopes = nil
	if errs != nil {
		return nil, errs
	}
	return c, nil
}

// Parent returns the parent container, if any.
func (c *Container) Parent() *Container {
	return c.parent
}

// Config returns the behavioral flags the container was built with.
func (c *Container) Config() Config {
	return c.cfg
}

// RegisterDefinition registers def under name. The definition is copied.
// Replacing a definition drops the cached effective definitions derived
// from it and destroys the singletons built from them.
func (c *Container) RegisterDefinition(name string, def *Definition) error {
	if name == "" {
		return errors.New("bean name must not be empty")
	}
	if def == nil {
		return errors.Errorf("definition for bean %q must not be nil", name)
	}
	registry, ok := c.store.(DefinitionRegistry)
	if !ok {
		return errors.Errorf("cannot register bean %q: definition store %T is read-only", name, c.store)
	}

	def = def.Copy()
	if def.Source == "" {
		def.Source = beanreflect.Caller()
	}
	if err := validateDefinition(name, def); err != nil {
		return err
	}

	existed := registry.ContainsDefinition(name)
	if existed && !c.cfg.AllowDefinitionOverriding {
		return &DefinitionError{
			Name:   name,
			Source: def.Source,
			Reason: "cannot register definition: a definition is already bound to this name and overriding is disabled",
		}
	}
	if c.aliases.isAlias(name) {
		if !c.cfg.AllowAliasOverriding {
			return &DefinitionError{
				Name:   name,
				Source: def.Source,
				Reason: "cannot register definition: the name is already used as an alias",
			}
		}
		c.removeAlias(name)
	}

	registry.RegisterDefinition(name, def)
	c.resetDefinition(name, existed || c.singletons.contains(name))

	c.logger.LogEvent(&beanevent.DefinitionRegistered{
		Name:       name,
		Source:     def.Source,
		Overridden: existed,
	})
	return nil
}

// RemoveDefinition removes the definition registered under name, destroying
// the singletons built from it and from definitions inheriting from it.
func (c *Container) RemoveDefinition(name string) error {
	registry, ok := c.store.(DefinitionRegistry)
	if !ok {
		return errors.Errorf("cannot remove bean %q: definition store %T is read-only", name, c.store)
	}
	if !registry.RemoveDefinition(name) {
		return &NoSuchDefinitionError{Name: name}
	}
	c.resetDefinition(name, true)
	c.logger.LogEvent(&beanevent.DefinitionRemoved{Name: name})
	return nil
}

func validateDefinition(name string, def *Definition) error {
	if def.Factory != nil && !isFunc(def.Factory) {
		return &DefinitionError{
			Name:   name,
			Source: def.Source,
			Reason: "factory must be a function",
		}
	}
	return nil
}

// resetDefinition drops every cached effective definition derived from
// name. With destroy set, the singletons built from them are destroyed too.
func (c *Container) resetDefinition(name string, destroy bool) {
	ctx := context.Background()
	seen := make(map[string]bool)
	var reset func(string)
	reset = func(n string) {
		if seen[n] {
			return
		}
		seen[n] = true
		for _, dropped := range c.merged.invalidate(n) {
			if destroy {
				_ = c.destroySingleton(ctx, dropped)
			}
			seen[dropped] = true
		}
		if destroy {
			_ = c.destroySingleton(ctx, n)
		}
		for _, child := range c.store.DefinitionNames() {
			def, err := c.store.Definition(child)
			if err == nil && def.ParentName == n && child != n {
				reset(child)
			}
		}
	}
	reset(name)
}

// RegisterSingleton registers a fully built object as a singleton. No
// hooks are applied to it and it is not destroyed on shutdown.
func (c *Container) RegisterSingleton(name string, obj interface{}) error {
	if name == "" {
		return errors.New("bean name must not be empty")
	}
	if err := c.singletons.register(name, obj); err != nil {
		return err
	}
	c.markCreated(name)
	return nil
}

// ContainsDefinition reports whether a definition is registered locally
// under name.
func (c *Container) ContainsDefinition(name string) bool {
	return c.store.ContainsDefinition(name)
}

// DefinitionNames lists the locally registered definitions in registration
// order.
func (c *Container) DefinitionNames() []string {
	return c.store.DefinitionNames()
}

// SingletonNames lists the singletons created so far in creation order.
func (c *Container) SingletonNames() []string {
	return c.singletons.names()
}

// DependentsOf lists the beans that depend on name.
func (c *Container) DependentsOf(name string) []string {
	return c.singletons.dependentsOf(c.transformedName(name))
}

// DependenciesOf lists the beans name depends on.
func (c *Container) DependenciesOf(name string) []string {
	return c.singletons.dependenciesOf(c.transformedName(name))
}

// Shutdown destroys every singleton, dependents before the beans they
// depend on, most recently registered first. Errors from destruction
// callbacks are collected and returned together. Retrievals fail with
// ErrContainerShutdown afterwards.
func (c *Container) Shutdown(ctx context.Context) error {
	if !c.shutdown.CompareAndSwap(false, true) {
		return nil
	}

	var errs error
	for _, name := range c.destroyers.Names() {
		errs = multierr.Append(errs, c.destroySingleton(ctx, name))
	}
	c.singletons.clear()
	c.products.clear()
	c.created.Range(func(k, _ interface{}) bool {
		c.created.Delete(k)
		return true
	})

	c.logger.LogEvent(&beanevent.Shutdown{Err: errs})
	return errs
}

// destroySingleton removes name from the object cache and destroys it,
// after destroying every bean that depends on it.
func (c *Container) destroySingleton(ctx context.Context, name string) error {
	c.singletons.remove(name)
	c.products.remove(name)
	hook, ok := c.destroyers.Remove(name)

	var errs error
	for _, dependent := range c.singletons.takeDependents(name) {
		errs = multierr.Append(errs, c.destroySingleton(ctx, dependent))
	}
	if ok {
		errs = multierr.Append(errs, c.destroyers.Run(ctx, hook))
		c.metrics.destroyed.Inc(1)
	}
	c.singletons.dropDependencies(name)
	return errs
}
