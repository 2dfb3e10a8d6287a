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
	"fmt"
	"reflect"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	otlog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"
	"go.uber.org/beans/beanevent"
	"go.uber.org/beans/internal/lifecycle"
	"go.uber.org/multierr"
)

// createBean runs the whole creation pipeline for one bean: instantiation,
// population, initialization, and registration of its destruction callback.
func (c *Container) createBean(ctx context.Context, name string, mbd *MergedDefinition, args []interface{}) (obj interface{}, err error) {
	span, ctx := opentracing.StartSpanFromContextWithTracer(ctx, c.tracer, "beans.create")
	span.SetTag("bean.name", name)
	span.SetTag("bean.scope", mbd.Scope.Name)

	c.logger.LogEvent(&beanevent.Creating{Name: name, Scope: mbd.Scope.Name})
	begin := c.clock.Now()
	defer func() {
		runtime := c.clock.Since(begin)
		if err != nil {
			ext.Error.Set(span, true)
			span.LogFields(otlog.Error(err))
			c.metrics.creationFailed.Inc(1)
		} else {
			c.metrics.created.Inc(1)
			c.metrics.createLatency.Record(runtime)
		}
		span.Finish()
		c.logger.LogEvent(&beanevent.Created{
			Name:    name,
			Scope:   mbd.Scope.Name,
			Runtime: runtime,
			Err:     err,
		})
	}()

	obj, err = c.doCreateBean(ctx, name, mbd, args)
	if err != nil {
		var ce *CreationError
		if !errors.As(err, &ce) || ce.Name != name {
			err = &CreationError{Name: name, Source: mbd.Source, Err: err}
		}
		return nil, err
	}
	return obj, nil
}

func (c *Container) doCreateBean(ctx context.Context, name string, mbd *MergedDefinition, args []interface{}) (interface{}, error) {
	typ, err := mbd.resolveType(c.typeResolver)
	if err != nil {
		return nil, err
	}

	if obj, err := c.beforeInstantiation(ctx, name, mbd); err != nil {
		return nil, err
	} else if obj != nil {
		return c.afterInitialization(ctx, name, obj)
	}

	req := &ConstructRequest{
		Name:       name,
		Definition: mbd,
		Type:       typ,
		Args:       args,
		Resolver:   c,
		Converter:  c,
	}
	raw, err := c.constructor.Instantiate(ctx, req)
	if err != nil {
		return nil, err
	}

	early := mbd.Scope.Kind == ScopeSingleton &&
		c.cfg.AllowCircularReferences &&
		c.singletons.isCurrentlyInCreation(name)
	if early {
		c.singletons.addFactory(name, func() (interface{}, error) {
			return c.earlyReference(ctx, name, mbd, raw)
		})
	}

	populate := true
	if !mbd.Synthetic {
		for _, h := range c.currentHooks() {
			if h.AfterInstantiation == nil {
				continue
			}
			ok, err := h.AfterInstantiation(ctx, name, raw)
			if err != nil {
				return nil, err
			}
			if !ok {
				populate = false
				break
			}
		}
	}
	if populate {
		if err := c.constructor.Populate(ctx, req, raw); err != nil {
			return nil, err
		}
	}

	obj, err := c.initializeBean(ctx, name, mbd, raw)
	if err != nil {
		return nil, err
	}

	if early {
		if ref, ok := c.singletons.earlyObject(name); ok {
			if sameInstance(obj, raw) {
				obj = ref
			} else if deps := c.createdDependents(name); len(deps) > 0 {
				return nil, &CurrentlyInCreationError{
					Name: name,
					Reason: fmt.Sprintf("bean has been injected into other beans %v in its raw version "+
						"as part of a circular reference, but has eventually been wrapped", deps),
				}
			}
		}
	}

	if err := c.registerDisposal(ctx, name, mbd, obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func (c *Container) beforeInstantiation(ctx context.Context, name string, mbd *MergedDefinition) (interface{}, error) {
	if mbd.Synthetic {
		return nil, nil
	}
	for _, h := range c.currentHooks() {
		if h.BeforeInstantiation == nil {
			continue
		}
		obj, err := h.BeforeInstantiation(ctx, name, mbd)
		if err != nil || obj != nil {
			return obj, err
		}
	}
	return nil, nil
}

func (c *Container) earlyReference(ctx context.Context, name string, mbd *MergedDefinition, obj interface{}) (interface{}, error) {
	if mbd.Synthetic {
		return obj, nil
	}
	for _, h := range c.currentHooks() {
		if h.EarlyReference == nil {
			continue
		}
		ref, err := h.EarlyReference(ctx, name, obj)
		if err != nil {
			return nil, err
		}
		if ref != nil {
			obj = ref
		}
	}
	return obj, nil
}

func (c *Container) initializeBean(ctx context.Context, name string, mbd *MergedDefinition, obj interface{}) (interface{}, error) {
	if aware, ok := obj.(NameAware); ok {
		aware.SetBeanName(name)
	}
	if aware, ok := obj.(ContainerAware); ok {
		aware.SetContainer(c)
	}

	var err error
	if !mbd.Synthetic {
		obj, err = c.applyHooks(ctx, name, obj, func(h Hook) func(context.Context, string, interface{}) (interface{}, error) {
			return h.BeforeInitialization
		})
		if err != nil {
			return nil, err
		}
	}

	if initializer, ok := obj.(Initializer); ok {
		if err := initializer.Init(ctx); err != nil {
			return nil, errors.Wrap(err, "initialization failed")
		}
	}

	if mbd.Synthetic {
		return obj, nil
	}
	return c.afterInitialization(ctx, name, obj)
}

func (c *Container) afterInitialization(ctx context.Context, name string, obj interface{}) (interface{}, error) {
	return c.applyHooks(ctx, name, obj, func(h Hook) func(context.Context, string, interface{}) (interface{}, error) {
		return h.AfterInitialization
	})
}

// applyHooks threads obj through one callback of every hook. A callback
// returning nil keeps the current object.
func (c *Container) applyHooks(
	ctx context.Context,
	name string,
	obj interface{},
	pick func(Hook) func(context.Context, string, interface{}) (interface{}, error),
) (interface{}, error) {
	for _, h := range c.currentHooks() {
		fn := pick(h)
		if fn == nil {
			continue
		}
		next, err := fn(ctx, name, obj)
		if err != nil {
			return nil, err
		}
		if next != nil {
			obj = next
		}
	}
	return obj, nil
}

// createdDependents lists the dependents of name that have actually been
// created, ignoring those only probed for their type.
func (c *Container) createdDependents(name string) []string {
	var deps []string
	for _, d := range c.singletons.dependentsOf(name) {
		if c.hasBeenCreated(d) {
			deps = append(deps, d)
		}
	}
	return deps
}

// registerDisposal arranges for obj to be destroyed with its scope.
// Prototypes are never destroyed by the container.
func (c *Container) registerDisposal(ctx context.Context, name string, mbd *MergedDefinition, obj interface{}) error {
	if mbd.Scope.Kind == ScopePrototype {
		return nil
	}
	if _, ok := obj.(Disposable); !ok && (mbd.Synthetic || !c.hasDestructionHooks()) {
		return nil
	}

	destroy := c.destructionCallback(name, mbd, obj)
	switch mbd.Scope.Kind {
	case ScopeSingleton:
		c.destroyers.Append(lifecycle.Hook{Name: name, OnStop: destroy})
	case ScopeCustom:
		provider, ok := c.scopes.get(mbd.Scope.Name)
		if !ok {
			return &ScopeError{Name: name, Scope: mbd.Scope.Name}
		}
		return provider.RegisterDestructionCallback(ctx, name, func(ctx context.Context) error {
			return c.destroyers.Run(ctx, lifecycle.Hook{Name: name, OnStop: destroy})
		})
	}
	return nil
}

func (c *Container) destructionCallback(name string, mbd *MergedDefinition, obj interface{}) func(context.Context) error {
	var hooks []Hook
	if !mbd.Synthetic {
		hooks = c.currentHooks()
	}
	return func(ctx context.Context) error {
		var errs error
		for _, h := range hooks {
			if h.BeforeDestruction != nil {
				errs = multierr.Append(errs, h.BeforeDestruction(ctx, name, obj))
			}
		}
		if d, ok := obj.(Disposable); ok {
			errs = multierr.Append(errs, d.Destroy(ctx))
		}
		return errs
	}
}

// sameInstance reports whether a and b are the same object. Unlike ==, it
// never panics on uncomparable values.
func sameInstance(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	if va.Type().Comparable() {
		return a == b
	}
	return false
}
