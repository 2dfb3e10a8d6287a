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
	"reflect"

	"github.com/pkg/errors"
	"go.uber.org/beans/beanevent"
)

// Get returns the bean registered under name, creating it if its scope
// requires. If the bean is a Producer, its product is returned unless name
// carries the "&" prefix.
//
// ctx identifies the call chain: a bean being created by ctx's chain is
// visible to it early, while other callers block until it is ready.
// Factories and hooks that look up other beans should pass on the context
// they received. A lookup made with an unrelated context is a separate call
// chain, and a cycle that runs through one cannot be resolved.
func (c *Container) Get(ctx context.Context, name string) (interface{}, error) {
	return c.doGet(ctx, name, nil, nil, false)
}

// GetAs is like Get but also converts the bean to requiredType if it is not
// already assignable to it.
func (c *Container) GetAs(ctx context.Context, name string, requiredType reflect.Type) (interface{}, error) {
	return c.doGet(ctx, name, requiredType, nil, false)
}

// GetWithArgs is like Get but passes explicit constructor arguments,
// overriding the definition's. Arguments only take effect when a new
// instance is created.
func (c *Container) GetWithArgs(ctx context.Context, name string, args ...interface{}) (interface{}, error) {
	return c.doGet(ctx, name, nil, args, false)
}

func (c *Container) doGet(
	ctx context.Context,
	name string,
	requiredType reflect.Type,
	args []interface{},
	typeCheckOnly bool,
) (interface{}, error) {
	if c.shutdown.Load() {
		return nil, ErrContainerShutdown
	}
	ctx, frame := withCreationFrame(ctx)
	beanName := c.transformedName(name)

	shared, found, err := c.singletons.lookup(beanName, frame.id, true)
	if err != nil {
		return nil, err
	}

	var bean interface{}
	if found && len(args) == 0 {
		if c.singletons.isCurrentlyInCreation(beanName) {
			c.logger.LogEvent(&beanevent.EarlyReference{Name: beanName})
		} else {
			c.metrics.cacheHit.Inc(1)
		}
		bean, err = c.objectForInstance(ctx, shared, name, beanName, nil, typeCheckOnly)
	} else {
		if frame.prototypeInCreation(c, beanName) {
			return nil, &CurrentlyInCreationError{Name: beanName}
		}

		if c.parent != nil && !c.ContainsDefinition(beanName) {
			return c.parent.doGet(ctx, c.originalName(name), requiredType, args, typeCheckOnly)
		}

		if !typeCheckOnly {
			c.markCreated(beanName)
		}
		bean, err = c.createScoped(ctx, frame, name, beanName, args, typeCheckOnly)
		if err != nil && !typeCheckOnly {
			c.unmarkCreated(beanName)
		}
	}
	if err != nil {
		return nil, err
	}
	return c.adapt(ctx, beanName, bean, requiredType)
}

// createScoped resolves the definition of beanName and creates the bean as
// its scope dictates.
func (c *Container) createScoped(
	ctx context.Context,
	frame *creationFrame,
	name, beanName string,
	args []interface{},
	typeCheckOnly bool,
) (interface{}, error) {
	mbd, err := c.localMergedDefinition(beanName)
	if err != nil {
		return nil, err
	}
	if mbd.Abstract {
		return nil, &DefinitionError{Name: beanName, Source: mbd.Source, Reason: "bean definition is abstract"}
	}

	if err := c.createDependsOn(ctx, beanName, mbd); err != nil {
		return nil, err
	}

	var obj interface{}
	switch mbd.Scope.Kind {
	case ScopeSingleton:
		obj, err = c.singletons.getOrCreate(frame.id, beanName, func() (interface{}, error) {
			obj, err := c.createBean(ctx, beanName, mbd, args)
			if err != nil {
				// Drop what this attempt left behind.
				_ = c.destroySingleton(ctx, beanName)
			}
			return obj, err
		})

	case ScopePrototype:
		obj, err = c.createPrototype(ctx, frame, beanName, mbd, args)

	case ScopeCustom:
		provider, ok := c.scopes.get(mbd.Scope.Name)
		if !ok {
			return nil, &ScopeError{Name: beanName, Scope: mbd.Scope.Name}
		}
		obj, err = provider.Get(ctx, beanName, func(sctx context.Context) (interface{}, error) {
			return c.createPrototype(attachFrame(sctx, frame), frame, beanName, mbd, args)
		})
		if err != nil && errors.Is(err, ErrScopeNotActive) {
			var notActive *ScopeNotActiveError
			if !errors.As(err, &notActive) {
				err = &ScopeNotActiveError{Name: beanName, Scope: mbd.Scope.Name, Err: err}
			}
		}

	default:
		return nil, &DefinitionError{Name: beanName, Source: mbd.Source, Reason: "unknown scope kind " + mbd.Scope.Kind.String()}
	}
	if err != nil {
		return nil, err
	}
	return c.objectForInstance(ctx, obj, name, beanName, mbd, typeCheckOnly)
}

// createDependsOn creates every bean mbd declares as a dependency. A cycle
// or a missing target fails creation of beanName with a *CreationError
// wrapping a *DependencyError.
func (c *Container) createDependsOn(ctx context.Context, beanName string, mbd *MergedDefinition) error {
	for _, dep := range mbd.DependsOn {
		depName := c.transformedName(dep)
		if c.singletons.isDependent(beanName, depName) {
			return &CreationError{
				Name:   beanName,
				Source: mbd.Source,
				Err:    &DependencyError{Name: beanName, DependsOn: depName, Cycle: true},
			}
		}
		c.singletons.registerDependent(depName, beanName)

		if _, err := c.doGet(ctx, dep, nil, nil, false); err != nil {
			var missing *NoSuchDefinitionError
			if errors.As(err, &missing) && missing.Name == depName {
				return &CreationError{
					Name:   beanName,
					Source: mbd.Source,
					Err:    &DependencyError{Name: beanName, DependsOn: depName, Err: err},
				}
			}
			return err
		}
	}
	return nil
}

func (c *Container) createPrototype(
	ctx context.Context,
	frame *creationFrame,
	beanName string,
	mbd *MergedDefinition,
	args []interface{},
) (interface{}, error) {
	frame.beginPrototype(c, beanName)
	defer frame.endPrototype(c, beanName)
	return c.createBean(ctx, beanName, mbd, args)
}

// adapt converts bean to requiredType unless it is already assignable.
func (c *Container) adapt(ctx context.Context, beanName string, bean interface{}, requiredType reflect.Type) (interface{}, error) {
	if requiredType == nil || bean == nil {
		return bean, nil
	}
	actual := reflect.TypeOf(bean)
	if actual.AssignableTo(requiredType) {
		return bean, nil
	}
	converted, err := c.Convert(ctx, bean, requiredType)
	if err != nil {
		return nil, &NotOfRequiredTypeError{Name: beanName, Required: requiredType, Actual: actual, Err: err}
	}
	return converted, nil
}

// IsSingleton reports whether Get for name always returns the same
// instance.
func (c *Container) IsSingleton(ctx context.Context, name string) (bool, error) {
	ctx, frame := withCreationFrame(ctx)
	beanName := c.transformedName(name)
	deref := isDereference(name)

	if obj, found, err := c.singletons.lookup(beanName, frame.id, false); err != nil {
		return false, err
	} else if found {
		if p, ok := obj.(Producer); ok {
			return deref || p.IsSingletonProduct(), nil
		}
		return !deref, nil
	}

	if c.parent != nil && !c.ContainsDefinition(beanName) {
		return c.parent.IsSingleton(ctx, c.originalName(name))
	}

	mbd, err := c.localMergedDefinition(beanName)
	if err != nil {
		return false, err
	}
	if mbd.Scope.Kind != ScopeSingleton {
		return false, nil
	}
	if !c.isProducerDefinition(mbd) {
		return !deref, nil
	}
	if deref {
		return true, nil
	}
	p, err := c.producer(ctx, beanName)
	if err != nil {
		return false, err
	}
	return p.IsSingletonProduct(), nil
}

// IsPrototype reports whether Get for name always returns a new instance.
func (c *Container) IsPrototype(ctx context.Context, name string) (bool, error) {
	beanName := c.transformedName(name)
	deref := isDereference(name)

	if c.parent != nil && !c.ContainsDefinition(beanName) {
		return c.parent.IsPrototype(ctx, c.originalName(name))
	}

	mbd, err := c.localMergedDefinition(beanName)
	if err != nil {
		return false, err
	}
	producer := c.isProducerDefinition(mbd)
	if mbd.Scope.Kind == ScopePrototype {
		return !deref || producer, nil
	}
	if deref || !producer {
		return false, nil
	}
	p, err := c.producer(ctx, beanName)
	if err != nil {
		return false, err
	}
	return !p.IsSingletonProduct(), nil
}

// ContainsBean reports whether name refers to a bean this container or an
// ancestor can return.
func (c *Container) ContainsBean(name string) bool {
	beanName := c.transformedName(name)
	if c.singletons.contains(beanName) || c.ContainsDefinition(beanName) {
		if !isDereference(name) {
			return true
		}
		return c.isProducerBean(beanName)
	}
	if c.parent != nil {
		return c.parent.ContainsBean(c.originalName(name))
	}
	return false
}

func (c *Container) isProducerBean(beanName string) bool {
	if obj, found, _ := c.singletons.lookup(beanName, 0, false); found {
		_, ok := obj.(Producer)
		return ok
	}
	mbd, err := c.localMergedDefinition(beanName)
	if err != nil {
		return false
	}
	return c.isProducerDefinition(mbd)
}

// producer returns the Producer registered under beanName.
func (c *Container) producer(ctx context.Context, beanName string) (Producer, error) {
	obj, err := c.doGet(ctx, DereferencePrefix+beanName, nil, nil, false)
	if err != nil {
		return nil, err
	}
	p, ok := obj.(Producer)
	if !ok {
		return nil, &NotAProducerError{Name: beanName, Actual: reflect.TypeOf(obj)}
	}
	return p, nil
}
