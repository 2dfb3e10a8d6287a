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
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/beans/beanevent"
	"go.uber.org/beans/internal/beanreflect"
)

// Producer is a bean that produces another object. Get returns the product;
// the producer itself is returned for names prefixed with "&".
type Producer interface {
	// Product returns the produced object.
	Product(ctx context.Context) (interface{}, error)
	// ProductType reports the type of the product, or nil if it is not known
	// in advance.
	ProductType() reflect.Type
	// IsSingletonProduct reports whether Product always returns the same
	// object. Singleton products of singleton producers are cached.
	IsSingletonProduct() bool
}

// EagerProducer is a Producer whose product PreInstantiateSingletons should
// create along with the producer.
type EagerProducer interface {
	Producer

	IsEagerInit() bool
}

var _producerType = reflect.TypeOf((*Producer)(nil)).Elem()

// ProducerFunc adapts a function into a Producer. The product type is T,
// which lets type queries answer without creating the producer.
type ProducerFunc[T any] struct {
	Fn func(context.Context) (T, error)
	// Prototype makes every Product call invoke Fn again.
	Prototype bool
}

var _ Producer = ProducerFunc[int]{}

// Produce calls the wrapped function.
func (p ProducerFunc[T]) Produce(ctx context.Context) (T, error) {
	if p.Fn == nil {
		var zero T
		return zero, errors.New("producer function is nil")
	}
	return p.Fn(ctx)
}

// Product implements Producer.
func (p ProducerFunc[T]) Product(ctx context.Context) (interface{}, error) {
	return p.Produce(ctx)
}

// ProductType implements Producer.
func (p ProducerFunc[T]) ProductType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// IsSingletonProduct implements Producer.
func (p ProducerFunc[T]) IsSingletonProduct() bool {
	return !p.Prototype
}

// productCache holds the singleton products of singleton producers.
type productCache struct {
	waits *waitGraph

	mu       sync.RWMutex
	products map[string]interface{}
	inflight map[string]*inflight
}

func newProductCache(waits *waitGraph) *productCache {
	return &productCache{
		waits:    waits,
		products: make(map[string]interface{}),
		inflight: make(map[string]*inflight),
	}
}

func (pc *productCache) get(name string) (interface{}, bool) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	obj, ok := pc.products[name]
	return obj, ok
}

func (pc *productCache) put(name string, obj interface{}) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.products[name] = obj
}

func (pc *productCache) remove(name string) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	delete(pc.products, name)
}

func (pc *productCache) clear() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.products = make(map[string]interface{})
}

// getOrProduce returns the cached product for name, running produce if
// there is none. produce also reports whether its result may be cached.
// Callers from other frames wait for a production in progress.
func (pc *productCache) getOrProduce(owner uint64, name string, produce func() (interface{}, bool, error)) (interface{}, error) {
	for {
		pc.mu.Lock()
		if obj, ok := pc.products[name]; ok {
			pc.mu.Unlock()
			return obj, nil
		}
		f := pc.inflight[name]
		if f == nil {
			f = &inflight{owner: owner, done: make(chan struct{})}
			pc.inflight[name] = f
			pc.mu.Unlock()
			return pc.run(name, f, produce)
		}
		pc.mu.Unlock()

		if f.owner == owner {
			// Production recursed into its own product.
			obj, cache, err := produce()
			if err == nil && cache {
				pc.put(name, obj)
			}
			return obj, err
		}
		if !pc.waits.wait(owner, f) {
			return nil, &CurrentlyInCreationError{
				Name:   name,
				Reason: "product is being produced by another call chain that is waiting for this one",
			}
		}
		if f.err != nil {
			return nil, f.err
		}
	}
}

func (pc *productCache) run(name string, f *inflight, produce func() (interface{}, bool, error)) (obj interface{}, err error) {
	cache := false
	defer func() {
		pc.mu.Lock()
		delete(pc.inflight, name)
		if f.err == nil {
			if cached, ok := pc.products[name]; ok {
				f.obj = cached
			} else if cache {
				pc.products[name] = f.obj
			}
		}
		pc.mu.Unlock()
		close(f.done)
		obj, err = f.obj, f.err
	}()

	f.err = errors.New("production panicked")
	f.obj, cache, f.err = produce()
	return f.obj, f.err
}

// objectForInstance returns what a request for name should see of obj: the
// object itself, or the product if obj is a Producer and name does not ask
// for the producer.
func (c *Container) objectForInstance(
	ctx context.Context,
	obj interface{},
	name, beanName string,
	mbd *MergedDefinition,
	typeCheckOnly bool,
) (interface{}, error) {
	p, ok := obj.(Producer)
	if isDereference(name) {
		if !ok {
			return nil, &NotAProducerError{Name: beanName, Actual: reflect.TypeOf(obj)}
		}
		return obj, nil
	}
	if !ok || typeCheckOnly {
		return obj, nil
	}

	if mbd == nil && c.ContainsDefinition(beanName) {
		var err error
		if mbd, err = c.localMergedDefinition(beanName); err != nil {
			return nil, err
		}
	}
	synthetic := mbd != nil && mbd.Synthetic
	return c.productFrom(ctx, p, beanName, synthetic)
}

// productFrom returns the product of p. Products go through the product
// cache when p is a singleton reporting singleton products and its
// definition is not synthetic. Products of synthetic definitions are not
// post-processed.
func (c *Container) productFrom(ctx context.Context, p Producer, name string, synthetic bool) (interface{}, error) {
	if synthetic || !p.IsSingletonProduct() || !c.singletons.contains(name) {
		obj, err := c.produce(ctx, p, name)
		if err != nil || synthetic {
			return obj, err
		}
		return c.postProcessProduct(ctx, name, obj)
	}

	if obj, ok := c.products.get(name); ok {
		c.metrics.productCacheHit.Inc(1)
		return obj, nil
	}

	ctx, frame := withCreationFrame(ctx)
	return c.products.getOrProduce(frame.id, name, func() (interface{}, bool, error) {
		obj, err := c.produce(ctx, p, name)
		if err != nil {
			return nil, false, err
		}
		if c.singletons.isCurrentlyInCreation(name) {
			// Hand out the raw product for now; it is not cached.
			return obj, false, nil
		}
		if obj, err = c.postProcessProduct(ctx, name, obj); err != nil {
			return nil, false, err
		}
		return obj, c.singletons.contains(name), nil
	})
}

func (c *Container) produce(ctx context.Context, p Producer, name string) (interface{}, error) {
	obj, err := p.Product(ctx)
	if err != nil {
		if isCurrentlyInCreation(err) {
			return nil, err
		}
		return nil, &CreationError{Name: name, Err: errors.Wrap(err, "producer failed to produce object")}
	}
	if obj == nil && c.singletons.isCurrentlyInCreation(name) {
		return nil, &CurrentlyInCreationError{
			Name:   name,
			Reason: "producer which is currently in creation returned nil from Product",
		}
	}
	return obj, nil
}

func (c *Container) postProcessProduct(ctx context.Context, name string, obj interface{}) (interface{}, error) {
	out, err := c.afterInitialization(ctx, name, obj)
	if err != nil {
		return nil, &CreationError{Name: name, Err: errors.Wrap(err, "post-processing of produced object failed")}
	}
	return out, nil
}

// isProducerDefinition reports whether mbd's predicted type is a Producer.
func (c *Container) isProducerDefinition(mbd *MergedDefinition) bool {
	t := mbd.predictType(c.typeResolver)
	return t != nil && t.Implements(_producerType)
}

// GetType reports the type of the bean name refers to without creating it
// where possible. For a Producer it reports the product type unless name
// asks for the producer. A nil type with a nil error means the type cannot
// be determined.
func (c *Container) GetType(ctx context.Context, name string) (reflect.Type, error) {
	ctx, frame := withCreationFrame(ctx)
	beanName := c.transformedName(name)
	deref := isDereference(name)

	if obj, found, err := c.singletons.lookup(beanName, frame.id, false); err != nil {
		return nil, err
	} else if found && obj != nil {
		if p, ok := obj.(Producer); ok && !deref {
			return p.ProductType(), nil
		}
		return reflect.TypeOf(obj), nil
	}

	if c.parent != nil && !c.ContainsDefinition(beanName) {
		return c.parent.GetType(ctx, c.originalName(name))
	}

	mbd, err := c.localMergedDefinition(beanName)
	if err != nil {
		return nil, err
	}
	t := mbd.predictType(c.typeResolver)
	if t == nil || deref || !t.Implements(_producerType) {
		return t, nil
	}
	return c.productType(ctx, beanName, mbd, t)
}

// productType predicts the product type of a producer bean. Creating the
// producer is the last resort and only done for singletons; failures of
// that probe degrade to an unknown type.
func (c *Container) productType(ctx context.Context, beanName string, mbd *MergedDefinition, producerType reflect.Type) (reflect.Type, error) {
	if mbd.TargetType != nil {
		return mbd.TargetType, nil
	}
	if t := beanreflect.MethodResultType(producerType, "Produce"); t != nil {
		return t, nil
	}
	if mbd.Scope.Kind != ScopeSingleton {
		return nil, nil
	}

	obj, err := c.doGet(ctx, DereferencePrefix+beanName, nil, nil, true)
	if err != nil {
		var (
			defErr   *DefinitionError
			scopeErr *ScopeError
			creation *CreationError
		)
		switch {
		case errors.As(err, &defErr), errors.As(err, &scopeErr):
			return nil, err
		case isCurrentlyInCreation(err), errors.As(err, &creation):
			c.logger.LogEvent(&beanevent.TypeProbeFailed{Name: beanName, Err: err})
			return nil, nil
		default:
			return nil, err
		}
	}
	if p, ok := obj.(Producer); ok {
		return p.ProductType(), nil
	}
	return nil, nil
}
