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

	"github.com/pkg/errors"
	"go.uber.org/beans/beanevent"
)

// PreInstantiateSingletons creates every singleton that is neither abstract
// nor lazy. A Producer's product is only created along with it if the
// producer is an EagerProducer asking for it. Afterwards every singleton
// implementing SingletonsReady is notified.
func (c *Container) PreInstantiateSingletons(ctx context.Context) (err error) {
	var count int
	defer func() {
		c.logger.LogEvent(&beanevent.SingletonsPreInstantiated{Count: count, Err: err})
	}()

	names := c.store.DefinitionNames()
	for _, name := range names {
		mbd, err := c.localMergedDefinition(name)
		if err != nil {
			return err
		}
		if mbd.Abstract || mbd.Scope.Kind != ScopeSingleton || mbd.LazyInit {
			continue
		}

		if c.isProducerDefinition(mbd) {
			p, err := c.producer(ctx, name)
			if err != nil {
				return err
			}
			if eager, ok := p.(EagerProducer); ok && eager.IsEagerInit() {
				if _, err := c.Get(ctx, name); err != nil {
					return err
				}
			}
		} else if _, err := c.Get(ctx, name); err != nil {
			return err
		}
		count++
	}

	for _, name := range names {
		obj, found, err := c.singletons.lookup(name, 0, false)
		if err != nil || !found {
			continue
		}
		if ready, ok := obj.(SingletonsReady); ok {
			if err := ready.AfterSingletonsInstantiated(ctx); err != nil {
				return errors.Wrapf(err, "bean %q failed after singletons were instantiated", name)
			}
		}
	}
	return nil
}
