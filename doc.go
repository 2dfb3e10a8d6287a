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

// Package beans is the object lifecycle core of a dependency injection
// container.
//
// A Container turns named Definitions into objects on demand. Definitions
// may inherit from a parent definition; the effective definition of a bean
// is computed once and cached. Each bean has a scope: singletons are created
// once per container, prototypes on every retrieval, and beans in a custom
// scope are managed by a ScopeProvider registered for that scope.
//
//	c, err := beans.New(beans.WithLogger(&beanevent.ZapLogger{Logger: log}))
//	if err != nil {
//		return err
//	}
//	c.RegisterDefinition("db", &beans.Definition{Factory: openDB})
//	c.RegisterDefinition("repo", &beans.Definition{
//		Factory:   newRepo,
//		DependsOn: []string{"db"},
//		Args:      beans.ConstructorArgs{Generic: []interface{}{beans.Ref{Name: "db"}}},
//	})
//	repo, err := c.Get(ctx, "repo")
//
// # Circular references
//
// Singletons that refer to each other through properties are wired with
// early references: while a singleton is being populated, the call chain
// creating it may receive the instance before it is fully initialized.
// Other goroutines asking for the same singleton wait for it instead.
// Singletons with different names are created concurrently; two call chains
// that end up waiting on each other are resolved with early references.
// Cycles through constructor arguments, and any cycle involving
// prototypes, fail with a *CurrentlyInCreationError.
//
// The call chain is carried by the context passed to Get. Factories that
// look up other beans should accept a context.Context as their first
// parameter and pass it on.
//
// # Producers
//
// A bean implementing Producer stands in for the object it produces. Get
// returns the product; prefixing the name with "&" returns the producer.
//
// # Shutdown
//
// Shutdown destroys singletons implementing Disposable, and those seen by a
// BeforeDestruction hook, in reverse dependency order.
package beans
