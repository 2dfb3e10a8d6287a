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
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/beans/internal/eventtest"
	"golang.org/x/sync/errgroup"
)

func TestGetSingleton(t *testing.T) {
	t.Parallel()

	t.Run("ConcurrentCallersShareOneInstance", func(t *testing.T) {
		c := newTestContainer(t)
		var calls int32
		register(t, c, "a", &Definition{Factory: func() *node {
			atomic.AddInt32(&calls, 1)
			time.Sleep(10 * time.Millisecond)
			return &node{Name: "a"}
		}})

		const n = 16
		results := make([]interface{}, n)
		var g errgroup.Group
		for i := 0; i < n; i++ {
			i := i
			g.Go(func() error {
				obj, err := c.Get(context.Background(), "a")
				results[i] = obj
				return err
			})
		}
		require.NoError(t, g.Wait())

		assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "factory must run exactly once")
		for _, r := range results {
			assert.Same(t, results[0], r)
		}
	})

	t.Run("FactoryLooksUpWithUnrelatedContext", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "b", &Definition{Factory: func() *node { return &node{Name: "b"} }})
		register(t, c, "a", &Definition{Factory: func() (*node, error) {
			b, err := c.Get(context.Background(), "b")
			if err != nil {
				return nil, err
			}
			return &node{Name: "a", Next: b.(*node)}, nil
		}})

		done := make(chan error, 1)
		go func() {
			_, err := c.Get(_ctx, "a")
			done <- err
		}()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("Get(a) did not return")
		}

		a, err := c.Get(_ctx, "a")
		require.NoError(t, err)
		b, err := c.Get(_ctx, "b")
		require.NoError(t, err)
		assert.Same(t, b, a.(*node).Next)
	})

	t.Run("ConcurrentCallersShareFailure", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "a", &Definition{Factory: func() (*node, error) {
			time.Sleep(5 * time.Millisecond)
			return nil, errors.New("great sadness")
		}})

		var g errgroup.Group
		errs := make([]error, 8)
		for i := range errs {
			i := i
			g.Go(func() error {
				_, errs[i] = c.Get(context.Background(), "a")
				return nil
			})
		}
		require.NoError(t, g.Wait())
		for _, err := range errs {
			assert.ErrorContains(t, err, "great sadness")
		}
	})

	t.Run("CachedAfterCreation", func(t *testing.T) {
		c := newTestContainer(t)
		var calls int
		register(t, c, "a", &Definition{Factory: func() *node {
			calls++
			return &node{}
		}})

		first, err := c.Get(_ctx, "a")
		require.NoError(t, err)
		second, err := c.Get(_ctx, "a")
		require.NoError(t, err)
		assert.Same(t, first, second)
		assert.Equal(t, 1, calls)
		assert.Equal(t, []string{"a"}, c.SingletonNames())
	})

	t.Run("RegisteredSingleton", func(t *testing.T) {
		c := newTestContainer(t)
		n := &node{Name: "manual"}
		require.NoError(t, c.RegisterSingleton("manual", n))
		assert.Error(t, c.RegisterSingleton("manual", n))

		obj, err := c.Get(_ctx, "manual")
		require.NoError(t, err)
		assert.Same(t, n, obj)
		assert.True(t, c.ContainsBean("manual"))
		assert.False(t, c.ContainsDefinition("manual"))
	})
}

func TestCircularReferences(t *testing.T) {
	t.Parallel()

	cycle := func(t *testing.T, c *Container) {
		register(t, c, "a", &Definition{Type: _nodeType, Properties: Properties{
			{Name: "name", Value: "a"},
			{Name: "next", Value: Ref{Name: "b"}},
		}})
		register(t, c, "b", &Definition{Type: _nodeType, Properties: Properties{
			{Name: "name", Value: "b"},
			{Name: "next", Value: Ref{Name: "a"}},
		}})
	}

	t.Run("SingletonsThroughProperties", func(t *testing.T) {
		spy := new(eventtest.Spy)
		c := newTestContainer(t, WithLogger(spy))
		cycle(t, c)

		obj, err := c.Get(_ctx, "a")
		require.NoError(t, err)
		a := obj.(*node)
		require.NotNil(t, a.Next)
		assert.Equal(t, "b", a.Next.Name)
		assert.Same(t, a, a.Next.Next)

		b, err := c.Get(_ctx, "b")
		require.NoError(t, err)
		assert.Same(t, a.Next, b)

		assert.Contains(t, spy.EventTypes(), "EarlyReference")
		assert.Equal(t, []string{"b"}, c.DependentsOf("a"))
		assert.Equal(t, []string{"a"}, c.DependentsOf("b"))
	})

	t.Run("DisallowedFails", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.AllowCircularReferences = false
		c := newTestContainer(t, WithConfig(cfg))
		cycle(t, c)

		_, err := c.Get(_ctx, "a")
		var inCreation *CurrentlyInCreationError
		require.True(t, errors.As(err, &inCreation), "expected CurrentlyInCreationError, got %v", err)
		assert.Equal(t, "a", inCreation.Name)
		assert.False(t, c.singletons.contains("a"))
		assert.False(t, c.singletons.contains("b"))
	})

	t.Run("ConstructorCycleFails", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "a", &Definition{
			Factory: func(b *node) *node { return &node{Next: b} },
			Args:    ConstructorArgs{Generic: []interface{}{Ref{Name: "b"}}},
		})
		register(t, c, "b", &Definition{
			Factory: func(a *node) *node { return &node{Next: a} },
			Args:    ConstructorArgs{Generic: []interface{}{Ref{Name: "a"}}},
		})

		_, err := c.Get(_ctx, "a")
		var inCreation *CurrentlyInCreationError
		require.True(t, errors.As(err, &inCreation), "expected CurrentlyInCreationError, got %v", err)
	})

	t.Run("WrappedAfterEarlyExposureFails", func(t *testing.T) {
		c := newTestContainer(t, WithHooks(Hook{
			AfterInitialization: func(_ context.Context, name string, obj interface{}) (interface{}, error) {
				if name == "a" {
					return &node{Name: "wrapped"}, nil
				}
				return nil, nil
			},
		}))
		cycle(t, c)

		_, err := c.Get(_ctx, "a")
		var inCreation *CurrentlyInCreationError
		require.True(t, errors.As(err, &inCreation), "expected CurrentlyInCreationError, got %v", err)
		assert.Contains(t, inCreation.Reason, "raw version")
	})

	t.Run("EarlyReferenceHookIsUsedConsistently", func(t *testing.T) {
		wrapper := &node{Name: "wrapper"}
		c := newTestContainer(t, WithHooks(Hook{
			EarlyReference: func(_ context.Context, name string, obj interface{}) (interface{}, error) {
				if name == "a" {
					return wrapper, nil
				}
				return obj, nil
			},
		}))
		cycle(t, c)

		a, err := c.Get(_ctx, "a")
		require.NoError(t, err)
		assert.Same(t, wrapper, a, "the early reference replaces the raw bean")
		b, err := c.Get(_ctx, "b")
		require.NoError(t, err)
		assert.Same(t, wrapper, b.(*node).Next)
	})
}

func TestPrototype(t *testing.T) {
	t.Parallel()

	t.Run("NewInstanceEveryTime", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "p", &Definition{Type: _nodeType, Scope: PrototypeScope})

		a, err := c.Get(_ctx, "p")
		require.NoError(t, err)
		b, err := c.Get(_ctx, "p")
		require.NoError(t, err)
		assert.NotSame(t, a, b)
		assert.Empty(t, c.SingletonNames())
	})

	t.Run("SelfCycleFails", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "p", &Definition{Type: _nodeType, Scope: PrototypeScope, Properties: Properties{
			{Name: "next", Value: Ref{Name: "p"}},
		}})

		_, err := c.Get(_ctx, "p")
		var inCreation *CurrentlyInCreationError
		require.True(t, errors.As(err, &inCreation), "expected CurrentlyInCreationError, got %v", err)
		assert.Equal(t, "p", inCreation.Name)
	})

	t.Run("TransitiveCycleFails", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "p1", &Definition{Type: _nodeType, Scope: PrototypeScope, Properties: Properties{
			{Name: "next", Value: Ref{Name: "p2"}},
		}})
		register(t, c, "p2", &Definition{Type: _nodeType, Scope: PrototypeScope, Properties: Properties{
			{Name: "next", Value: Ref{Name: "p1"}},
		}})

		_, err := c.Get(_ctx, "p1")
		var inCreation *CurrentlyInCreationError
		require.True(t, errors.As(err, &inCreation), "expected CurrentlyInCreationError, got %v", err)
	})

	t.Run("ConcurrentChainsDoNotInterfere", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "p", &Definition{Scope: PrototypeScope, Factory: func() *node {
			time.Sleep(time.Millisecond)
			return &node{}
		}})

		var g errgroup.Group
		for i := 0; i < 8; i++ {
			g.Go(func() error {
				_, err := c.Get(context.Background(), "p")
				return err
			})
		}
		assert.NoError(t, g.Wait())
	})

	t.Run("ExplicitArgs", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "p", &Definition{
			Scope: PrototypeScope,
			Factory: func(name string, size int) *node {
				return &node{Name: name, Size: size}
			},
			Args: ConstructorArgs{Generic: []interface{}{"default", "1"}},
		})

		obj, err := c.GetWithArgs(_ctx, "p", "custom", 7)
		require.NoError(t, err)
		assert.Equal(t, &node{Name: "custom", Size: 7}, obj)

		obj, err = c.Get(_ctx, "p")
		require.NoError(t, err)
		assert.Equal(t, &node{Name: "default", Size: 1}, obj)
	})
}

func TestFailureCleanup(t *testing.T) {
	t.Parallel()

	t.Run("RetryStartsFromScratch", func(t *testing.T) {
		c := newTestContainer(t)
		var attempts int
		fail := true
		register(t, c, "x", &Definition{Factory: func() (*node, error) {
			attempts++
			if fail {
				return nil, errors.New("great sadness")
			}
			return &node{Name: "x"}, nil
		}})

		_, err := c.Get(_ctx, "x")
		var creation *CreationError
		require.True(t, errors.As(err, &creation), "expected CreationError, got %v", err)
		assert.Equal(t, "x", creation.Name)
		assert.NotEmpty(t, creation.Source)
		assert.Contains(t, err.Error(), "great sadness")

		assert.False(t, c.singletons.isCurrentlyInCreation("x"))
		assert.False(t, c.singletons.contains("x"))
		assert.False(t, c.hasBeenCreated("x"))

		fail = false
		obj, err := c.Get(_ctx, "x")
		require.NoError(t, err)
		assert.Equal(t, "x", obj.(*node).Name)
		assert.Equal(t, 2, attempts)
	})

	t.Run("DependencyEdgesDropped", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "y", &Definition{Type: _nodeType})
		register(t, c, "x", &Definition{Type: _nodeType, Properties: Properties{
			{Name: "next", Value: Ref{Name: "y"}},
			{Name: "bogus", Value: 1},
		}})

		_, err := c.Get(_ctx, "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `no writable property "bogus"`)
		assert.Empty(t, c.DependentsOf("y"))
		assert.True(t, c.singletons.contains("y"), "successfully created dependencies stay cached")
	})

	t.Run("DependentsOfFailedBeanDestroyed", func(t *testing.T) {
		rec := &recorder{}
		c := newTestContainer(t)
		register(t, c, "a", &Definition{
			Factory: func() *closer { return &closer{name: "a", rec: rec} },
			Properties: Properties{
				{Name: "peer", Value: Ref{Name: "b"}},
			},
		})
		register(t, c, "b", &Definition{
			Factory:    func() *peered { return &peered{name: "b", rec: rec} },
			Properties: Properties{{Name: "peer", Value: Ref{Name: "a"}}},
		})

		_, err := c.Get(_ctx, "a")
		require.Error(t, err, "closer has no peer property")
		assert.False(t, c.singletons.contains("b"), "b captured a raw reference to the failed bean")
		assert.Equal(t, []string{"b"}, rec.list())
	})
}

type peered struct {
	name string
	rec  *recorder
	Peer interface{}
}

func (p *peered) Destroy(context.Context) error {
	p.rec.add(p.name)
	return nil
}

func TestDependsOn(t *testing.T) {
	t.Parallel()

	t.Run("CreatesDependencyFirst", func(t *testing.T) {
		rec := &recorder{}
		c := newTestContainer(t)
		var dbCalls int
		register(t, c, "db", &Definition{Factory: func() *node {
			dbCalls++
			rec.add("db")
			return &node{Name: "db"}
		}})
		register(t, c, "repo", &Definition{
			DependsOn: []string{"db", "db"},
			Factory: func() *node {
				rec.add("repo")
				return &node{Name: "repo"}
			},
		})

		_, err := c.Get(_ctx, "repo")
		require.NoError(t, err)
		assert.Equal(t, []string{"db", "repo"}, rec.list())

		db1, err := c.Get(_ctx, "db")
		require.NoError(t, err)
		db2, err := c.Get(_ctx, "db")
		require.NoError(t, err)
		assert.Same(t, db1, db2)
		assert.Equal(t, 1, dbCalls)
		assert.Equal(t, []string{"repo"}, c.DependentsOf("db"))
		assert.Equal(t, []string{"db"}, c.DependenciesOf("repo"))
	})

	t.Run("Cycle", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "a", &Definition{Type: _nodeType, DependsOn: []string{"b"}})
		register(t, c, "b", &Definition{Type: _nodeType, DependsOn: []string{"a"}})

		_, err := c.Get(_ctx, "a")
		var (
			depErr   *DependencyError
			creation *CreationError
		)
		require.True(t, errors.As(err, &depErr), "expected DependencyError, got %v", err)
		require.True(t, errors.As(err, &creation), "expected CreationError, got %v", err)
		assert.True(t, depErr.Cycle)
		assert.ElementsMatch(t, []string{"a", "b"}, []string{depErr.Name, depErr.DependsOn})
	})

	t.Run("Missing", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "a", &Definition{Type: _nodeType, DependsOn: []string{"ghost"}})

		_, err := c.Get(_ctx, "a")
		var (
			depErr   *DependencyError
			creation *CreationError
			missing  *NoSuchDefinitionError
		)
		require.True(t, errors.As(err, &depErr), "expected DependencyError, got %v", err)
		require.True(t, errors.As(err, &creation), "expected CreationError, got %v", err)
		assert.Equal(t, "a", creation.Name)
		assert.Equal(t, "a", depErr.Name)
		assert.Equal(t, "ghost", depErr.DependsOn)
		assert.True(t, errors.As(err, &missing))
		assert.False(t, c.hasBeenCreated("a"))
	})
}

func TestGetErrors(t *testing.T) {
	t.Parallel()

	t.Run("NoSuchDefinition", func(t *testing.T) {
		c := newTestContainer(t)
		_, err := c.Get(_ctx, "ghost")
		var missing *NoSuchDefinitionError
		require.True(t, errors.As(err, &missing), "expected NoSuchDefinitionError, got %v", err)
		assert.False(t, c.hasBeenCreated("ghost"))
	})

	t.Run("Abstract", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "abs", &Definition{Type: _nodeType, Abstract: true})
		_, err := c.Get(_ctx, "abs")
		var defErr *DefinitionError
		require.True(t, errors.As(err, &defErr), "expected DefinitionError, got %v", err)
		assert.Contains(t, err.Error(), "abstract")
	})

	t.Run("NeitherFactoryNorType", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "empty", &Definition{})
		_, err := c.Get(_ctx, "empty")
		var creation *CreationError
		require.True(t, errors.As(err, &creation), "expected CreationError, got %v", err)
	})

	t.Run("UnresolvableTypeName", func(t *testing.T) {
		c := newTestContainer(t, WithTypeResolver(TypeRegistry{}))
		register(t, c, "a", &Definition{TypeName: "example.Missing"})
		_, err := c.Get(_ctx, "a")
		assert.ErrorContains(t, err, `cannot resolve type "example.Missing"`)
	})

	t.Run("AfterShutdown", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "a", &Definition{Type: _nodeType})
		require.NoError(t, c.Shutdown(_ctx))
		_, err := c.Get(_ctx, "a")
		assert.ErrorIs(t, err, ErrContainerShutdown)
	})
}

func TestGetRequiredType(t *testing.T) {
	t.Parallel()

	t.Run("Assignable", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "a", &Definition{Type: _nodeType})
		obj, err := c.GetAs(_ctx, "a", _nodeType)
		require.NoError(t, err)
		assert.IsType(t, &node{}, obj)
	})

	t.Run("Converted", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "port", &Definition{Factory: func() string { return "8080" }})
		obj, err := c.GetAs(_ctx, "port", reflect.TypeOf(0))
		require.NoError(t, err)
		assert.Equal(t, 8080, obj)
	})

	t.Run("NotConvertible", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "a", &Definition{Type: _nodeType})
		_, err := c.GetAs(_ctx, "a", reflect.TypeOf(0))

		var (
			notOfType   *NotOfRequiredTypeError
			unsupported *ConversionNotSupportedError
		)
		require.True(t, errors.As(err, &notOfType), "expected NotOfRequiredTypeError, got %v", err)
		assert.Equal(t, reflect.TypeOf(0), notOfType.Required)
		assert.Equal(t, _nodeType, notOfType.Actual)
		assert.True(t, errors.As(err, &unsupported), "conversion failure must stay distinguishable")
	})

	t.Run("InCreationConverterSuppressed", func(t *testing.T) {
		spy := new(eventtest.Spy)
		c := newTestContainer(t,
			WithLogger(spy),
			WithConverter(TypeConverterFunc(func(context.Context, interface{}, reflect.Type) (interface{}, error) {
				return nil, &CurrentlyInCreationError{Name: "editor"}
			})),
		)
		register(t, c, "port", &Definition{Factory: func() string { return "42" }})

		obj, err := c.GetAs(_ctx, "port", reflect.TypeOf(int64(0)))
		require.NoError(t, err)
		assert.Equal(t, int64(42), obj)
		assert.Contains(t, spy.EventTypes(), "LookupSuppressed")
	})

	t.Run("ConverterFailurePropagates", func(t *testing.T) {
		c := newTestContainer(t,
			WithConverter(TypeConverterFunc(func(context.Context, interface{}, reflect.Type) (interface{}, error) {
				return nil, errors.New("editor broke")
			})),
		)
		register(t, c, "port", &Definition{Factory: func() string { return "42" }})

		_, err := c.GetAs(_ctx, "port", reflect.TypeOf(0))
		var notOfType *NotOfRequiredTypeError
		require.True(t, errors.As(err, &notOfType), "expected NotOfRequiredTypeError, got %v", err)
		assert.ErrorContains(t, err, "editor broke")
	})
}

func TestParentContainer(t *testing.T) {
	t.Parallel()

	parent := newTestContainer(t)
	register(t, parent, "db", &Definition{Type: _nodeType})
	require.NoError(t, parent.RegisterAlias("db", "store"))
	child := newTestContainer(t, WithParent(parent))

	t.Run("Delegates", func(t *testing.T) {
		fromChild, err := child.Get(_ctx, "db")
		require.NoError(t, err)
		fromParent, err := parent.Get(_ctx, "db")
		require.NoError(t, err)
		assert.Same(t, fromParent, fromChild)
		assert.True(t, child.ContainsBean("db"))
		assert.False(t, child.ContainsDefinition("db"))
		assert.Same(t, parent, child.Parent())
	})

	t.Run("ParentAliases", func(t *testing.T) {
		obj, err := child.Get(_ctx, "store")
		require.NoError(t, err)
		db, err := parent.Get(_ctx, "db")
		require.NoError(t, err)
		assert.Same(t, db, obj)
		assert.Equal(t, []string{"store"}, child.GetAliases("db"))
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := child.Get(_ctx, "ghost")
		var missing *NoSuchDefinitionError
		assert.True(t, errors.As(err, &missing))
		assert.False(t, child.ContainsBean("ghost"))
	})
}
