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
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ctxKey struct{}

type settable struct {
	Port     int
	host     string
	setCalls int
}

func (s *settable) SetHost(host string) error {
	if host == "" {
		return errors.New("host must not be empty")
	}
	s.host = host
	s.setCalls++
	return nil
}

func TestReflectConstructor(t *testing.T) {
	t.Parallel()

	t.Run("FactoryWithContext", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "a", &Definition{
			Factory: func(ctx context.Context, name string) *node {
				v, _ := ctx.Value(ctxKey{}).(string)
				return &node{Name: name + "/" + v}
			},
			Args: ConstructorArgs{Generic: []interface{}{"a"}},
		})

		obj, err := c.Get(context.WithValue(_ctx, ctxKey{}, "ctx"), "a")
		require.NoError(t, err)
		assert.Equal(t, "a/ctx", obj.(*node).Name)
	})

	t.Run("IndexedArgs", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "a", &Definition{
			Factory: func(name string, size int, next *node) *node {
				return &node{Name: name, Size: size, Next: next}
			},
			Args: ConstructorArgs{
				Indexed: map[int]interface{}{1: "3", 2: nil},
				Generic: []interface{}{"indexed"},
			},
		})

		obj, err := c.Get(_ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, &node{Name: "indexed", Size: 3}, obj)
	})

	t.Run("ArgumentCountMismatch", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "a", &Definition{Factory: func(string, int) *node { return &node{} }})
		_, err := c.Get(_ctx, "a")
		assert.ErrorContains(t, err, "expects 2 arguments, got 0")
	})

	t.Run("Variadic", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "a", &Definition{Factory: func(...string) *node { return &node{} }})
		_, err := c.Get(_ctx, "a")
		assert.ErrorContains(t, err, "variadic factory")
	})

	t.Run("BadResults", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "none", &Definition{Factory: func() {}})
		register(t, c, "errOnly", &Definition{Factory: func() error { return nil }})
		register(t, c, "three", &Definition{Factory: func() (*node, *node, error) { return nil, nil, nil }})

		for _, name := range []string{"none", "errOnly", "three"} {
			_, err := c.Get(_ctx, name)
			assert.ErrorContains(t, err, "must return a bean", name)
		}
	})

	t.Run("TypeWithArgs", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "a", &Definition{Type: _nodeType, Args: ConstructorArgs{Generic: []interface{}{1}}})
		_, err := c.Get(_ctx, "a")
		assert.ErrorContains(t, err, "has no factory to receive 1 constructor arguments")
	})

	t.Run("NonPointerType", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "n", &Definition{Type: reflect.TypeOf(0)})
		obj, err := c.Get(_ctx, "n")
		require.NoError(t, err)
		assert.Equal(t, 0, obj)
	})

	t.Run("SetterAndField", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "s", &Definition{
			Type: reflect.TypeOf(&settable{}),
			Properties: Properties{
				{Name: "port", Value: "8080"},
				{Name: "host", Value: "localhost"},
			},
		})

		obj, err := c.Get(_ctx, "s")
		require.NoError(t, err)
		s := obj.(*settable)
		assert.Equal(t, 8080, s.Port)
		assert.Equal(t, "localhost", s.host)
		assert.Equal(t, 1, s.setCalls)
	})

	t.Run("SetterFailure", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "s", &Definition{
			Type:       reflect.TypeOf(&settable{}),
			Properties: Properties{{Name: "host", Value: ""}},
		})
		_, err := c.Get(_ctx, "s")
		assert.ErrorContains(t, err, `cannot set property "host": host must not be empty`)
	})

	t.Run("PropertiesOnNonStruct", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "n", &Definition{
			Factory:    func() int { return 1 },
			Properties: Properties{{Name: "x", Value: 1}},
		})
		_, err := c.Get(_ctx, "n")
		assert.ErrorContains(t, err, "not a pointer to a struct")
	})
}

func TestResolveValue(t *testing.T) {
	t.Parallel()

	t.Run("Collections", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "x", &Definition{Type: _nodeType, Properties: Properties{{Name: "name", Value: "x"}}})
		register(t, c, "y", &Definition{Type: _nodeType, Properties: Properties{{Name: "name", Value: "y"}}})
		register(t, c, "list", &Definition{Type: _nodeType, Properties: Properties{
			{Name: "items", Value: []interface{}{
				Ref{Name: "x"},
				&Ref{Name: "y"},
				"literal",
				map[string]interface{}{"nested": Ref{Name: "x"}},
			}},
		}})

		obj, err := c.Get(_ctx, "list")
		require.NoError(t, err)
		items := obj.(*node).Items
		require.Len(t, items, 4)

		x, err := c.Get(_ctx, "x")
		require.NoError(t, err)
		y, err := c.Get(_ctx, "y")
		require.NoError(t, err)
		assert.Same(t, x, items[0])
		assert.Same(t, y, items[1])
		assert.Equal(t, "literal", items[2])
		assert.Same(t, x, items[3].(map[string]interface{})["nested"])
		assert.Equal(t, []string{"x", "y"}, c.DependenciesOf("list"))
	})

	t.Run("UnknownReference", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "a", &Definition{Type: _nodeType, Properties: Properties{
			{Name: "next", Value: Ref{Name: "ghost"}},
		}})

		_, err := c.Get(_ctx, "a")
		var missing *NoSuchDefinitionError
		require.True(t, errors.As(err, &missing), "expected NoSuchDefinitionError, got %v", err)
		assert.Contains(t, err.Error(), `cannot resolve reference to bean "ghost"`)
	})

	t.Run("InnerBean", func(t *testing.T) {
		rec := &recorder{}
		c := newTestContainer(t)
		register(t, c, "outer", &Definition{Type: _nodeType, Properties: Properties{
			{Name: "next", Value: InnerBean{Definition: &Definition{
				Type:       _nodeType,
				Properties: Properties{{Name: "name", Value: "inner"}},
			}}},
			{Name: "items", Value: []interface{}{
				&InnerBean{Name: "closer", Definition: &Definition{
					Factory: func() *closer { return &closer{name: "inner closer", rec: rec} },
				}},
			}},
		}})

		obj, err := c.Get(_ctx, "outer")
		require.NoError(t, err)
		outer := obj.(*node)
		require.NotNil(t, outer.Next)
		assert.Equal(t, "inner", outer.Next.Name)
		require.Len(t, outer.Items, 1)
		assert.IsType(t, &closer{}, outer.Items[0])

		assert.Equal(t, []string{"outer"}, c.SingletonNames(), "inner beans are never cached by name")
		assert.Contains(t, c.DependentsOf("closer"), "outer")

		require.NoError(t, c.Shutdown(_ctx))
		assert.Equal(t, []string{"inner closer"}, rec.list())
	})

	t.Run("InnerBeanWithoutDefinition", func(t *testing.T) {
		c := newTestContainer(t)
		register(t, c, "outer", &Definition{Type: _nodeType, Properties: Properties{
			{Name: "next", Value: InnerBean{Name: "empty"}},
		}})
		_, err := c.Get(_ctx, "outer")
		var defErr *DefinitionError
		assert.True(t, errors.As(err, &defErr), "expected DefinitionError, got %v", err)
	})

	t.Run("Passthrough", func(t *testing.T) {
		c := newTestContainer(t)
		v, err := c.ResolveValue(_ctx, "owner", nil, 42)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	})
}
