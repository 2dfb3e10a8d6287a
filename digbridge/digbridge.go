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

// Package digbridge connects a beans.Container with a dig container, so
// that applications built with dig or fx can consume beans and beans can be
// built from dig-provided values.
package digbridge

import (
	"context"
	"reflect"

	"github.com/pkg/errors"
	"go.uber.org/beans"
	"go.uber.org/dig"
)

var _errType = reflect.TypeOf((*error)(nil)).Elem()

// Export provides the bean named name to dc as a value of type typ. The
// bean is retrieved from c with GetAs when dc first needs it. Use
// dig.Name to export several beans of the same type.
func Export(ctx context.Context, dc *dig.Container, c *beans.Container, name string, typ reflect.Type, opts ...dig.ProvideOption) error {
	if typ == nil {
		return errors.Errorf("cannot export bean %q: type is nil", name)
	}

	ft := reflect.FuncOf(nil, []reflect.Type{typ, _errType}, false)
	fn := reflect.MakeFunc(ft, func([]reflect.Value) []reflect.Value {
		obj, err := c.GetAs(ctx, name, typ)
		if err != nil {
			err = errors.Wrapf(err, "cannot export bean %q", name)
			return []reflect.Value{reflect.Zero(typ), reflect.ValueOf(&err).Elem()}
		}
		v := reflect.Zero(typ)
		if obj != nil {
			v = reflect.ValueOf(obj)
		}
		return []reflect.Value{v, reflect.Zero(_errType)}
	})
	return dc.Provide(fn.Interface(), opts...)
}

// ExportAs is Export with the type given as a type parameter.
func ExportAs[T any](ctx context.Context, dc *dig.Container, c *beans.Container, name string, opts ...dig.ProvideOption) error {
	return Export(ctx, dc, c, name, reflect.TypeOf((*T)(nil)).Elem(), opts...)
}

// Import registers a singleton definition named name in c whose bean is the
// value of type typ in dc.
func Import(dc *dig.Container, c *beans.Container, name string, typ reflect.Type) error {
	if typ == nil {
		return errors.Errorf("cannot import bean %q: type is nil", name)
	}

	factoryType := reflect.FuncOf(nil, []reflect.Type{typ, _errType}, false)
	factory := reflect.MakeFunc(factoryType, func([]reflect.Value) []reflect.Value {
		out := reflect.New(typ).Elem()
		invokeType := reflect.FuncOf([]reflect.Type{typ}, nil, false)
		invoke := reflect.MakeFunc(invokeType, func(args []reflect.Value) []reflect.Value {
			out.Set(args[0])
			return nil
		})
		if err := dc.Invoke(invoke.Interface()); err != nil {
			err = errors.Wrapf(err, "cannot import %v from dig", typ)
			return []reflect.Value{reflect.Zero(typ), reflect.ValueOf(&err).Elem()}
		}
		return []reflect.Value{out, reflect.Zero(_errType)}
	})

	return c.RegisterDefinition(name, &beans.Definition{
		Factory: factory.Interface(),
		Scope:   beans.SingletonScope,
	})
}
