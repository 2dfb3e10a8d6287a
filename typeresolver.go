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
	"reflect"

	"github.com/pkg/errors"
)

// TypeResolver resolves the TypeName of a definition to a type.
type TypeResolver interface {
	ResolveType(name string) (reflect.Type, error)
}

// TypeRegistry is a TypeResolver backed by a fixed set of names.
type TypeRegistry map[string]reflect.Type

var _ TypeResolver = TypeRegistry(nil)

// ResolveType implements TypeResolver.
func (r TypeRegistry) ResolveType(name string) (reflect.Type, error) {
	t, ok := r[name]
	if !ok {
		return nil, errors.Errorf("unknown type name %q", name)
	}
	return t, nil
}

// Register adds the type of sample under name. Pass a nil pointer to an
// interface to register the interface type itself.
func (r TypeRegistry) Register(name string, sample interface{}) {
	t := reflect.TypeOf(sample)
	if t != nil && t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Interface {
		t = t.Elem()
	}
	r[name] = t
}
