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
	"sync/atomic"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
	"go.uber.org/beans/internal/beanreflect"
)

// ConstructRequest describes one bean to instantiate.
type ConstructRequest struct {
	Name       string
	Definition *MergedDefinition
	// Type is the resolved bean type, or nil if the definition only has a
	// factory.
	Type reflect.Type
	// Args are explicit constructor arguments. When non-empty they replace
	// the definition's arguments.
	Args []interface{}

	Resolver  ValueResolver
	Converter TypeConverter
}

// Constructor instantiates beans and populates their properties.
type Constructor interface {
	Instantiate(ctx context.Context, req *ConstructRequest) (interface{}, error)
	Populate(ctx context.Context, req *ConstructRequest, obj interface{}) error
}

// ValueResolver turns definition values (references, inner beans,
// collections of them) into objects.
type ValueResolver interface {
	ResolveValue(ctx context.Context, owner string, def *MergedDefinition, value interface{}) (interface{}, error)
}

var _ ValueResolver = (*Container)(nil)

// ReflectConstructor is the default Constructor.
//
// A definition with a Factory is instantiated by calling it with the
// constructor arguments, after an optional leading context.Context. The
// factory returns the bean, optionally followed by an error. A definition
// without a Factory must have a Type; a pointer type yields a pointer to a
// new zero value.
//
// Properties are set through a SetX method taking one argument, or an
// exported field named X, on a pointer to a struct.
type ReflectConstructor struct{}

var _ Constructor = ReflectConstructor{}

// Instantiate implements Constructor.
func (ReflectConstructor) Instantiate(ctx context.Context, req *ConstructRequest) (interface{}, error) {
	raw := req.Args
	if len(raw) == 0 {
		raw = req.Definition.Args.Values()
	}
	args := make([]interface{}, len(raw))
	for i, v := range raw {
		resolved, err := req.Resolver.ResolveValue(ctx, req.Name, req.Definition, v)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot resolve constructor argument %d", i)
		}
		args[i] = resolved
	}

	if factory := req.Definition.Factory; factory != nil {
		return callFactory(ctx, factory, args, req.Converter)
	}

	t := req.Type
	if t == nil {
		return nil, errors.New("definition has neither a factory nor a type")
	}
	if len(args) > 0 {
		return nil, errors.Errorf("type %v has no factory to receive %d constructor arguments", t, len(args))
	}
	if t.Kind() == reflect.Ptr {
		return reflect.New(t.Elem()).Interface(), nil
	}
	return reflect.Zero(t).Interface(), nil
}

func callFactory(ctx context.Context, factory interface{}, args []interface{}, conv TypeConverter) (interface{}, error) {
	fv := reflect.ValueOf(factory)
	ft := fv.Type()
	if err := checkFactoryResults(ft); err != nil {
		return nil, err
	}

	offset := 0
	if beanreflect.TakesContext(ft) {
		offset = 1
	}
	if ft.IsVariadic() {
		return nil, errors.Errorf("variadic factory %v is not supported", beanreflect.FuncName(factory))
	}
	if want := ft.NumIn() - offset; want != len(args) {
		return nil, errors.Errorf("factory %v expects %d arguments, got %d", beanreflect.FuncName(factory), want, len(args))
	}

	in := make([]reflect.Value, ft.NumIn())
	if offset == 1 {
		in[0] = reflect.ValueOf(ctx)
	}
	for i, arg := range args {
		v, err := valueFor(ctx, arg, ft.In(i+offset), conv)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot use constructor argument %d", i)
		}
		in[i+offset] = v
	}

	out := fv.Call(in)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

func checkFactoryResults(ft reflect.Type) error {
	switch {
	case ft.NumOut() == 1 && !beanreflect.IsErr(ft.Out(0)):
		return nil
	case ft.NumOut() == 2 && !beanreflect.IsErr(ft.Out(0)) && beanreflect.IsErr(ft.Out(1)):
		return nil
	}
	return errors.Errorf("factory of type %v must return a bean, optionally followed by an error", ft)
}

// valueFor converts arg to a value assignable to t.
func valueFor(ctx context.Context, arg interface{}, t reflect.Type, conv TypeConverter) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(t), nil
	}
	if reflect.TypeOf(arg).AssignableTo(t) {
		return reflect.ValueOf(arg), nil
	}
	if conv == nil {
		return reflect.Value{}, &ConversionNotSupportedError{From: reflect.TypeOf(arg), To: t}
	}
	out, err := conv.Convert(ctx, arg, t)
	if err != nil {
		return reflect.Value{}, err
	}
	if out == nil {
		return reflect.Zero(t), nil
	}
	return reflect.ValueOf(out), nil
}

// Populate implements Constructor.
func (ReflectConstructor) Populate(ctx context.Context, req *ConstructRequest, obj interface{}) error {
	props := req.Definition.Properties
	if len(props) == 0 {
		return nil
	}

	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return errors.Errorf("cannot set properties on %T: not a pointer to a struct", obj)
	}

	for _, p := range props {
		value, err := req.Resolver.ResolveValue(ctx, req.Name, req.Definition, p.Value)
		if err != nil {
			return errors.Wrapf(err, "cannot resolve property %q", p.Name)
		}
		if err := setProperty(ctx, v, p.Name, value, req.Converter); err != nil {
			return errors.Wrapf(err, "cannot set property %q", p.Name)
		}
	}
	return nil
}

func setProperty(ctx context.Context, v reflect.Value, name string, value interface{}, conv TypeConverter) error {
	exported := upperFirst(name)

	if m := v.MethodByName("Set" + exported); m.IsValid() && m.Type().NumIn() == 1 {
		arg, err := valueFor(ctx, value, m.Type().In(0), conv)
		if err != nil {
			return err
		}
		out := m.Call([]reflect.Value{arg})
		if len(out) == 1 && beanreflect.IsErr(out[0].Type()) && !out[0].IsNil() {
			return out[0].Interface().(error)
		}
		return nil
	}

	f := v.Elem().FieldByName(exported)
	if !f.IsValid() || !f.CanSet() {
		return errors.Errorf("%v has no writable property %q", v.Type(), name)
	}
	fv, err := valueFor(ctx, value, f.Type(), conv)
	if err != nil {
		return err
	}
	f.Set(fv)
	return nil
}

func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

func isFunc(fn interface{}) bool {
	return reflect.TypeOf(fn).Kind() == reflect.Func
}

// ResolveValue turns a definition value into an object. Ref values are
// retrieved with Get and InnerBean values are created on the spot; both are
// recorded as dependencies of owner. Slices and maps are resolved element
// by element. Other values are returned as they are.
func (c *Container) ResolveValue(ctx context.Context, owner string, def *MergedDefinition, value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case Ref:
		return c.resolveRef(ctx, owner, v.Name)
	case *Ref:
		return c.resolveRef(ctx, owner, v.Name)
	case InnerBean:
		return c.resolveInner(ctx, owner, def, v)
	case *InnerBean:
		return c.resolveInner(ctx, owner, def, *v)
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, e := range v {
			r, err := c.ResolveValue(ctx, owner, def, e)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, e := range v {
			r, err := c.ResolveValue(ctx, owner, def, e)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	default:
		return value, nil
	}
}

func (c *Container) resolveRef(ctx context.Context, owner, name string) (interface{}, error) {
	obj, err := c.Get(ctx, name)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot resolve reference to bean %q", name)
	}
	c.singletons.registerDependent(c.transformedName(name), owner)
	return obj, nil
}

func (c *Container) resolveInner(ctx context.Context, owner string, containing *MergedDefinition, inner InnerBean) (interface{}, error) {
	name := inner.Name
	if name == "" {
		name = fmt.Sprintf("%s#inner#%d", owner, atomic.AddUint64(&c.innerIDs, 1))
	}
	if inner.Definition == nil {
		return nil, &DefinitionError{Name: name, Reason: "inner bean has no definition"}
	}

	mbd, err := c.mergedInnerDefinition(name, inner.Definition, containing)
	if err != nil {
		return nil, err
	}
	if mbd.Abstract {
		return nil, &DefinitionError{Name: name, Source: mbd.Source, Reason: "inner bean definition is abstract"}
	}
	if err := c.createDependsOn(ctx, name, mbd); err != nil {
		return nil, err
	}

	obj, err := c.createBean(ctx, name, mbd, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot create inner bean %q", name)
	}
	c.singletons.registerDependent(name, owner)
	return c.objectForInstance(ctx, obj, name, name, mbd, false)
}
