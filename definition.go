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
	"sort"
)

// Names of the two built-in scopes. Neither can be replaced by a
// ScopeProvider.
const (
	SingletonScope = "singleton"
	PrototypeScope = "prototype"
)

// Definition is a raw description of how to produce a named bean. The
// container copies a Definition when it is registered; later changes to the
// caller's value have no effect.
//
// Zero values mean "unset" so that a child definition only overrides what it
// states explicitly: an empty Scope, a nil LazyInit, and a nil DependsOn all
// inherit from the parent definition.
type Definition struct {
	// ParentName names a definition to inherit from.
	ParentName string

	// TypeName is an unresolved type reference, resolved lazily through the
	// container's TypeResolver. Ignored if Type is set.
	TypeName string
	// Type is the resolved type of the bean.
	Type reflect.Type
	// Factory is an optional Go function producing the bean. Constructor
	// arguments are passed as its parameters. A leading context.Context
	// parameter receives the retrieval context.
	Factory interface{}
	// TargetType declares the product type of a Producer bean so type
	// queries can answer without creating the producer.
	TargetType reflect.Type

	// Scope is "singleton", "prototype", or the name of a registered
	// custom scope. Empty inherits, and defaults to singleton.
	Scope string
	// LazyInit excludes a singleton from eager pre-instantiation.
	LazyInit *bool
	// DependsOn lists beans that must be created before this one.
	DependsOn []string

	Args       ConstructorArgs
	Properties Properties

	// Abstract definitions exist only to be inherited from.
	Abstract bool
	// Synthetic definitions are internal scaffolding; their beans skip
	// post-processing hooks.
	Synthetic bool
	// Source is an opaque location used in error messages. It defaults to
	// the caller that registered the definition.
	Source string
}

// Bool returns a pointer to b, for use with Definition.LazyInit.
func Bool(b bool) *bool { return &b }

// Copy returns a deep copy of d.
func (d *Definition) Copy() *Definition {
	if d == nil {
		return nil
	}
	cp := *d
	if d.LazyInit != nil {
		cp.LazyInit = Bool(*d.LazyInit)
	}
	if d.DependsOn != nil {
		cp.DependsOn = append([]string{}, d.DependsOn...)
	}
	cp.Args = d.Args.copy()
	cp.Properties = d.Properties.copy()
	return &cp
}

// overrideFrom applies every attribute that child sets explicitly.
func (d *Definition) overrideFrom(child *Definition) {
	if child.Type != nil {
		d.Type = child.Type
		d.TypeName = child.TypeName
	} else if child.TypeName != "" {
		d.TypeName = child.TypeName
		d.Type = nil
	}
	if child.Factory != nil {
		d.Factory = child.Factory
	}
	if child.TargetType != nil {
		d.TargetType = child.TargetType
	}
	if child.Scope != "" {
		d.Scope = child.Scope
	}
	if child.LazyInit != nil {
		d.LazyInit = Bool(*child.LazyInit)
	}
	if child.DependsOn != nil {
		d.DependsOn = append([]string{}, child.DependsOn...)
	}
	d.Args.addAll(child.Args)
	d.Properties = d.Properties.merge(child.Properties)

	d.ParentName = child.ParentName
	d.Abstract = child.Abstract
	d.Synthetic = child.Synthetic
	d.Source = child.Source
}

// Ref is a value that refers to another bean by name.
type Ref struct {
	Name string
}

// InnerBean is a value holding a nested definition. Inner beans are never
// cached by name and take the scope of their containing bean when that
// scope is not singleton.
type InnerBean struct {
	// Name is optional; a name is generated from the containing bean
	// otherwise.
	Name       string
	Definition *Definition
}

// ConstructorArgs are the constructor argument values of a definition.
type ConstructorArgs struct {
	// Indexed values take the argument position given by their key.
	Indexed map[int]interface{}
	// Generic values fill the remaining positions in order.
	Generic []interface{}
}

// Len reports the number of argument values.
func (a ConstructorArgs) Len() int {
	return len(a.Indexed) + len(a.Generic)
}

// Values lays the arguments out by position.
func (a ConstructorArgs) Values() []interface{} {
	n := a.Len()
	for i := range a.Indexed {
		if i+1 > n {
			n = i + 1
		}
	}
	if n == 0 {
		return nil
	}

	out := make([]interface{}, n)
	taken := make([]bool, n)
	for i, v := range a.Indexed {
		out[i] = v
		taken[i] = true
	}
	next := 0
	for _, v := range a.Generic {
		for next < n && taken[next] {
			next++
		}
		if next == n {
			break
		}
		out[next] = v
		taken[next] = true
	}
	return out
}

func (a ConstructorArgs) copy() ConstructorArgs {
	var cp ConstructorArgs
	if a.Indexed != nil {
		cp.Indexed = make(map[int]interface{}, len(a.Indexed))
		for i, v := range a.Indexed {
			cp.Indexed[i] = copyValue(v)
		}
	}
	for _, v := range a.Generic {
		cp.Generic = append(cp.Generic, copyValue(v))
	}
	return cp
}

func (a *ConstructorArgs) addAll(other ConstructorArgs) {
	if len(other.Indexed) > 0 && a.Indexed == nil {
		a.Indexed = make(map[int]interface{}, len(other.Indexed))
	}
	idx := make([]int, 0, len(other.Indexed))
	for i := range other.Indexed {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	for _, i := range idx {
		a.Indexed[i] = copyValue(other.Indexed[i])
	}
	for _, v := range other.Generic {
		a.Generic = append(a.Generic, copyValue(v))
	}
}

// Property is a named property value.
type Property struct {
	Name  string
	Value interface{}
}

// Properties is an ordered list of property values, unique by name.
type Properties []Property

// Get returns the value of the named property.
func (ps Properties) Get(name string) (interface{}, bool) {
	for _, p := range ps {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// With returns ps with the named property set, replacing an existing value.
func (ps Properties) With(name string, value interface{}) Properties {
	return ps.merge(Properties{{Name: name, Value: value}})
}

func (ps Properties) merge(other Properties) Properties {
	out := ps.copy()
	for _, p := range other {
		replaced := false
		for i := range out {
			if out[i].Name == p.Name {
				out[i].Value = copyValue(p.Value)
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, Property{Name: p.Name, Value: copyValue(p.Value)})
		}
	}
	return out
}

func (ps Properties) copy() Properties {
	if ps == nil {
		return nil
	}
	cp := make(Properties, len(ps))
	for i, p := range ps {
		cp[i] = Property{Name: p.Name, Value: copyValue(p.Value)}
	}
	return cp
}

// copyValue deep-copies the value containers the container understands.
// Other values are shared.
func copyValue(v interface{}) interface{} {
	switch v := v.(type) {
	case InnerBean:
		return InnerBean{Name: v.Name, Definition: v.Definition.Copy()}
	case *InnerBean:
		return InnerBean{Name: v.Name, Definition: v.Definition.Copy()}
	case []interface{}:
		cp := make([]interface{}, len(v))
		for i, e := range v {
			cp[i] = copyValue(e)
		}
		return cp
	case map[string]interface{}:
		cp := make(map[string]interface{}, len(v))
		for k, e := range v {
			cp[k] = copyValue(e)
		}
		return cp
	default:
		return v
	}
}

// ScopeKind is the closed set of scope behaviors.
type ScopeKind int

const (
	// ScopeSingleton beans are created once per container.
	ScopeSingleton ScopeKind = iota
	// ScopePrototype beans are created on every retrieval.
	ScopePrototype
	// ScopeCustom beans are managed by a registered ScopeProvider.
	ScopeCustom
)

// String returns the human-readable name of the scope kind.
func (k ScopeKind) String() string {
	switch k {
	case ScopeSingleton:
		return SingletonScope
	case ScopePrototype:
		return PrototypeScope
	case ScopeCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Scope is the resolved scope of a merged definition.
type Scope struct {
	Kind ScopeKind
	// Name is the scope name; for custom scopes it selects the provider.
	Name string
}

func scopeOf(name string) Scope {
	switch name {
	case "", SingletonScope:
		return Scope{Kind: ScopeSingleton, Name: SingletonScope}
	case PrototypeScope:
		return Scope{Kind: ScopePrototype, Name: PrototypeScope}
	default:
		return Scope{Kind: ScopeCustom, Name: name}
	}
}

func (s Scope) String() string {
	return s.Name
}
