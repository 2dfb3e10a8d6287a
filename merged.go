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
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/beans/internal/beanreflect"
)

// MergedDefinition is the effective definition of a bean: its raw
// definition with the whole parent chain applied. A MergedDefinition is
// shared by all callers and must be treated as read-only.
type MergedDefinition struct {
	Name       string
	ParentName string
	TypeName   string
	Factory    interface{}
	TargetType reflect.Type
	Scope      Scope
	LazyInit   bool
	DependsOn  []string
	Args       ConstructorArgs
	Properties Properties
	Abstract   bool
	Synthetic  bool
	Source     string
	// Ancestry lists the parent definitions merged into this one, nearest
	// first.
	Ancestry []string

	// raw is the effective definition before scope defaulting; children
	// merge on top of a copy of it.
	raw *Definition

	typeMu sync.Mutex
	typ    reflect.Type

	// stale is guarded by the container's merged-definition lock.
	stale bool
}

func newMergedDefinition(name string, def *Definition, ancestry []string) *MergedDefinition {
	return &MergedDefinition{
		Name:       name,
		ParentName: def.ParentName,
		TypeName:   def.TypeName,
		Factory:    def.Factory,
		TargetType: def.TargetType,
		Scope:      scopeOf(def.Scope),
		LazyInit:   def.LazyInit != nil && *def.LazyInit,
		DependsOn:  def.DependsOn,
		Args:       def.Args,
		Properties: def.Properties,
		Abstract:   def.Abstract,
		Synthetic:  def.Synthetic,
		Source:     def.Source,
		Ancestry:   ancestry,
		raw:        def,
		typ:        def.Type,
	}
}

// Type returns the bean type if it is known or has already been resolved.
func (m *MergedDefinition) Type() reflect.Type {
	m.typeMu.Lock()
	defer m.typeMu.Unlock()
	return m.typ
}

// resolveType resolves TypeName through r and caches the result.
func (m *MergedDefinition) resolveType(r TypeResolver) (reflect.Type, error) {
	m.typeMu.Lock()
	defer m.typeMu.Unlock()

	if m.typ != nil || m.TypeName == "" {
		return m.typ, nil
	}
	if r == nil {
		return nil, errors.Errorf("cannot resolve type %q: no type resolver configured", m.TypeName)
	}
	t, err := r.ResolveType(m.TypeName)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot resolve type %q", m.TypeName)
	}
	m.typ = t
	return t, nil
}

// predictType reports the type of the bean the definition produces without
// creating it. It returns nil when the type cannot be determined.
func (m *MergedDefinition) predictType(r TypeResolver) reflect.Type {
	if m.Factory != nil {
		if t := beanreflect.ReturnType(m.Factory); t != nil && !isEmptyInterface(t) {
			return t
		}
	}
	t, err := m.resolveType(r)
	if err != nil {
		return nil
	}
	return t
}

func isEmptyInterface(t reflect.Type) bool {
	return t.Kind() == reflect.Interface && t.NumMethod() == 0
}

// mergedCache holds effective definitions by name. A single lock guards the
// whole map and every merge runs inside it, so concurrent first callers for
// a name observe the same instance.
type mergedCache struct {
	mu      sync.Mutex
	entries map[string]*MergedDefinition
}

func newMergedCache() *mergedCache {
	return &mergedCache{entries: make(map[string]*MergedDefinition)}
}

// markStale forces the next lookup of name to merge again.
func (mc *mergedCache) markStale(name string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if m := mc.entries[name]; m != nil {
		m.stale = true
	}
}

// invalidate drops name and every entry derived from it, returning the
// names dropped.
func (mc *mergedCache) invalidate(name string) []string {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	dropped := []string{name}
	delete(mc.entries, name)
	for n, m := range mc.entries {
		for _, a := range m.Ancestry {
			if a == name {
				delete(mc.entries, n)
				dropped = append(dropped, n)
				break
			}
		}
	}
	return dropped
}

// retain drops every entry for which keep returns false.
func (mc *mergedCache) retain(keep func(name string) bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for n := range mc.entries {
		if !keep(n) {
			delete(mc.entries, n)
		}
	}
}

// MergedDefinition returns the effective definition for name, delegating to
// the parent container when name is not defined locally.
func (c *Container) MergedDefinition(name string) (*MergedDefinition, error) {
	beanName := c.transformedName(name)
	if !c.ContainsDefinition(beanName) && c.parent != nil {
		return c.parent.MergedDefinition(beanName)
	}
	return c.localMergedDefinition(beanName)
}

func (c *Container) localMergedDefinition(name string) (*MergedDefinition, error) {
	c.merged.mu.Lock()
	defer c.merged.mu.Unlock()
	return c.mergeLocked(name, make(map[string]bool))
}

// mergedInnerDefinition merges a nested definition against its containing
// bean. The result is never cached.
func (c *Container) mergedInnerDefinition(name string, def *Definition, containing *MergedDefinition) (*MergedDefinition, error) {
	c.merged.mu.Lock()
	defer c.merged.mu.Unlock()
	return c.mergeDefinition(name, def, containing, make(map[string]bool))
}

// mergeLocked must be called with c.merged.mu held.
func (c *Container) mergeLocked(name string, visiting map[string]bool) (*MergedDefinition, error) {
	if m := c.merged.entries[name]; m != nil && !m.stale {
		return m, nil
	}
	def, err := c.store.Definition(name)
	if err != nil {
		return nil, err
	}
	return c.mergeDefinition(name, def, nil, visiting)
}

func (c *Container) mergeDefinition(
	name string,
	def *Definition,
	containing *MergedDefinition,
	visiting map[string]bool,
) (*MergedDefinition, error) {
	var (
		base     *Definition
		ancestry []string
	)

	if def.ParentName == "" {
		base = def.Copy()
	} else {
		parent, err := c.mergeParent(name, def, visiting)
		if err != nil {
			return nil, err
		}
		base = parent.raw.Copy()
		base.overrideFrom(def)
		ancestry = append([]string{parent.Name}, parent.Ancestry...)
	}

	m := newMergedDefinition(name, base, ancestry)

	// A bean contained in a non-singleton bean cannot itself be a singleton.
	if containing != nil && containing.Scope.Kind != ScopeSingleton && m.Scope.Kind == ScopeSingleton {
		m.Scope = containing.Scope
	}

	if containing == nil && c.cfg.CacheMetadata {
		c.merged.entries[name] = m
	}
	return m, nil
}

func (c *Container) mergeParent(name string, def *Definition, visiting map[string]bool) (*MergedDefinition, error) {
	parentName := c.transformedName(def.ParentName)

	if parentName == name {
		if c.parent == nil {
			return nil, &DefinitionError{
				Name:   name,
				Source: def.Source,
				Reason: "parent name is equal to bean name and there is no parent container to resolve it",
			}
		}
		parent, err := c.parent.MergedDefinition(parentName)
		if err != nil {
			return nil, &DefinitionError{Name: name, Source: def.Source, Reason: "could not resolve parent definition", Err: err}
		}
		return parent, nil
	}

	if visiting[parentName] {
		return nil, &DefinitionError{
			Name:   name,
			Source: def.Source,
			Reason: "circular parent definition chain through " + parentName,
		}
	}

	var (
		parent *MergedDefinition
		err    error
	)
	switch {
	case c.store.ContainsDefinition(parentName):
		visiting[name] = true
		parent, err = c.mergeLocked(parentName, visiting)
	case c.parent != nil:
		parent, err = c.parent.MergedDefinition(parentName)
	default:
		err = &NoSuchDefinitionError{Name: parentName}
	}
	if err != nil {
		var defErr *DefinitionError
		if errors.As(err, &defErr) {
			return nil, err
		}
		return nil, &DefinitionError{Name: name, Source: def.Source, Reason: "could not resolve parent definition", Err: err}
	}
	return parent, nil
}

// ClearMetadataCache drops the effective definitions of every bean that has
// not been created yet, so that they are merged again on next use.
func (c *Container) ClearMetadataCache() {
	c.merged.retain(c.hasBeenCreated)
}
