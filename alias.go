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
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/beans/beanevent"
)

// DereferencePrefix marks a request for a Producer itself rather than the
// object it produces.
const DereferencePrefix = "&"

func isDereference(name string) bool {
	return strings.HasPrefix(name, DereferencePrefix)
}

// stripDereference removes every leading dereference marker.
func stripDereference(name string) string {
	for isDereference(name) {
		name = name[len(DereferencePrefix):]
	}
	return name
}

// transformedName returns the canonical bean name for name: dereference
// markers are stripped and aliases are resolved.
func (c *Container) transformedName(name string) string {
	return c.aliases.canonical(stripDereference(name))
}

// originalName returns the canonical name of name, keeping a dereference
// marker if name had one.
func (c *Container) originalName(name string) string {
	beanName := c.transformedName(name)
	if isDereference(name) {
		return DereferencePrefix + beanName
	}
	return beanName
}

// RegisterAlias registers alias as another name for name. Registering an
// alias equal to name removes the alias.
func (c *Container) RegisterAlias(name, alias string) error {
	if name == "" || alias == "" {
		return errors.New("bean name and alias must not be empty")
	}

	m := c.aliases
	m.mu.Lock()
	if alias == name {
		delete(m.aliases, alias)
		m.mu.Unlock()
		return nil
	}
	if existing, ok := m.aliases[alias]; ok {
		if existing == name {
			m.mu.Unlock()
			return nil
		}
		if !c.cfg.AllowAliasOverriding {
			m.mu.Unlock()
			return errors.Errorf("cannot register alias %q for bean %q: it is already registered for bean %q", alias, name, existing)
		}
	}
	if m.resolvesToLocked(name, alias) {
		m.mu.Unlock()
		return errors.Errorf("cannot register alias %q for bean %q: circular reference, %q is a direct or indirect alias for %q already", alias, name, name, alias)
	}
	m.aliases[alias] = name
	m.mu.Unlock()

	c.logger.LogEvent(&beanevent.AliasRegistered{Name: name, Alias: alias})
	return nil
}

// RemoveAlias removes a registered alias.
func (c *Container) RemoveAlias(alias string) error {
	if !c.removeAlias(alias) {
		return errors.Errorf("no alias %q registered", alias)
	}
	return nil
}

func (c *Container) removeAlias(alias string) bool {
	c.aliases.mu.Lock()
	defer c.aliases.mu.Unlock()
	if _, ok := c.aliases.aliases[alias]; !ok {
		return false
	}
	delete(c.aliases.aliases, alias)
	return true
}

// IsAlias reports whether name is a registered alias.
func (c *Container) IsAlias(name string) bool {
	return c.aliases.isAlias(name)
}

// GetAliases returns the other names of the bean name refers to. If name is
// itself an alias the canonical name is included. Aliases from the parent
// container are included when the bean is not defined locally.
func (c *Container) GetAliases(name string) []string {
	beanName := c.transformedName(name)
	prefix := ""
	if isDereference(name) {
		prefix = DereferencePrefix
	}

	var aliases []string
	if beanName != stripDereference(name) {
		aliases = append(aliases, prefix+beanName)
	}
	for _, alias := range c.aliases.aliasesOf(beanName) {
		if prefix+alias != name {
			aliases = append(aliases, prefix+alias)
		}
	}

	if c.parent != nil && !c.singletons.contains(beanName) && !c.ContainsDefinition(beanName) {
		aliases = append(aliases, c.parent.GetAliases(prefix+beanName)...)
	}
	return aliases
}

// aliasMap maps alias names to the names they stand for. Chains are allowed
// and resolved transitively.
type aliasMap struct {
	mu      sync.RWMutex
	aliases map[string]string
}

func newAliasMap() *aliasMap {
	return &aliasMap{aliases: make(map[string]string)}
}

// canonical chases aliases until it reaches a name that is not an alias.
func (m *aliasMap) canonical(name string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := 0; i <= len(m.aliases); i++ {
		next, ok := m.aliases[name]
		if !ok {
			return name
		}
		name = next
	}
	return name
}

// resolvesToLocked reports whether alias already resolves, directly or through a
// chain, to name.
func (m *aliasMap) resolvesToLocked(alias, name string) bool {
	for i := 0; i <= len(m.aliases); i++ {
		next, ok := m.aliases[alias]
		if !ok {
			return false
		}
		if next == name {
			return true
		}
		alias = next
	}
	return false
}

// aliasesOf returns every alias that leads to name, sorted.
func (m *aliasMap) aliasesOf(name string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	m.collectLocked(name, &out)
	sort.Strings(out)
	return out
}

func (m *aliasMap) collectLocked(name string, out *[]string) {
	for alias, target := range m.aliases {
		if target == name {
			*out = append(*out, alias)
			m.collectLocked(alias, out)
		}
	}
}

func (m *aliasMap) isAlias(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.aliases[name]
	return ok
}
