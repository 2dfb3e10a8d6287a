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

import "sync"

// DefinitionStore holds raw bean definitions by name. The container only
// reads from it; a store that also implements DefinitionRegistry can be
// mutated through the container.
type DefinitionStore interface {
	ContainsDefinition(name string) bool
	// Definition returns the raw definition registered under name, or a
	// *NoSuchDefinitionError.
	Definition(name string) (*Definition, error)
	DefinitionNames() []string
}

// DefinitionRegistry is a DefinitionStore that accepts new definitions.
type DefinitionRegistry interface {
	DefinitionStore

	RegisterDefinition(name string, def *Definition)
	RemoveDefinition(name string) bool
}

// mapStore is the default in-memory DefinitionRegistry. Names are kept in
// registration order.
type mapStore struct {
	mu    sync.RWMutex
	defs  map[string]*Definition
	names []string
}

var _ DefinitionRegistry = (*mapStore)(nil)

// NewDefinitionStore returns an empty in-memory DefinitionRegistry.
func NewDefinitionStore() DefinitionRegistry {
	return newMapStore()
}

func newMapStore() *mapStore {
	return &mapStore{defs: make(map[string]*Definition)}
}

func (s *mapStore) ContainsDefinition(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.defs[name]
	return ok
}

func (s *mapStore) Definition(name string) (*Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.defs[name]
	if !ok {
		return nil, &NoSuchDefinitionError{Name: name}
	}
	return def, nil
}

func (s *mapStore) DefinitionNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.names...)
}

func (s *mapStore) RegisterDefinition(name string, def *Definition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.defs[name]; !ok {
		s.names = append(s.names, name)
	}
	s.defs[name] = def
}

func (s *mapStore) RemoveDefinition(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.defs[name]; !ok {
		return false
	}
	delete(s.defs, name)
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i], s.names[i+1:]...)
			break
		}
	}
	return true
}
