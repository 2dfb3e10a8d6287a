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
	"sync"

	"github.com/pkg/errors"
)

// inflight is a construction in progress. Callers from other frames wait on
// done and share the outcome.
type inflight struct {
	owner uint64
	done  chan struct{}
	obj   interface{}
	err   error
}

// waitGraph records which in-flight constructions each creation frame is
// blocked on, so that frames waiting on each other are detected instead of
// blocking forever.
type waitGraph struct {
	mu      sync.Mutex
	waiting map[uint64][]*inflight
}

func newWaitGraph() *waitGraph {
	return &waitGraph{waiting: make(map[uint64][]*inflight)}
}

// wait blocks owner until f completes. It returns false without waiting if
// the frame running f is itself waiting, directly or through other frames,
// on owner.
func (g *waitGraph) wait(owner uint64, f *inflight) bool {
	g.mu.Lock()
	if g.waitsOnLocked(f.owner, owner, make(map[uint64]bool)) {
		g.mu.Unlock()
		return false
	}
	g.waiting[owner] = append(g.waiting[owner], f)
	g.mu.Unlock()

	<-f.done

	g.mu.Lock()
	defer g.mu.Unlock()
	ws := g.waiting[owner]
	for i, w := range ws {
		if w == f {
			ws = append(ws[:i], ws[i+1:]...)
			break
		}
	}
	if len(ws) == 0 {
		delete(g.waiting, owner)
	} else {
		g.waiting[owner] = ws
	}
	return true
}

func (g *waitGraph) waitsOnLocked(from, target uint64, seen map[uint64]bool) bool {
	if from == target {
		return true
	}
	if seen[from] {
		return false
	}
	seen[from] = true
	for _, f := range g.waiting[from] {
		if g.waitsOnLocked(f.owner, target, seen) {
			return true
		}
	}
	return false
}

// singletonRegistry is the object cache: fully built singletons, the
// early-exposure slots of singletons under construction, and the
// dependency edges between beans.
type singletonRegistry struct {
	waits *waitGraph

	mu        sync.Mutex
	objects   map[string]interface{}
	order     []string
	early     map[string]interface{}
	factories map[string]func() (interface{}, error)
	inflight  map[string]*inflight

	depMu        sync.Mutex
	dependents   map[string]map[string]struct{} // name -> beans depending on it
	dependencies map[string]map[string]struct{} // name -> beans it depends on
}

func newSingletonRegistry() *singletonRegistry {
	return &singletonRegistry{
		waits:        newWaitGraph(),
		objects:      make(map[string]interface{}),
		early:        make(map[string]interface{}),
		factories:    make(map[string]func() (interface{}, error)),
		inflight:     make(map[string]*inflight),
		dependents:   make(map[string]map[string]struct{}),
		dependencies: make(map[string]map[string]struct{}),
	}
}

// lookup returns the cached singleton for name. When allowEarly is set and
// name is being created by the owner frame, the early reference is returned
// instead, materializing it from its factory on first use.
func (r *singletonRegistry) lookup(name string, owner uint64, allowEarly bool) (interface{}, bool, error) {
	r.mu.Lock()
	if obj, ok := r.objects[name]; ok {
		r.mu.Unlock()
		return obj, true, nil
	}
	f := r.inflight[name]
	r.mu.Unlock()

	if !allowEarly || f == nil || f.owner != owner {
		return nil, false, nil
	}
	return r.earlyReference(name)
}

// earlyReference returns the early reference of a singleton under
// construction, materializing it from its factory on first use.
func (r *singletonRegistry) earlyReference(name string) (interface{}, bool, error) {
	r.mu.Lock()
	if obj, ok := r.early[name]; ok {
		r.mu.Unlock()
		return obj, true, nil
	}
	factory, ok := r.factories[name]
	if !ok {
		r.mu.Unlock()
		return nil, false, nil
	}
	delete(r.factories, name)
	r.mu.Unlock()

	obj, err := factory()
	if err != nil {
		return nil, false, err
	}

	r.mu.Lock()
	r.early[name] = obj
	r.mu.Unlock()
	return obj, true, nil
}

// getOrCreate returns the singleton for name, running create if it does not
// exist yet. At most one create runs per name at a time; callers from other
// frames block and receive the same instance or error.
//
// Constructions of different names run concurrently. When two frames end up
// waiting on each other, the one detecting it receives the early reference
// of the singleton it waits for, or a *CurrentlyInCreationError if there is
// none.
func (r *singletonRegistry) getOrCreate(owner uint64, name string, create func() (interface{}, error)) (interface{}, error) {
	r.mu.Lock()
	if obj, ok := r.objects[name]; ok {
		r.mu.Unlock()
		return obj, nil
	}
	if f := r.inflight[name]; f != nil {
		r.mu.Unlock()
		if f.owner == owner {
			return nil, &CurrentlyInCreationError{Name: name}
		}
		if r.waits.wait(owner, f) {
			return f.obj, f.err
		}
		obj, ok, err := r.earlyReference(name)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &CurrentlyInCreationError{
				Name:   name,
				Reason: "bean is being created by another call chain that is waiting for this one",
			}
		}
		return obj, nil
	}
	f := &inflight{owner: owner, done: make(chan struct{})}
	r.inflight[name] = f
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.inflight, name)
		delete(r.early, name)
		delete(r.factories, name)
		if f.err == nil {
			r.addLocked(name, f.obj)
		}
		r.mu.Unlock()
		close(f.done)
	}()

	f.err = errors.New("singleton creation panicked")
	f.obj, f.err = create()
	return f.obj, f.err
}

// addFactory registers the early-exposure factory of a singleton under
// construction.
func (r *singletonRegistry) addFactory(name string, factory func() (interface{}, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.objects[name]; ok {
		return
	}
	r.factories[name] = factory
	delete(r.early, name)
}

// earlyObject returns the early reference handed out for name, if any.
func (r *singletonRegistry) earlyObject(name string) (interface{}, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj, ok := r.early[name]
	return obj, ok
}

func (r *singletonRegistry) isCurrentlyInCreation(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.inflight[name]
	return ok
}

// register adds a fully built singleton from outside the creation path.
func (r *singletonRegistry) register(name string, obj interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.objects[name]; ok {
		return errors.Errorf("could not register object under bean name %q: there is already an object bound", name)
	}
	r.addLocked(name, obj)
	return nil
}

func (r *singletonRegistry) addLocked(name string, obj interface{}) {
	if _, ok := r.objects[name]; !ok {
		r.order = append(r.order, name)
	}
	r.objects[name] = obj
}

func (r *singletonRegistry) contains(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.objects[name]
	return ok
}

func (r *singletonRegistry) remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.objects, name)
	delete(r.early, name)
	delete(r.factories, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// names returns the singleton names in registration order.
func (r *singletonRegistry) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

func (r *singletonRegistry) clear() {
	r.mu.Lock()
	r.objects = make(map[string]interface{})
	r.order = nil
	r.early = make(map[string]interface{})
	r.factories = make(map[string]func() (interface{}, error))
	r.mu.Unlock()

	r.depMu.Lock()
	r.dependents = make(map[string]map[string]struct{})
	r.dependencies = make(map[string]map[string]struct{})
	r.depMu.Unlock()
}

// registerDependent records that dependent depends on name. Registering the
// same edge twice is a no-op.
func (r *singletonRegistry) registerDependent(name, dependent string) {
	r.depMu.Lock()
	defer r.depMu.Unlock()
	addEdge(r.dependents, name, dependent)
	addEdge(r.dependencies, dependent, name)
}

// isDependent reports whether dependent depends on name, directly or
// transitively.
func (r *singletonRegistry) isDependent(name, dependent string) bool {
	r.depMu.Lock()
	defer r.depMu.Unlock()
	return r.isDependentLocked(name, dependent, make(map[string]bool))
}

func (r *singletonRegistry) isDependentLocked(name, dependent string, seen map[string]bool) bool {
	if seen[name] {
		return false
	}
	seen[name] = true
	deps := r.dependents[name]
	if _, ok := deps[dependent]; ok {
		return true
	}
	for d := range deps {
		if r.isDependentLocked(d, dependent, seen) {
			return true
		}
	}
	return false
}

// dependentsOf returns the beans that depend on name, sorted.
func (r *singletonRegistry) dependentsOf(name string) []string {
	r.depMu.Lock()
	defer r.depMu.Unlock()
	return sortedKeys(r.dependents[name])
}

// dependenciesOf returns the beans name depends on, sorted.
func (r *singletonRegistry) dependenciesOf(name string) []string {
	r.depMu.Lock()
	defer r.depMu.Unlock()
	return sortedKeys(r.dependencies[name])
}

// takeDependents removes and returns the beans depending on name.
func (r *singletonRegistry) takeDependents(name string) []string {
	r.depMu.Lock()
	defer r.depMu.Unlock()
	deps := sortedKeys(r.dependents[name])
	delete(r.dependents, name)
	for _, d := range deps {
		if set := r.dependencies[d]; set != nil {
			delete(set, name)
		}
	}
	return deps
}

// dropDependencies removes every edge in which name is the dependent.
func (r *singletonRegistry) dropDependencies(name string) {
	r.depMu.Lock()
	defer r.depMu.Unlock()
	for dep := range r.dependencies[name] {
		if set := r.dependents[dep]; set != nil {
			delete(set, name)
			if len(set) == 0 {
				delete(r.dependents, dep)
			}
		}
	}
	delete(r.dependencies, name)
}

func addEdge(m map[string]map[string]struct{}, from, to string) {
	set, ok := m[from]
	if !ok {
		set = make(map[string]struct{})
		m[from] = set
	}
	set[to] = struct{}{}
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
