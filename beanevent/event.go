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

package beanevent

import (
	"time"
)

// Event defines an event emitted by the container.
type Event interface {
	event() // Only beanevent can implement this interface.
}

// Passing events by type to make Event hashable in the future.
func (*DefinitionRegistered) event()      {}
func (*DefinitionRemoved) event()         {}
func (*AliasRegistered) event()           {}
func (*ScopeRegistered) event()           {}
func (*Creating) event()                  {}
func (*Created) event()                   {}
func (*EarlyReference) event()            {}
func (*TypeProbeFailed) event()           {}
func (*LookupSuppressed) event()          {}
func (*Destroying) event()                {}
func (*Destroyed) event()                 {}
func (*SingletonsPreInstantiated) event() {}
func (*Shutdown) event()                  {}

// DefinitionRegistered is emitted when a definition is registered or
// replaced.
type DefinitionRegistered struct {
	Name string
	// Source is the opaque location the definition came from.
	Source string
	// Overridden is true if an existing definition was replaced.
	Overridden bool
}

// DefinitionRemoved is emitted when a definition is removed.
type DefinitionRemoved struct {
	Name string
}

// AliasRegistered is emitted when an alias is added for a name.
type AliasRegistered struct {
	Name  string
	Alias string
}

// ScopeRegistered is emitted when a custom scope provider is installed.
type ScopeRegistered struct {
	Scope string
}

// Creating is emitted before a bean is constructed.
type Creating struct {
	Name  string
	Scope string
}

// Created is emitted after a bean construction attempt.
type Created struct {
	Name    string
	Scope   string
	Runtime time.Duration
	Err     error
}

// EarlyReference is emitted when a singleton that is still being built is
// handed out to resolve a circular reference.
type EarlyReference struct {
	Name string
}

// TypeProbeFailed is emitted when a type query had to construct a producer
// and the construction failed. The query degrades to an unknown type.
type TypeProbeFailed struct {
	Name string
	Err  error
}

// LookupSuppressed is emitted when a lookup failed because the target was
// still being created and the failure was swallowed.
type LookupSuppressed struct {
	Name string
	Err  error
}

// Destroying is emitted before a bean's destruction callback runs.
type Destroying struct {
	Name string
}

// Destroyed is emitted after a bean's destruction callback ran.
type Destroyed struct {
	Name    string
	Runtime time.Duration
	Err     error
}

// SingletonsPreInstantiated is emitted after eager singleton creation.
type SingletonsPreInstantiated struct {
	Count int
	Err   error
}

// Shutdown is emitted after the container destroyed its singletons.
type Shutdown struct {
	Err error
}
