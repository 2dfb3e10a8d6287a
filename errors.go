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
	"fmt"
	"reflect"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/beans/internal/beanreflect"
)

var (
	// ErrScopeNotActive is the signal a ScopeProvider returns (possibly
	// wrapped) when it has no active unit of work for the calling context.
	ErrScopeNotActive = errors.New("scope is not active")

	// ErrContainerShutdown is returned by retrievals on a container that has
	// been shut down.
	ErrContainerShutdown = errors.New("container has been shut down")
)

// NoSuchDefinitionError is returned when no definition is registered under
// a name, neither locally nor in any parent container.
type NoSuchDefinitionError struct {
	Name string
}

func (e *NoSuchDefinitionError) Error() string {
	return fmt.Sprintf("no bean definition named %q", e.Name)
}

// DefinitionError reports a definition that can never be instantiated: it
// is abstract, its parent chain is broken, or it is otherwise malformed.
type DefinitionError struct {
	Name   string
	Source string
	Reason string
	Err    error
}

func (e *DefinitionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid bean definition %q", e.Name)
	if e.Source != "" {
		fmt.Fprintf(&b, " defined in %s", e.Source)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DefinitionError) Unwrap() error { return e.Err }

// CreationError wraps a failure that happened while constructing,
// populating, or initializing a bean.
type CreationError struct {
	Name   string
	Source string
	Err    error
}

func (e *CreationError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("error creating bean %q defined in %s: %v", e.Name, e.Source, e.Err)
	}
	return fmt.Sprintf("error creating bean %q: %v", e.Name, e.Err)
}

func (e *CreationError) Unwrap() error { return e.Err }

// DependencyError reports a depends-on constraint that could not be
// satisfied: the target is missing or the two names depend on each other.
type DependencyError struct {
	Name      string
	DependsOn string
	Cycle     bool
	Err       error
}

func (e *DependencyError) Error() string {
	if e.Cycle {
		return fmt.Sprintf("circular depends-on relationship between %q and %q", e.Name, e.DependsOn)
	}
	return fmt.Sprintf("bean %q depends on missing bean %q: %v", e.Name, e.DependsOn, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

// CurrentlyInCreationError is returned when a bean is requested while it is
// being created on the same call chain, or by a call chain waiting on the
// requesting one, and no early reference can satisfy the request.
type CurrentlyInCreationError struct {
	Name   string
	Reason string
}

func (e *CurrentlyInCreationError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "requested bean is currently in creation: is there an unresolvable circular reference?"
	}
	return fmt.Sprintf("error creating bean %q: %s", e.Name, reason)
}

// ScopeError is a fatal configuration error: the definition names a scope
// that has no registered provider.
type ScopeError struct {
	Name  string
	Scope string
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("no scope registered for scope name %q used by bean %q", e.Scope, e.Name)
}

// ScopeNotActiveError is returned when a scope provider reports that its
// scope is not active for the calling context.
type ScopeNotActiveError struct {
	Name  string
	Scope string
	Err   error
}

func (e *ScopeNotActiveError) Error() string {
	return fmt.Sprintf("scope %q is not active for the current context; "+
		"consider resolving bean %q lazily or through a scoped proxy "+
		"if you intend to refer to it from a singleton: %v", e.Scope, e.Name, e.Err)
}

func (e *ScopeNotActiveError) Unwrap() error { return e.Err }

// NotOfRequiredTypeError is returned when a retrieved bean is neither
// assignable nor convertible to the requested type.
type NotOfRequiredTypeError struct {
	Name     string
	Required reflect.Type
	Actual   reflect.Type
	Err      error
}

func (e *NotOfRequiredTypeError) Error() string {
	msg := fmt.Sprintf("bean %q is expected to be of type %s but was actually of type %s",
		e.Name, beanreflect.TypeName(e.Required), beanreflect.TypeName(e.Actual))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NotOfRequiredTypeError) Unwrap() error { return e.Err }

// ConversionNotSupportedError is returned by a TypeConverter that has no
// way to convert between two types.
type ConversionNotSupportedError struct {
	From reflect.Type
	To   reflect.Type
}

func (e *ConversionNotSupportedError) Error() string {
	return fmt.Sprintf("no conversion from %s to %s",
		beanreflect.TypeName(e.From), beanreflect.TypeName(e.To))
}

// NotAProducerError is returned when the producer itself is requested
// (dereferenced name) but the bean is not a Producer.
type NotAProducerError struct {
	Name   string
	Actual reflect.Type
}

func (e *NotAProducerError) Error() string {
	return fmt.Sprintf("bean %q is expected to be a producer but was of type %s",
		e.Name, beanreflect.TypeName(e.Actual))
}

func isCurrentlyInCreation(err error) bool {
	var target *CurrentlyInCreationError
	return errors.As(err, &target)
}
