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

// Package beanreflect holds the reflection helpers shared by the container
// and its event loggers.
package beanreflect

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

var (
	_errType = reflect.TypeOf((*error)(nil)).Elem()
	_ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
)

// ReturnType reports the first non-error result type of a function. It
// returns nil if fn is not a function or returns only an error.
func ReturnType(fn interface{}) reflect.Type {
	if fn == nil {
		return nil
	}
	ft := reflect.TypeOf(fn)
	if ft.Kind() != reflect.Func {
		return nil
	}
	for i := 0; i < ft.NumOut(); i++ {
		if !IsErr(ft.Out(i)) {
			return ft.Out(i)
		}
	}
	return nil
}

// MethodResultType looks up the named method on t and returns its first
// non-error result type, without calling it. A leading context.Context
// parameter is allowed.
func MethodResultType(t reflect.Type, method string) reflect.Type {
	if t == nil {
		return nil
	}
	m, ok := t.MethodByName(method)
	if !ok {
		return nil
	}
	mt := m.Type
	// Method on a concrete type: receiver is In(0).
	for i := 0; i < mt.NumOut(); i++ {
		out := mt.Out(i)
		if IsErr(out) {
			continue
		}
		if out.Kind() == reflect.Interface && out.NumMethod() == 0 {
			// interface{} says nothing useful about the product.
			return nil
		}
		return out
	}
	return nil
}

// TakesContext reports whether the function type accepts a context.Context
// as its first parameter.
func TakesContext(ft reflect.Type) bool {
	return ft.NumIn() > 0 && ft.In(0) == _ctxType
}

// Caller returns the formatted location of the first frame outside the
// beans module.
func Caller() string {
	// Ascend at most 8 frames looking for a caller outside beans.
	pcs := make([]uintptr, 8)

	// Don't include this frame.
	n := runtime.Callers(1, pcs)
	if n == 0 {
		return "n/a"
	}

	frames := runtime.CallersFrames(pcs[:n])
	for f, more := frames.Next(); more; f, more = frames.Next() {
		if shouldIgnoreFrame(f) {
			continue
		}
		return fmt.Sprintf("%s (%s:%d)", f.Function, f.File, f.Line)
	}
	return "n/a"
}

// FuncName returns a funcs formatted name
func FuncName(fn interface{}) string {
	fnV := reflect.ValueOf(fn)
	if fnV.Kind() != reflect.Func {
		return "n/a"
	}

	fnName := runtime.FuncForPC(fnV.Pointer()).Name()
	return fmt.Sprintf("%s()", fnName)
}

// TypeName renders a type for logs and error messages. A nil type renders as
// "<unknown>".
func TypeName(t reflect.Type) string {
	if t == nil {
		return "<unknown>"
	}
	return t.String()
}

// IsErr reports whether t implements error.
func IsErr(t reflect.Type) bool {
	return t.Implements(_errType)
}

// Ascend the call stack until we leave the beans production code. This
// allows us to avoid hard-coding a frame skip, which makes this code work
// well even when it's wrapped.
func shouldIgnoreFrame(f runtime.Frame) bool {
	if strings.Contains(f.File, "_test.go") {
		return false
	}
	return strings.HasPrefix(f.Function, "go.uber.org/beans.") ||
		strings.HasPrefix(f.Function, "go.uber.org/beans/")
}
