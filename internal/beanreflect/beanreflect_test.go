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

package beanreflect

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

type widget struct{}

type widgetMaker struct{}

func (widgetMaker) Produce(context.Context) (*widget, error) { return &widget{}, nil }

type anyMaker struct{}

func (anyMaker) Produce(context.Context) (interface{}, error) { return nil, nil }

func TestReturnType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		desc string
		give interface{}
		want reflect.Type
	}{
		{"nil", nil, nil},
		{"not a func", 42, nil},
		{"value", func() *widget { return nil }, reflect.TypeOf(&widget{})},
		{"value and error", func() (*widget, error) { return nil, nil }, reflect.TypeOf(&widget{})},
		{"error only", func() error { return errors.New("great sadness") }, nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ReturnType(tt.give))
		})
	}
}

func TestMethodResultType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, reflect.TypeOf(&widget{}), MethodResultType(reflect.TypeOf(widgetMaker{}), "Produce"))
	assert.Nil(t, MethodResultType(reflect.TypeOf(anyMaker{}), "Produce"), "interface{} is not informative")
	assert.Nil(t, MethodResultType(reflect.TypeOf(widget{}), "Produce"))
	assert.Nil(t, MethodResultType(nil, "Produce"))
}

func TestTakesContext(t *testing.T) {
	assert.True(t, TakesContext(reflect.TypeOf(func(context.Context) {})))
	assert.False(t, TakesContext(reflect.TypeOf(func(int) {})))
	assert.False(t, TakesContext(reflect.TypeOf(func() {})))
}

func TestCaller(t *testing.T) {
	assert.Contains(t, Caller(), "TestCaller")
}

func TestFuncName(t *testing.T) {
	assert.Equal(t, "n/a", FuncName("not a function"))
	assert.Contains(t, FuncName(TestFuncName), "beanreflect.TestFuncName()")
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "<unknown>", TypeName(nil))
	assert.Equal(t, "*beanreflect.widget", TypeName(reflect.TypeOf(&widget{})))
}
