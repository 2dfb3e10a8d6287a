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

package beantest

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/beans"
)

// Verify that TB always matches testing.T.
var _ TB = (*testing.T)(nil)

type tb struct {
	failures int
	errors   *bytes.Buffer
	logs     *bytes.Buffer
}

func newTB() *tb {
	return &tb{0, &bytes.Buffer{}, &bytes.Buffer{}}
}

func (t *tb) FailNow() {
	t.failures++
}

func (t *tb) Errorf(format string, args ...interface{}) {
	fmt.Fprintf(t.errors, format, args...)
	t.errors.WriteRune('\n')
}

func (t *tb) Logf(format string, args ...interface{}) {
	fmt.Fprintf(t.logs, format, args...)
	t.logs.WriteRune('\n')
}

type greeter struct{ Greeting string }

type broken struct{}

func (broken) Destroy(context.Context) error { return errors.New("great sadness") }

func TestSuccess(t *testing.T) {
	spy := newTB()
	c := New(spy).MustRegister(map[string]*beans.Definition{
		"greeter": {
			Factory:    func() *greeter { return &greeter{} },
			Properties: beans.Properties{{Name: "greeting", Value: "hello"}},
		},
	})

	obj := c.MustGet(context.Background(), "greeter")
	assert.Equal(t, "hello", obj.(*greeter).Greeting)
	c.MustShutdown(context.Background())

	assert.Zero(t, spy.failures, "Expected no failures.")
	assert.Empty(t, spy.errors.String(), "Expected no errors.")
	assert.Contains(t, spy.logs.String(), "CREATED\tgreeter")
	assert.Contains(t, spy.logs.String(), "SHUTDOWN")
}

func TestFailures(t *testing.T) {
	t.Run("BuildFailure", func(t *testing.T) {
		spy := newTB()
		c := New(spy, beans.WithScope(beans.SingletonScope, nil))
		assert.Nil(t, c)
		assert.Equal(t, 1, spy.failures)
		assert.Contains(t, spy.errors.String(), "container build failed")
	})

	t.Run("RegisterFailure", func(t *testing.T) {
		spy := newTB()
		New(spy).MustRegister(map[string]*beans.Definition{"bad": {Factory: "not a function"}})
		assert.Equal(t, 1, spy.failures)
		assert.Contains(t, spy.errors.String(), `cannot register "bad"`)
	})

	t.Run("GetFailure", func(t *testing.T) {
		spy := newTB()
		obj := New(spy).MustGet(context.Background(), "ghost")
		assert.Nil(t, obj)
		assert.Equal(t, 1, spy.failures)
		assert.Contains(t, spy.errors.String(), `cannot get bean "ghost"`)
	})

	t.Run("ShutdownFailure", func(t *testing.T) {
		spy := newTB()
		c := New(spy).MustRegister(map[string]*beans.Definition{
			"broken": {Factory: func() broken { return broken{} }},
		})
		c.MustGet(context.Background(), "broken")
		c.MustShutdown(context.Background())

		assert.Equal(t, 1, spy.failures)
		assert.Contains(t, spy.errors.String(), "didn't shut down cleanly")
		assert.Contains(t, spy.logs.String(), "Failed to destroy broken")
	})
}

func TestRealTB(t *testing.T) {
	c := New(t)
	require.NotNil(t, c)
	c.MustRegister(map[string]*beans.Definition{"g": {Factory: func() *greeter { return &greeter{} }}})
	c.MustGet(context.Background(), "g")
	c.MustShutdown(context.Background())
}
