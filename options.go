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
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/uber-go/tally/v4"
	"go.uber.org/beans/beanevent"
	"go.uber.org/beans/internal/beanclock"
)

// An Option configures a Container.
type Option interface {
	fmt.Stringer

	apply(*Container)
}

// Options composes a collection of Options into a single Option.
func Options(opts ...Option) Option {
	return optionGroup(opts)
}

type optionGroup []Option

func (og optionGroup) apply(c *Container) {
	for _, opt := range og {
		opt.apply(c)
	}
}

func (og optionGroup) String() string {
	items := make([]string, len(og))
	for i, opt := range og {
		items[i] = fmt.Sprint(opt)
	}
	return fmt.Sprintf("beans.Options(%s)", strings.Join(items, ", "))
}

// WithParent makes parent the fallback for names this container does not
// define.
func WithParent(parent *Container) Option {
	return parentOption{parent}
}

type parentOption struct{ parent *Container }

func (o parentOption) apply(c *Container) { c.parent = o.parent }

func (o parentOption) String() string { return "beans.WithParent()" }

// WithLogger sets the logger that receives container events.
func WithLogger(logger beanevent.Logger) Option {
	return loggerOption{logger}
}

type loggerOption struct{ logger beanevent.Logger }

func (o loggerOption) apply(c *Container) {
	if o.logger != nil {
		c.logger = o.logger
	}
}

func (o loggerOption) String() string {
	return fmt.Sprintf("beans.WithLogger(%T)", o.logger)
}

// WithConstructor replaces the ReflectConstructor used to instantiate and
// populate beans.
func WithConstructor(constructor Constructor) Option {
	return constructorOption{constructor}
}

type constructorOption struct{ constructor Constructor }

func (o constructorOption) apply(c *Container) {
	if o.constructor != nil {
		c.constructor = o.constructor
	}
}

func (o constructorOption) String() string {
	return fmt.Sprintf("beans.WithConstructor(%T)", o.constructor)
}

// WithConverter adds a TypeConverter. Converters are tried in the order they
// were added, before the built-in conversions.
func WithConverter(converter TypeConverter) Option {
	return converterOption{converter}
}

type converterOption struct{ converter TypeConverter }

func (o converterOption) apply(c *Container) {
	if o.converter != nil {
		c.converters = append(c.converters, o.converter)
	}
}

func (o converterOption) String() string {
	return fmt.Sprintf("beans.WithConverter(%T)", o.converter)
}

// WithTypeResolver sets the resolver for Definition.TypeName.
func WithTypeResolver(resolver TypeResolver) Option {
	return typeResolverOption{resolver}
}

type typeResolverOption struct{ resolver TypeResolver }

func (o typeResolverOption) apply(c *Container) { c.typeResolver = o.resolver }

func (o typeResolverOption) String() string {
	return fmt.Sprintf("beans.WithTypeResolver(%T)", o.resolver)
}

// WithHooks adds creation and destruction hooks.
func WithHooks(hooks ...Hook) Option {
	return hooksOption(hooks)
}

type hooksOption []Hook

func (o hooksOption) apply(c *Container) {
	c.hooks = append(c.hooks, o...)
}

func (o hooksOption) String() string {
	return fmt.Sprintf("beans.WithHooks(%d hooks)", len(o))
}

// WithScope registers a custom scope provider when the container is built.
func WithScope(name string, provider ScopeProvider) Option {
	return scopeOption{name: name, provider: provider}
}

type scopeOption struct {
	name     string
	provider ScopeProvider
}

func (o scopeOption) apply(c *Container) {
	c.pendingScopes = append(c.pendingScopes, o)
}

func (o scopeOption) String() string {
	return fmt.Sprintf("beans.WithScope(%q, %T)", o.name, o.provider)
}

// WithMetrics reports creation and cache metrics to scope under the "beans"
// prefix.
func WithMetrics(scope tally.Scope) Option {
	return metricsOption{scope}
}

type metricsOption struct{ scope tally.Scope }

func (o metricsOption) apply(c *Container) {
	if o.scope != nil {
		c.metricsScope = o.scope
	}
}

func (o metricsOption) String() string { return "beans.WithMetrics()" }

// WithTracer starts a span for every bean creation.
func WithTracer(tracer opentracing.Tracer) Option {
	return tracerOption{tracer}
}

type tracerOption struct{ tracer opentracing.Tracer }

func (o tracerOption) apply(c *Container) {
	if o.tracer != nil {
		c.tracer = o.tracer
	}
}

func (o tracerOption) String() string {
	return fmt.Sprintf("beans.WithTracer(%T)", o.tracer)
}

// WithConfig sets the behavioral flags of the container.
func WithConfig(cfg Config) Option {
	return configOption{cfg}
}

type configOption struct{ cfg Config }

func (o configOption) apply(c *Container) { c.cfg = o.cfg }

func (o configOption) String() string {
	return fmt.Sprintf("beans.WithConfig(%+v)", o.cfg)
}

// WithDefinitionStore reads definitions from store instead of an in-memory
// map. RegisterDefinition and RemoveDefinition fail unless store is also a
// DefinitionRegistry.
func WithDefinitionStore(store DefinitionStore) Option {
	return storeOption{store}
}

type storeOption struct{ store DefinitionStore }

func (o storeOption) apply(c *Container) {
	if o.store != nil {
		c.store = o.store
	}
}

func (o storeOption) String() string {
	return fmt.Sprintf("beans.WithDefinitionStore(%T)", o.store)
}

// WithClock sets the clock used to time bean creation and destruction.
func WithClock(clock beanclock.Clock) Option {
	return clockOption{clock}
}

type clockOption struct{ clock beanclock.Clock }

func (o clockOption) apply(c *Container) {
	if o.clock != nil {
		c.clock = o.clock
	}
}

func (o clockOption) String() string { return "beans.WithClock()" }
