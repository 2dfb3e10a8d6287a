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
	"context"
	"reflect"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/beans/beanevent"
)

// TypeConverter converts values between types. It returns a
// *ConversionNotSupportedError when it has no conversion for the pair so
// that the next converter can be tried.
type TypeConverter interface {
	Convert(ctx context.Context, value interface{}, to reflect.Type) (interface{}, error)
}

// TypeConverterFunc adapts a function into a TypeConverter.
type TypeConverterFunc func(ctx context.Context, value interface{}, to reflect.Type) (interface{}, error)

// Convert implements TypeConverter.
func (f TypeConverterFunc) Convert(ctx context.Context, value interface{}, to reflect.Type) (interface{}, error) {
	return f(ctx, value, to)
}

var _ TypeConverter = (*Container)(nil)

// Convert converts value to the type to with the container's converters.
// A converter that fails because it looked up a bean still being created is
// skipped, as is one that does not support the conversion.
func (c *Container) Convert(ctx context.Context, value interface{}, to reflect.Type) (interface{}, error) {
	if value == nil || to == nil || reflect.TypeOf(value).AssignableTo(to) {
		return value, nil
	}

	var last error
	for _, conv := range c.converters {
		out, err := conv.Convert(ctx, value, to)
		if err == nil {
			return out, nil
		}

		var unsupported *ConversionNotSupportedError
		var inCreation *CurrentlyInCreationError
		switch {
		case errors.As(err, &inCreation):
			c.logger.LogEvent(&beanevent.LookupSuppressed{Name: inCreation.Name, Err: err})
		case errors.As(err, &unsupported):
		default:
			return nil, err
		}
		last = err
	}
	if last == nil {
		last = &ConversionNotSupportedError{From: reflect.TypeOf(value), To: to}
	}
	return nil, last
}

// defaultConverter handles the conversions every container supports. Strings
// are parsed into basic kinds and durations; other basic kinds convert
// directly, and pointers are dereferenced.
type defaultConverter struct{}

func (defaultConverter) Convert(_ context.Context, value interface{}, to reflect.Type) (interface{}, error) {
	v := reflect.ValueOf(value)
	from := v.Type()
	unsupported := &ConversionNotSupportedError{From: from, To: to}

	if from.Kind() == reflect.Ptr && !v.IsNil() && from.Elem().AssignableTo(to) {
		return v.Elem().Interface(), nil
	}

	if from.Kind() == reflect.String && to.Kind() != reflect.String {
		out, err := parseString(v.String(), to)
		if err != nil {
			return nil, errors.Wrapf(unsupported, "cannot parse %q: %v", v.String(), err)
		}
		return out, nil
	}

	if isBasicKind(from.Kind()) && isBasicKind(to.Kind()) && from.ConvertibleTo(to) {
		if to.Kind() == reflect.String && from.Kind() != reflect.String {
			return nil, unsupported
		}
		return v.Convert(to).Interface(), nil
	}
	return nil, unsupported
}

func isBasicKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

var _durationType = reflect.TypeOf(time.Duration(0))

func parseString(s string, to reflect.Type) (interface{}, error) {
	out := reflect.New(to).Elem()
	if to == _durationType {
		d, err := cast.ToDurationE(s)
		if err != nil {
			return nil, err
		}
		out.SetInt(int64(d))
		return out.Interface(), nil
	}

	switch to.Kind() {
	case reflect.Bool:
		b, err := cast.ToBoolE(s)
		if err != nil {
			return nil, err
		}
		out.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := cast.ToInt64E(s)
		if err != nil {
			return nil, err
		}
		if out.OverflowInt(n) {
			return nil, errors.Errorf("value out of range for %s", to)
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := cast.ToUint64E(s)
		if err != nil {
			return nil, err
		}
		if out.OverflowUint(n) {
			return nil, errors.Errorf("value out of range for %s", to)
		}
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := cast.ToFloat64E(s)
		if err != nil {
			return nil, err
		}
		if out.OverflowFloat(f) {
			return nil, errors.Errorf("value out of range for %s", to)
		}
		out.SetFloat(f)
	default:
		return nil, errors.Errorf("no parser for %s", to)
	}
	return out.Interface(), nil
}
