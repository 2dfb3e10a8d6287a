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
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Config holds the behavioral flags of a Container.
type Config struct {
	// AllowCircularReferences lets singletons resolve circular references
	// through early references.
	AllowCircularReferences bool `yaml:"allowCircularReferences"`
	// AllowDefinitionOverriding lets RegisterDefinition replace an existing
	// definition.
	AllowDefinitionOverriding bool `yaml:"allowDefinitionOverriding"`
	// AllowAliasOverriding lets RegisterAlias repoint an existing alias.
	AllowAliasOverriding bool `yaml:"allowAliasOverriding"`
	// CacheMetadata caches effective definitions between retrievals.
	CacheMetadata bool `yaml:"cacheMetadata"`
}

// DefaultConfig returns the configuration used when none is given. Every
// flag is enabled.
func DefaultConfig() Config {
	return Config{
		AllowCircularReferences:   true,
		AllowDefinitionOverriding: true,
		AllowAliasOverriding:      true,
		CacheMetadata:             true,
	}
}

// LoadConfig reads a YAML document from r. Keys that are absent keep their
// DefaultConfig values.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, errors.Wrap(err, "failed to decode container config")
	}
	return cfg, nil
}
