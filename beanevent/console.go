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
	"fmt"
	"io"
)

// ConsoleLogger is an event logger that attempts to write human-readable
// mesasges to the console.
//
// Use this during development.
type ConsoleLogger struct {
	W io.Writer
}

var _ Logger = (*ConsoleLogger)(nil)

func (l *ConsoleLogger) logf(msg string, args ...interface{}) {
	fmt.Fprintf(l.W, "[Beans] "+msg+"\n", args...)
}

// LogEvent logs the given event to the provided writer.
func (l *ConsoleLogger) LogEvent(event Event) {
	switch e := event.(type) {
	case *DefinitionRegistered:
		if e.Overridden {
			l.logf("DEFINE\t%s (overriding) from %s", e.Name, e.Source)
		} else {
			l.logf("DEFINE\t%s from %s", e.Name, e.Source)
		}
	case *DefinitionRemoved:
		l.logf("REMOVE\t%s", e.Name)
	case *AliasRegistered:
		l.logf("ALIAS\t%s => %s", e.Alias, e.Name)
	case *ScopeRegistered:
		l.logf("SCOPE\t%s", e.Scope)
	case *Creating:
		l.logf("CREATE\t%s (%s)", e.Name, e.Scope)
	case *Created:
		if e.Err != nil {
			l.logf("ERROR\t\tFailed to create %s: %v", e.Name, e.Err)
		} else {
			l.logf("CREATED\t%s (%s) in %s", e.Name, e.Scope, e.Runtime)
		}
	case *EarlyReference:
		l.logf("EARLY\t%s", e.Name)
	case *TypeProbeFailed:
		l.logf("PROBE\t%s: type unknown: %v", e.Name, e.Err)
	case *LookupSuppressed:
		l.logf("SUPPRESSED\t%s: %v", e.Name, e.Err)
	case *Destroying:
		l.logf("DESTROY\t%s", e.Name)
	case *Destroyed:
		if e.Err != nil {
			l.logf("ERROR\t\tFailed to destroy %s: %v", e.Name, e.Err)
		} else {
			l.logf("DESTROYED\t%s in %s", e.Name, e.Runtime)
		}
	case *SingletonsPreInstantiated:
		if e.Err != nil {
			l.logf("ERROR\t\tFailed to pre-instantiate singletons: %v", e.Err)
		} else {
			l.logf("READY\t%d singletons", e.Count)
		}
	case *Shutdown:
		if e.Err != nil {
			l.logf("ERROR\t\tFailed to shut down cleanly: %v", e.Err)
		} else {
			l.logf("SHUTDOWN")
		}
	}
}
