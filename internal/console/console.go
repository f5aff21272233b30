// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package console prints operator-facing progress lines to stderr.
// Diagnostics for debugging go through log/slog instead; this package only
// carries what a person running the tool is expected to read.
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// Console writes coloured notes and progress lines. Colour is dropped
// automatically when the output is not a terminal.
type Console struct {
	mu      sync.Mutex
	w       io.Writer
	verbose bool

	note     func(a ...interface{}) string
	progress func(a ...interface{}) string
	done     func(a ...interface{}) string
	patch    func(a ...interface{}) string
}

// New returns a Console writing to w. Per-patch lines are only printed
// when verbose is set.
func New(w io.Writer, verbose bool) *Console {
	return &Console{
		w:        w,
		verbose:  verbose,
		note:     color.New(color.FgYellow, color.Bold).SprintFunc(),
		progress: color.New(color.FgCyan).SprintFunc(),
		done:     color.New(color.FgGreen).SprintFunc(),
		patch:    color.New(color.Faint).SprintFunc(),
	}
}

func (c *Console) println(paint func(a ...interface{}) string, format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, paint(fmt.Sprintf(format, args...)))
}

// Note reports something the operator should know about, such as a target
// being rebuilt or an empty range.
func (c *Console) Note(format string, args ...interface{}) {
	c.println(c.note, "note: "+format, args...)
}

// Progress reports the start of work on a target.
func (c *Console) Progress(format string, args ...interface{}) {
	c.println(c.progress, format, args...)
}

// Done reports the outcome of a run.
func (c *Console) Done(format string, args ...interface{}) {
	c.println(c.done, format, args...)
}

// Patch reports one written file in verbose mode.
func (c *Console) Patch(path string) {
	if !c.verbose {
		return
	}
	c.println(c.patch, "  %s", path)
}
