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

// Package naming derives patch file names from commit subject lines.
//
// A file name is the commit's zero-padded offset within its export target,
// a hyphen, a filesystem-safe rendition of the subject and the ".patch"
// extension:
//
//	0007-Fix-a-weird-bug.patch
//
// Names never contain path separators and never exceed the filesystem's
// maximum name component length. Because every offset in a target shares
// the same width, lexical order of the names is chronological order.
package naming

import (
	"fmt"
	"regexp"
	"strconv"
)

// Extension is appended to every generated name and survives truncation.
const Extension = ".patch"

// DefaultMaxNameLength is the name component limit of common filesystems.
const DefaultMaxNameLength = 255

// minWidthBasis keeps offsets at four digits or more.
const minWidthBasis = 1000

var (
	patchPrefix = regexp.MustCompile(`^\[PATCH[^]]*\]`)
	unsafeChars = regexp.MustCompile(`[^-a-z.A-Z_0-9]`)
	tripleDot   = regexp.MustCompile(`\.\.\.`)
	edgeTrim    = regexp.MustCompile(`\.*$|^-|-$`)
	hyphenRun   = regexp.MustCompile(`--+`)
)

// Sanitize turns a commit subject into a patch file name for the given
// offset. width is the zero-pad width of the offset and maxLen the maximum
// length of a file name component.
func Sanitize(subject string, offset, width, maxLen int) string {
	name := patchPrefix.ReplaceAllString(subject, "")
	name = unsafeChars.ReplaceAllString(name, "-")
	name = tripleDot.ReplaceAllString(name, ".")
	name = edgeTrim.ReplaceAllString(name, "")
	name = hyphenRun.ReplaceAllString(name, "-")

	name = fmt.Sprintf("%0*d-%s%s", width, offset, name, Extension)
	if maxLen > len(Extension) && len(name) > maxLen {
		name = name[:maxLen-len(Extension)] + Extension
	}
	return name
}

// DigitWidth returns the zero-pad width for a target holding count commits.
func DigitWidth(count int) int {
	if count < minWidthBasis {
		count = minWidthBasis
	}
	return len(strconv.Itoa(count))
}

// Prefix returns the leading "<offset>-" part shared by every name written
// for offset at the given width.
func Prefix(offset, width int) string {
	return fmt.Sprintf("%0*d-", width, offset)
}
