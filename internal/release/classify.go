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

// Package release classifies tags into stable and pre-release versions and
// maps them onto the export directory layout.
//
// Stable tags own a directory directly under the export root. Pre-release
// tags (those carrying an "rc", "pre" or "beta" marker) nest under the
// directory of the stable version they precede:
//
//	<root>/v5.10/             stable v5.10
//	<root>/v5.10/v5.10-rc3/   pre-release v5.10-rc3
//	<root>/HEAD/              tip of the current branch
package release

import (
	"path/filepath"
	"strings"
)

// Head is the synthetic tag naming the tip of the current branch.
const Head = "HEAD"

// markers are tried in order; the first one found decides the split.
var markers = []string{"rc", "pre", "beta"}

// Classify reports whether tag is a pre-release and returns the version it
// belongs to. Stable tags, including HEAD, are their own parent.
func Classify(tag string) (preRelease bool, parent string) {
	if tag == Head {
		return false, Head
	}

	lower := strings.ToLower(tag)
	for _, marker := range markers {
		idx := strings.Index(lower, marker)
		if idx < 0 {
			continue
		}
		parent = tag[:idx]
		if n := len(parent); n > 0 && strings.ContainsRune("-_.", rune(parent[n-1])) {
			parent = parent[:n-1]
		}
		if parent == "" {
			// A marker at the very start leaves nothing to nest under.
			return false, tag
		}
		return true, parent
	}
	return false, tag
}

// Key returns the slash-separated location of tag's target relative to the
// export root.
func Key(tag string) string {
	preRelease, parent := Classify(tag)
	if preRelease {
		return parent + "/" + tag
	}
	return parent
}

// Dir returns the directory tag's patches are written to under root.
func Dir(root, tag string) string {
	return filepath.Join(root, filepath.FromSlash(Key(tag)))
}
