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

package release

import (
	"sort"
	"strings"

	"golang.org/x/mod/semver"
)

// Canonical returns the semantic version equivalent of tag, or "" when tag
// does not look like a version. Two-part versions gain a zero patch level
// and numeric pre-release suffixes are split off so that rc10 orders after
// rc9:
//
//	v5.10-rc3  ->  v5.10.0-rc.3
//	2.6.32     ->  v2.6.32
func Canonical(tag string) string {
	if tag == Head {
		return ""
	}
	preRelease, parent := Classify(tag)

	core := parent
	if !strings.HasPrefix(core, "v") {
		core = "v" + core
	}
	switch strings.Count(core, ".") {
	case 0:
		core += ".0.0"
	case 1:
		core += ".0"
	case 2:
	default:
		return ""
	}

	v := core
	if preRelease {
		suffix := strings.ToLower(strings.TrimLeft(tag[len(parent):], "-_."))
		v += "-" + splitNumeric(suffix)
	}
	if !semver.IsValid(v) {
		return ""
	}
	return semver.Canonical(v)
}

// splitNumeric separates a trailing run of digits with a dot: "rc3" -> "rc.3".
func splitNumeric(s string) string {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == 0 || i == len(s) || s[i-1] == '.' {
		return s
	}
	return s[:i] + "." + s[i:]
}

// Compare orders two tags by version. Tags that are not versions sort after
// all versions, lexically among themselves.
func Compare(a, b string) int {
	va, vb := Canonical(a), Canonical(b)
	switch {
	case va != "" && vb != "":
		if c := semver.Compare(va, vb); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	case va != "":
		return -1
	case vb != "":
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// SortByVersion sorts tags in place from oldest to newest version.
func SortByVersion(tags []string) {
	sort.SliceStable(tags, func(i, j int) bool {
		return Compare(tags[i], tags[j]) < 0
	})
}
