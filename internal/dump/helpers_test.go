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

package dump

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/sirseerhq/commit-dump/internal/state"
	"github.com/sirseerhq/commit-dump/internal/vcs"
)

// recorder captures operator messages.
type recorder struct {
	notes    []string
	progress []string
	patches  []string
}

func (r *recorder) Note(format string, args ...interface{}) {
	r.notes = append(r.notes, fmt.Sprintf(format, args...))
}

func (r *recorder) Progress(format string, args ...interface{}) {
	r.progress = append(r.progress, fmt.Sprintf(format, args...))
}

func (r *recorder) Patch(path string) {
	r.patches = append(r.patches, path)
}

func (r *recorder) noted(substr string) bool {
	for _, n := range r.notes {
		if strings.Contains(n, substr) {
			return true
		}
	}
	return false
}

func commits(ids ...string) []vcs.MockCommit {
	out := make([]vcs.MockCommit, len(ids))
	for i, id := range ids {
		out[i] = vcs.MockCommit{ID: id, Subject: "Change " + id}
	}
	return out
}

// patchFiles returns the patch file names directly inside dir, sorted.
func patchFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir(%s): %v", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func newMockFromIDs(ids []string) *vcs.MockRepository {
	return vcs.NewMockRepository(commits(ids...)...)
}

// headTarget builds the flat-mode target under root.
func headTarget(root string) Target {
	return Target{
		Key:   state.HeadKey,
		Dir:   filepath.Join(root, "HEAD"),
		Range: vcs.Range{End: vcs.Head},
		Width: 4,
	}
}
