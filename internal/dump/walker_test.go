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
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/sirseerhq/commit-dump/internal/metadata"
	"github.com/sirseerhq/commit-dump/internal/state"
	"github.com/sirseerhq/commit-dump/internal/vcs"
)

type harness struct {
	root    string
	repo    *vcs.MockRepository
	store   *state.Store
	rec     *recorder
	tracker *metadata.Tracker
	opts    WalkOptions
}

func newHarness(t *testing.T, repo *vcs.MockRepository) *harness {
	t.Helper()
	root := t.TempDir()
	return &harness{root: root, repo: repo, store: state.NewStore(root)}
}

// walker builds a fresh Walker, as a new invocation of the tool would.
func (h *harness) walker() *Walker {
	h.rec = &recorder{}
	h.tracker = metadata.New()
	gen := NewGenerator(h.repo, h.store,
		WithMaxNameLength(255),
		WithReporter(h.rec),
		WithTracker(h.tracker),
	)
	return NewWalker(WalkerConfig{
		Repo:      h.repo,
		Store:     h.store,
		Generator: gen,
		Tracker:   h.tracker,
		Reporter:  h.rec,
		Options:   h.opts,
	})
}

func (h *harness) dir(parts ...string) string {
	return filepath.Join(append([]string{h.root}, parts...)...)
}

// snapshot reads every patch file of dir.
func snapshot(t *testing.T, dir string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	for _, name := range patchFiles(t, dir) {
		files[name] = readFile(t, filepath.Join(dir, name))
	}
	return files
}

func TestWalker_RunFlatIdempotent(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, vcs.NewMockRepository(commits("c1", "c2", "c3")...))

	if err := h.walker().RunFlat(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	before := snapshot(t, h.dir("HEAD"))
	renders := len(h.repo.RenderCalls)

	if err := h.walker().RunFlat(ctx); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if got := len(h.repo.RenderCalls); got != renders {
		t.Errorf("second run rendered %d commits, want none", got-renders)
	}
	if after := snapshot(t, h.dir("HEAD")); !reflect.DeepEqual(before, after) {
		t.Errorf("second run changed the export:\nbefore %v\nafter  %v", before, after)
	}
	if len(h.rec.notes) != 0 {
		t.Errorf("unexpected notes: %v", h.rec.notes)
	}
}

func TestWalker_RunFlatAppendOnly(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, vcs.NewMockRepository(commits("c1", "c2", "c3")...))

	if err := h.walker().RunFlat(ctx); err != nil {
		t.Fatal(err)
	}
	before := snapshot(t, h.dir("HEAD"))

	h.repo.Append(commits("c4", "c5")...)
	renders := len(h.repo.RenderCalls)
	if err := h.walker().RunFlat(ctx); err != nil {
		t.Fatal(err)
	}

	if got := h.repo.RenderCalls[renders:]; !reflect.DeepEqual(got, []string{"c4", "c5"}) {
		t.Errorf("second run rendered %v, want [c4 c5]", got)
	}
	after := snapshot(t, h.dir("HEAD"))
	for name, content := range before {
		if after[name] != content {
			t.Errorf("%s changed on resume", name)
		}
	}
	for _, name := range []string{"0004-Change-c4.patch", "0005-Change-c5.patch"} {
		if _, ok := after[name]; !ok {
			t.Errorf("%s not written; have %v", name, patchFiles(t, h.dir("HEAD")))
		}
	}

	st, err := h.store.Load(state.HeadKey)
	if err != nil {
		t.Fatal(err)
	}
	if st.NextOffset != 6 || st.LastCommitID != "c5" {
		t.Errorf("state = %+v", st)
	}
	head := readFile(t, filepath.Join(h.store.MetaDir(), "DUMP_HEAD"))
	if head != "c5\t5\n" {
		t.Errorf("DUMP_HEAD = %q", head)
	}
}

func TestWalker_RecoversFromInconsistency(t *testing.T) {
	tests := []struct {
		name   string
		tamper func(t *testing.T, h *harness)
	}{
		{
			name: "marker deleted",
			tamper: func(t *testing.T, h *harness) {
				if err := os.Remove(h.dir("HEAD", "0003-Change-c3.patch")); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name: "marker rewritten",
			tamper: func(t *testing.T, h *harness) {
				if err := os.WriteFile(h.dir("HEAD", "0003-Change-c3.patch"), []byte("commit bogus\n"), 0o644); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name: "state removed",
			tamper: func(t *testing.T, h *harness) {
				if err := os.Remove(h.store.StatePath(state.HeadKey)); err != nil {
					t.Fatal(err)
				}
				if err := os.Remove(filepath.Join(h.store.MetaDir(), "DUMP_HEAD")); err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(h.dir("HEAD", "stray.txt"), []byte("x"), 0o644); err != nil {
					t.Fatal(err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			h := newHarness(t, vcs.NewMockRepository(commits("c1", "c2", "c3")...))
			if err := h.walker().RunFlat(ctx); err != nil {
				t.Fatal(err)
			}
			tt.tamper(t, h)

			renders := len(h.repo.RenderCalls)
			if err := h.walker().RunFlat(ctx); err != nil {
				t.Fatal(err)
			}
			if got := len(h.repo.RenderCalls) - renders; got != 3 {
				t.Errorf("rendered %d commits on recovery, want 3", got)
			}
			want := []string{"0001-Change-c1.patch", "0002-Change-c2.patch", "0003-Change-c3.patch"}
			if got := patchFiles(t, h.dir("HEAD")); !reflect.DeepEqual(got, want) {
				t.Errorf("files = %v, want %v", got, want)
			}
			if !h.store.Exists(state.HeadKey) {
				t.Error("state not rewritten")
			}
		})
	}
}

// tagged builds c1 (v1.0) c2 c3 (v1.1-rc1) c4 (v1.1) c5.
func tagged() *vcs.MockRepository {
	repo := vcs.NewMockRepository(commits("c1")...)
	repo.Tag("v1.0")
	repo.Append(commits("c2", "c3")...)
	repo.Tag("v1.1-rc1")
	repo.Append(commits("c4")...)
	repo.Tag("v1.1")
	repo.Append(commits("c5")...)
	return repo
}

func TestWalker_RunTags(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, tagged())

	if err := h.walker().Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	layout := map[string][]string{
		h.dir("v1.1", "v1.1-rc1"): {"0001-Change-c2.patch", "0002-Change-c3.patch"},
		h.dir("v1.1"):             {"0001-Change-c4.patch"},
		h.dir("HEAD"):             {"0001-Change-c5.patch"},
	}
	for dir, want := range layout {
		if got := patchFiles(t, dir); !reflect.DeepEqual(got, want) {
			t.Errorf("%s: files = %v, want %v", dir, got, want)
		}
	}
	if _, err := os.Stat(h.dir("v1.0")); !os.IsNotExist(err) {
		t.Error("the first tag should only mark the start of the walk")
	}

	latest, err := h.store.LatestTag()
	if err != nil || latest != "v1.1" {
		t.Errorf("LatestTag() = %q, %v; want v1.1", latest, err)
	}
	for _, key := range []string{"v1.1/v1.1-rc1", "v1.1", "HEAD"} {
		if !h.store.Exists(key) {
			t.Errorf("no state recorded for %s", key)
		}
	}
}

func TestWalker_RunTagsIncremental(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, tagged())
	if err := h.walker().Run(ctx); err != nil {
		t.Fatal(err)
	}
	stable := snapshot(t, h.dir("v1.1"))

	h.repo.Append(commits("c6")...)
	h.repo.Tag("v1.2")
	h.repo.Append(commits("c7")...)

	w := h.walker()
	if err := w.Run(ctx); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	if !h.rec.noted("v1.1-rc1 already dumped") {
		t.Errorf("pre-release skip not reported: %v", h.rec.notes)
	}
	if h.rec.noted("v1.1 already dumped") {
		t.Errorf("stable skip should be silent: %v", h.rec.notes)
	}
	if !h.rec.noted("new tag v1.2") {
		t.Errorf("new tag not reported: %v", h.rec.notes)
	}
	if !h.rec.noted("re-dumping HEAD") {
		t.Errorf("HEAD rebuild for the new range start not reported: %v", h.rec.notes)
	}

	if got := snapshot(t, h.dir("v1.1")); !reflect.DeepEqual(got, stable) {
		t.Error("already dumped stable target was modified")
	}
	if got, want := patchFiles(t, h.dir("v1.2")), []string{"0001-Change-c5.patch", "0002-Change-c6.patch"}; !reflect.DeepEqual(got, want) {
		t.Errorf("v1.2 files = %v, want %v", got, want)
	}
	if got, want := patchFiles(t, h.dir("HEAD")), []string{"0001-Change-c7.patch"}; !reflect.DeepEqual(got, want) {
		t.Errorf("HEAD files = %v, want %v", got, want)
	}

	meta := h.tracker.GenerateMetadata("dev", metadata.RunParams{}, nil)
	if meta.Results.TargetsSkipped != 2 || meta.Results.TargetsDumped != 2 || meta.Results.TargetsRedone != 1 {
		t.Errorf("results = %+v", meta.Results)
	}
}

func TestWalker_RunTagsRebuildsDamagedTargets(t *testing.T) {
	tests := []struct {
		name    string
		tamper  func(t *testing.T, h *harness)
		rebuilt []string
	}{
		{
			name: "marker deleted",
			tamper: func(t *testing.T, h *harness) {
				if err := os.Remove(h.dir("v1.1", "0001-Change-c4.patch")); err != nil {
					t.Fatal(err)
				}
			},
			rebuilt: []string{"re-dumping v1.1"},
		},
		{
			name: "marker rewritten",
			tamper: func(t *testing.T, h *harness) {
				path := h.dir("v1.1", "v1.1-rc1", "0002-Change-c3.patch")
				if err := os.WriteFile(path, []byte("commit bogus\n"), 0o644); err != nil {
					t.Fatal(err)
				}
			},
			rebuilt: []string{"re-dumping v1.1/v1.1-rc1"},
		},
		{
			name: "target directory deleted",
			tamper: func(t *testing.T, h *harness) {
				if err := os.RemoveAll(h.dir("v1.1")); err != nil {
					t.Fatal(err)
				}
			},
			rebuilt: []string{"re-dumping v1.1/v1.1-rc1", "re-dumping v1.1:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			h := newHarness(t, tagged())
			if err := h.walker().Run(ctx); err != nil {
				t.Fatal(err)
			}
			tt.tamper(t, h)

			if err := h.walker().Run(ctx); err != nil {
				t.Fatalf("Run() after damage: %v", err)
			}
			for _, note := range tt.rebuilt {
				if !h.rec.noted(note) {
					t.Errorf("missing note %q: %v", note, h.rec.notes)
				}
			}

			layout := map[string][]string{
				h.dir("v1.1", "v1.1-rc1"): {"0001-Change-c2.patch", "0002-Change-c3.patch"},
				h.dir("v1.1"):             {"0001-Change-c4.patch"},
			}
			for dir, want := range layout {
				if got := patchFiles(t, dir); !reflect.DeepEqual(got, want) {
					t.Errorf("%s: files = %v, want %v", dir, got, want)
				}
			}

			// Once rebuilt, the targets are skipped again.
			renders := len(h.repo.RenderCalls)
			if err := h.walker().Run(ctx); err != nil {
				t.Fatal(err)
			}
			if got := len(h.repo.RenderCalls) - renders; got != 0 {
				t.Errorf("third run rendered %d commits, want none", got)
			}
		})
	}
}

func TestWalker_RunTagsNewTagOnHead(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, tagged())
	if err := h.walker().Run(ctx); err != nil {
		t.Fatal(err)
	}

	h.repo.Tag("v1.2")
	if err := h.walker().Run(ctx); err != nil {
		t.Fatalf("Run() after tagging HEAD: %v", err)
	}
	if got, want := patchFiles(t, h.dir("v1.2")), []string{"0001-Change-c5.patch"}; !reflect.DeepEqual(got, want) {
		t.Errorf("v1.2 files = %v, want %v", got, want)
	}
	if got := patchFiles(t, h.dir("HEAD")); len(got) != 0 {
		t.Errorf("HEAD still holds %v", got)
	}
	if h.store.Exists(state.HeadKey) {
		t.Error("stale HEAD state kept")
	}
	if !h.rec.noted("clearing HEAD") {
		t.Errorf("notes = %v", h.rec.notes)
	}

	h.repo.Append(commits("c6")...)
	if err := h.walker().Run(ctx); err != nil {
		t.Fatal(err)
	}
	if got, want := patchFiles(t, h.dir("HEAD")), []string{"0001-Change-c6.patch"}; !reflect.DeepEqual(got, want) {
		t.Errorf("HEAD files = %v, want %v", got, want)
	}
	if h.rec.noted("re-dumping HEAD") {
		t.Errorf("cleared HEAD should be dumped as new: %v", h.rec.notes)
	}
}

func TestWalker_EmptyRange(t *testing.T) {
	repo := vcs.NewMockRepository(commits("c1")...)
	repo.Tag("v1.0")
	repo.Tag("v1.0.1")
	repo.Append(commits("c2")...)
	h := newHarness(t, repo)

	if err := h.walker().Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !h.rec.noted("no commits in v1.0..v1.0.1") {
		t.Errorf("empty range not reported: %v", h.rec.notes)
	}
	if _, err := os.Stat(h.dir("v1.0.1")); !os.IsNotExist(err) {
		t.Error("directory created for an empty range")
	}
	if got := patchFiles(t, h.dir("HEAD")); len(got) != 1 {
		t.Errorf("HEAD files = %v", got)
	}
}

func TestWalker_NoTagsFallsBackToFlat(t *testing.T) {
	h := newHarness(t, vcs.NewMockRepository(commits("c1", "c2")...))
	if err := h.walker().Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := patchFiles(t, h.dir("HEAD")); len(got) != 2 {
		t.Errorf("HEAD files = %v", got)
	}
	if !h.rec.noted("no tags found") {
		t.Errorf("notes = %v", h.rec.notes)
	}
}

func TestWalker_Tags(t *testing.T) {
	repo := vcs.NewMockRepository(commits("c1")...)
	for _, tag := range []string{"v1.10", "v1.9", "v2.0-rc1", "v1.2", "other"} {
		repo.Tag(tag)
	}

	tests := []struct {
		name    string
		opts    WalkOptions
		want    []string
		wantErr bool
	}{
		{"repository order", WalkOptions{}, []string{"v1.10", "v1.9", "v2.0-rc1", "v1.2", "other"}, false},
		{"pattern", WalkOptions{Pattern: "v1.*"}, []string{"v1.10", "v1.9", "v1.2"}, false},
		{"version order", WalkOptions{Pattern: "v*", VersionOrder: true}, []string{"v1.2", "v1.9", "v1.10", "v2.0-rc1"}, false},
		{"bad pattern", WalkOptions{Pattern: "v[1"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, repo)
			h.opts = tt.opts
			got, err := h.walker().Tags(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Tags() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tags() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWalker_ListFailureIsFatal(t *testing.T) {
	repo := tagged()
	repo.ListError = os.ErrPermission
	h := newHarness(t, repo)
	err := h.walker().Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "permission") {
		t.Errorf("Run() error = %v", err)
	}
}
