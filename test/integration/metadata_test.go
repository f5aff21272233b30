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

package integration

import (
	"path/filepath"
	"testing"

	"github.com/sirseerhq/commit-dump/internal/metadata"
	"github.com/sirseerhq/commit-dump/test/testutil"
)

func TestMetadata_LastRun(t *testing.T) {
	repo := testutil.NewGitRepo(t)
	repo.Commits("One", "Two")
	out := t.TempDir()

	testutil.AssertCLISuccess(t, testutil.RunCLI(t, dumpArgs(repo, "gogit", out, "--mode", "flat"), nil))

	path := filepath.Join(out, ".meta", metadata.FileName)
	var first metadata.RunMetadata
	testutil.ReadJSON(t, path, &first)

	if first.Parameters.Backend != "gogit" || first.Parameters.Mode != "flat" || first.Parameters.Repository != repo.Dir {
		t.Errorf("parameters = %+v", first.Parameters)
	}
	if first.Results.PatchesWritten != 2 || first.Results.TargetsDumped != 1 || first.Results.BytesWritten == 0 {
		t.Errorf("results = %+v", first.Results)
	}
	if len(first.Targets) != 1 || first.Targets[0].Key != "HEAD" || first.Targets[0].FirstOffset != 1 {
		t.Errorf("targets = %+v", first.Targets)
	}
	if first.PreviousRun != nil {
		t.Errorf("first run links to %+v", first.PreviousRun)
	}

	repo.Commit("Three")
	testutil.AssertCLISuccess(t, testutil.RunCLI(t, dumpArgs(repo, "gogit", out, "--mode", "flat"), nil))

	var second metadata.RunMetadata
	testutil.ReadJSON(t, path, &second)
	if second.PreviousRun == nil || second.PreviousRun.RunID != first.RunID {
		t.Errorf("PreviousRun = %+v, want %s", second.PreviousRun, first.RunID)
	}
	if len(second.Targets) != 1 || second.Targets[0].FirstOffset != 3 || second.Targets[0].Written != 1 {
		t.Errorf("targets = %+v", second.Targets)
	}
}

func TestMetadata_Manifest(t *testing.T) {
	repo := testutil.NewGitRepo(t)
	repo.Commits("Add parser", "Fix parser")
	out := t.TempDir()
	manifest := filepath.Join(t.TempDir(), "patches.ndjson")

	args := dumpArgs(repo, "git", out, "--mode", "flat", "--manifest", manifest)
	testutil.AssertCLISuccess(t, testutil.RunCLI(t, args, nil))

	records := testutil.ReadNDJSON(t, manifest)
	if len(records) != 2 {
		t.Fatalf("manifest has %d records, want 2", len(records))
	}
	second := records[1]
	if second["target"] != "HEAD" || second["subject"] != "Fix parser" || second["offset"] != float64(2) {
		t.Errorf("record = %v", second)
	}
	if second["file"] != filepath.Join("HEAD", "0002-Fix-parser.patch") {
		t.Errorf("file = %v", second["file"])
	}

	// The manifest is appended to across runs.
	repo.Commit("Document parser")
	testutil.AssertCLISuccess(t, testutil.RunCLI(t, args, nil))
	if records := testutil.ReadNDJSON(t, manifest); len(records) != 3 {
		t.Errorf("manifest has %d records after the second run, want 3", len(records))
	}
}
