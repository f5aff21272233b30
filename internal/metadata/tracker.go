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

// Package metadata records what each dump run did: which targets were
// dumped, skipped or rebuilt, how many patches were written and how long
// it took. The record of the latest run is kept as JSON next to the dump
// state, in <root>/.meta/last-run.json, and links to the run before it.
package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// FileName is the name of the run record inside the meta directory.
const FileName = "last-run.json"

// Tracker collects statistics during a run. Create one at the start of a
// run and pass it to the components that do the work.
type Tracker struct {
	startTime time.Time
	results   RunResults
	targets   []Target
}

// New creates a new tracker and initializes it with the current time.
func New() *Tracker {
	return &Tracker{
		startTime: time.Now(),
	}
}

// RecordPatch counts one written patch file of size bytes.
func (t *Tracker) RecordPatch(size int) {
	t.results.PatchesWritten++
	t.results.BytesWritten += int64(size)
}

// RecordTarget records a target that had new commits. redo is the reason
// the target was rebuilt from offset 1, or empty.
func (t *Tracker) RecordTarget(key, rangeSpec string, firstOffset, written int, redo string) {
	t.results.TargetsDumped++
	if redo != "" {
		t.results.TargetsRedone++
	}
	t.targets = append(t.targets, Target{
		Key:         key,
		Range:       rangeSpec,
		FirstOffset: firstOffset,
		Written:     written,
		Redo:        redo,
	})
}

// RecordSkip counts a target left alone because it was already dumped.
func (t *Tracker) RecordSkip() {
	t.results.TargetsSkipped++
}

// GenerateMetadata creates the run record. Call it once the run is over.
func (t *Tracker) GenerateMetadata(toolVersion string, params RunParams, previous *RunRef) *RunMetadata {
	completedAt := time.Now()

	results := t.results
	results.StartedAt = t.startTime
	results.CompletedAt = completedAt
	results.Duration = completedAt.Sub(t.startTime).String()

	targets := t.targets
	if targets == nil {
		targets = []Target{}
	}

	return &RunMetadata{
		ToolVersion: toolVersion,
		RunID:       fmt.Sprintf("run-%d", t.startTime.UnixNano()),
		Parameters:  params,
		Results:     results,
		Targets:     targets,
		PreviousRun: previous,
	}
}

// SaveMetadata writes the run record to metaDir, replacing the previous
// one. The file is written to a temporary name and renamed into place.
func SaveMetadata(metadata *RunMetadata, metaDir string) error {
	if err := os.MkdirAll(metaDir, 0o755); err != nil {
		return fmt.Errorf("failed to create meta directory: %w", err)
	}

	path := filepath.Join(metaDir, FileName)
	tmpFile := path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return fmt.Errorf("failed to create metadata file: %w", err)
	}

	if err := WriteMetadataToWriter(metadata, file); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to close metadata file: %w", err)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		return fmt.Errorf("failed to save metadata file: %w", err)
	}
	return nil
}

// LoadMetadata reads the record of the previous run from metaDir.
// Returns nil without error if no run has been recorded.
func LoadMetadata(metaDir string) (*RunMetadata, error) {
	file, err := os.Open(filepath.Join(metaDir, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open metadata file: %w", err)
	}
	defer file.Close()

	var metadata RunMetadata
	if err := json.NewDecoder(file).Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return &metadata, nil
}

// Ref returns the link a following run stores as its PreviousRun.
func (m *RunMetadata) Ref() *RunRef {
	if m == nil {
		return nil
	}
	return &RunRef{RunID: m.RunID, CompletedAt: m.Results.CompletedAt}
}

// WriteMetadataToWriter serializes metadata to indented JSON.
func WriteMetadataToWriter(metadata *RunMetadata, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}
