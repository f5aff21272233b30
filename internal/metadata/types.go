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

// Package metadata types define the structures used for tracking and
// persisting information about dump runs.
package metadata

import (
	"time"
)

// RunMetadata is the record of a single dump run.
type RunMetadata struct {
	ToolVersion string     `json:"tool_version"`
	RunID       string     `json:"run_id"`
	Parameters  RunParams  `json:"parameters"`
	Results     RunResults `json:"results"`
	Targets     []Target   `json:"targets"`
	PreviousRun *RunRef    `json:"previous_run,omitempty"`
}

// RunParams captures the effective settings of a run.
type RunParams struct {
	Repository string `json:"repository"`
	Backend    string `json:"backend"`
	Mode       string `json:"mode"`
	OutputDir  string `json:"output_dir"`
	TagPattern string `json:"tag_pattern,omitempty"`
	TagOrder   string `json:"tag_order,omitempty"`
}

// RunResults summarises what a run did.
type RunResults struct {
	TargetsDumped  int       `json:"targets_dumped"`
	TargetsSkipped int       `json:"targets_skipped"`
	TargetsRedone  int       `json:"targets_redone"`
	PatchesWritten int       `json:"patches_written"`
	BytesWritten   int64     `json:"bytes_written"`
	Duration       string    `json:"duration"`
	StartedAt      time.Time `json:"started_at"`
	CompletedAt    time.Time `json:"completed_at"`
}

// Target records the work done on one target directory.
type Target struct {
	Key         string `json:"key"`
	Range       string `json:"range"`
	FirstOffset int    `json:"first_offset"`
	Written     int    `json:"written"`
	Redo        string `json:"redo,omitempty"`
}

// RunRef links a run to the one before it.
type RunRef struct {
	RunID       string    `json:"run_id"`
	CompletedAt time.Time `json:"completed_at"`
}
