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

package state

import (
	"errors"
	"time"
)

// CurrentVersion is the current state schema version.
// Increment this when making breaking changes to the DumpState structure.
const CurrentVersion = 1

var (
	// ErrNotFound is returned when no state has been recorded for a target.
	ErrNotFound = errors.New("no dump state recorded")

	// ErrCorrupt is returned when a state file exists but cannot be trusted.
	ErrCorrupt = errors.New("dump state is corrupted")
)

// DumpState represents the persisted progress of one export target.
type DumpState struct {
	// Version indicates the schema version of this state file.
	Version int `json:"version"`

	// Checksum is the SHA256 hash of the state content (excluding this field).
	// Used to detect corruption or tampering.
	Checksum string `json:"checksum"`

	// Target is the target key, e.g. "HEAD" or "v5.10/v5.10-rc3".
	Target string `json:"target"`

	// LastCommitID is the commit written to the newest patch file.
	LastCommitID string `json:"last_commit_id"`

	// NextOffset is one more than the number of patch files written.
	NextOffset int `json:"next_offset"`

	// DigitWidth is the zero-pad width used for every file name of the target.
	DigitWidth int `json:"digit_width"`

	// LastSeenTag is the start of the revision range the target was dumped
	// against. Empty for ranges starting at the beginning of history.
	LastSeenTag string `json:"last_seen_tag"`

	// UpdatedAt records when the batch that produced this state completed.
	UpdatedAt time.Time `json:"updated_at"`

	// legacy is set when the state was recovered from DUMP_HEAD alone and
	// the range start is therefore unknown.
	legacy bool
}

// LastOffset returns the offset of the newest patch file.
func (s *DumpState) LastOffset() int {
	return s.NextOffset - 1
}

// Verdict is the outcome of inspecting a target's state.
type Verdict struct {
	// State is set when the state is consistent.
	State *DumpState

	// Reason explains why the state cannot be used. Empty when consistent.
	Reason string

	// Missing is true when no state was ever recorded for the target.
	Missing bool
}

// Consistent reports whether the inspected state can be resumed from.
func (v Verdict) Consistent() bool {
	return v.State != nil && v.Reason == ""
}

func consistent(s *DumpState) Verdict {
	return Verdict{State: s}
}

func inconsistent(reason string) Verdict {
	return Verdict{Reason: reason}
}

func missing() Verdict {
	return Verdict{Missing: true, Reason: "no previous dump state"}
}
