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

// Package state persists per-target dump progress so that repeated runs
// only export commits added since the previous run.
//
// Every export target (a directory under the export root such as "HEAD",
// "v5.10" or "v5.10/v5.10-rc3") has a sidecar state file under
// <root>/.meta/state/. State files are JSON, carry a SHA-256 checksum and a
// schema version, and are written atomically with a write-to-temp-and-rename
// pattern. The HEAD target additionally mirrors its progress into the
// plain-text <root>/.meta/DUMP_HEAD file:
//
//	<commitID>\t<lastOffset>\n
//
// State is never repaired in place. Store.Inspect cross-checks the sidecar
// against the newest patch file of the target and returns a Verdict; any
// inconsistency is answered by Store.Reinitialize, which empties the target
// so that it is exported again from offset 1.
package state
