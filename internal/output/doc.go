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

// Package output writes the patch manifest: one NDJSON (Newline Delimited
// JSON) record per exported patch file, so downstream tools can pick up
// what a run produced without rescanning the export tree.
//
// The manifest file is opened for appending. Successive incremental runs
// extend the same manifest and each record is flushed as it is written.
//
// Example usage:
//
//	w, err := output.NewFileWriter("patches.ndjson")
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	err = w.Write(output.PatchRecord{Target: "v5.10", Offset: 7, File: "0007-Fix-a-weird-bug.patch"})
package output
