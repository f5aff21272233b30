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

package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// Compile-time check that Writer implements RecordWriter
var _ RecordWriter = (*Writer)(nil)

func TestWriter_Write(t *testing.T) {
	when := time.Date(2021, 2, 14, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		records []PatchRecord
		want    []string
	}{
		{
			name: "single record",
			records: []PatchRecord{
				{Target: "v5.10", Range: "v5.9..v5.10", Offset: 7, CommitID: "abc", Subject: "Fix a weird bug", File: "0007-Fix-a-weird-bug.patch", Bytes: 120, WrittenAt: when},
			},
			want: []string{
				`{"target":"v5.10","range":"v5.9..v5.10","offset":7,"commit_id":"abc","subject":"Fix a weird bug","file":"0007-Fix-a-weird-bug.patch","bytes":120,"written_at":"2021-02-14T12:00:00Z"}`,
			},
		},
		{
			name: "subject with markup is not escaped",
			records: []PatchRecord{
				{Target: "HEAD", Range: "HEAD", Offset: 1, Subject: "<net> & friends", File: "0001-net-friends.patch", WrittenAt: when},
			},
			want: []string{
				`{"target":"HEAD","range":"HEAD","offset":1,"commit_id":"","subject":"<net> & friends","file":"0001-net-friends.patch","bytes":0,"written_at":"2021-02-14T12:00:00Z"}`,
			},
		},
		{
			name:    "empty records",
			records: nil,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			writer := NewWriter(&buf)

			for _, record := range tt.records {
				if err := writer.Write(record); err != nil {
					t.Fatalf("Write failed: %v", err)
				}
			}

			if writer.Count() != len(tt.records) {
				t.Errorf("Count mismatch: got %d, want %d", writer.Count(), len(tt.records))
			}

			output := strings.TrimSpace(buf.String())
			if output == "" && len(tt.want) == 0 {
				return
			}

			lines := strings.Split(output, "\n")
			if len(lines) != len(tt.want) {
				t.Fatalf("Line count mismatch: got %d, want %d", len(lines), len(tt.want))
			}
			for i, line := range lines {
				if line != tt.want[i] {
					t.Errorf("Line %d mismatch:\ngot:  %s\nwant: %s", i, line, tt.want[i])
				}
			}
		})
	}
}

func TestWriter_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(&buf)

	numGoroutines := 10
	recordsPerGoroutine := 50

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < recordsPerGoroutine; j++ {
				if err := writer.Write(PatchRecord{Target: "HEAD", Offset: id*recordsPerGoroutine + j}); err != nil {
					t.Errorf("Write failed: %v", err)
				}
			}
		}(i)
	}
	wg.Wait()

	if got, want := writer.Count(), numGoroutines*recordsPerGoroutine; got != want {
		t.Errorf("Count = %d, want %d", got, want)
	}

	scanner := bufio.NewScanner(&buf)
	lines := 0
	for scanner.Scan() {
		var rec PatchRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", lines, err)
		}
		lines++
	}
	if lines != numGoroutines*recordsPerGoroutine {
		t.Errorf("got %d lines", lines)
	}
}

func TestNewFileWriter_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "manifest.ndjson")

	for run := 1; run <= 2; run++ {
		w, err := NewFileWriter(path)
		if err != nil {
			t.Fatalf("NewFileWriter() error = %v", err)
		}
		if err := w.Write(PatchRecord{Target: "HEAD", Offset: run}); err != nil {
			t.Fatal(err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if err := w.Close(); err != nil {
			t.Errorf("second Close() error = %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("manifest has %d lines after two runs, want 2:\n%s", len(lines), data)
	}
	var second PatchRecord
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatal(err)
	}
	if second.Offset != 2 {
		t.Errorf("second record offset = %d, want 2", second.Offset)
	}
}

func TestNewFileWriter_Error(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewFileWriter(dir); err == nil {
		t.Error("expected error when the manifest path is a directory")
	}
}
