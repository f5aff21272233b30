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
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirseerhq/commit-dump/internal/naming"
)

const (
	// MetaDirName is the directory under the export root holding all state.
	MetaDirName = ".meta"

	// HeadKey is the target key of the branch tip.
	HeadKey = "HEAD"

	dumpHeadFile  = "DUMP_HEAD"
	latestTagFile = "LATEST_TAG"
	stateDirName  = "state"
	stateFileExt  = ".state"
)

// maxLegacyPad bounds the zero-pad variants tried when locating the marker
// file of a DUMP_HEAD written without a recorded digit width.
const maxLegacyPad = 4

// Store reads and writes dump state below one export root.
type Store struct {
	root string
}

// NewStore returns a Store for the export root.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the export root.
func (s *Store) Root() string {
	return s.root
}

// MetaDir returns the directory holding state and marker files.
func (s *Store) MetaDir() string {
	return filepath.Join(s.root, MetaDirName)
}

// StatePath returns the sidecar path for a target key.
func (s *Store) StatePath(key string) string {
	return filepath.Join(s.MetaDir(), stateDirName, url.PathEscape(key)+stateFileExt)
}

func (s *Store) dumpHeadPath() string {
	return filepath.Join(s.MetaDir(), dumpHeadFile)
}

// Exists reports whether a state sidecar has been recorded for key.
func (s *Store) Exists(key string) bool {
	_, err := os.Stat(s.StatePath(key))
	return err == nil
}

// Load reads the state recorded for key.
func (s *Store) Load(key string) (*DumpState, error) {
	st, err := LoadState(s.StatePath(key))
	if err != nil {
		return nil, err
	}
	if st.Target != key {
		return nil, fmt.Errorf("%w: state belongs to target %q", ErrCorrupt, st.Target)
	}
	return st, nil
}

// Save records st as the state of key. For the HEAD target the DUMP_HEAD
// marker is rewritten as well.
func (s *Store) Save(key string, st *DumpState) error {
	st.Target = key
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = time.Now().UTC()
	}
	if err := SaveState(st, s.StatePath(key)); err != nil {
		return fmt.Errorf("failed to save state for %s: %w", key, err)
	}

	if key == HeadKey {
		line := fmt.Sprintf("%s\t%d\n", st.LastCommitID, st.LastOffset())
		if err := writeFileAtomic(s.dumpHeadPath(), []byte(line), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", dumpHeadFile, err)
		}
	}
	return nil
}

// Reinitialize discards everything recorded for key and leaves dir empty of
// patch files. Sub-directories survive because pre-release targets live
// inside the directory of their stable version. It is safe to call when
// neither the state nor dir exist yet.
func (s *Store) Reinitialize(key, dir string) error {
	if err := DeleteState(s.StatePath(key)); err != nil {
		return err
	}
	if key == HeadKey {
		if err := os.Remove(s.dumpHeadPath()); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", dumpHeadFile, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read target directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("failed to clear target directory %s: %w", dir, err)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create target directory %s: %w", dir, err)
	}
	return os.MkdirAll(s.MetaDir(), 0o755)
}

// Inspect checks whether the state of key can be resumed for a range
// starting at rangeStart whose file names use width digits.
func (s *Store) Inspect(key, dir string, width int, rangeStart string) Verdict {
	st, err := s.Load(key)
	switch {
	case errors.Is(err, ErrNotFound):
		if key != HeadKey {
			return missing()
		}
		st, err = s.loadLegacyHead(dir)
		if errors.Is(err, ErrNotFound) {
			return missing()
		}
		if err != nil {
			return inconsistent(err.Error())
		}
	case err != nil:
		return inconsistent(err.Error())
	}

	if st.LastCommitID == "" || st.NextOffset < 2 {
		return inconsistent("state records no written patches")
	}
	if st.DigitWidth != width {
		return inconsistent(fmt.Sprintf("digit width changed from %d to %d", st.DigitWidth, width))
	}
	if !st.legacy && st.LastSeenTag != rangeStart {
		return inconsistent(fmt.Sprintf("range start changed from %q to %q", st.LastSeenTag, rangeStart))
	}

	marker, err := findMarker(dir, naming.Prefix(st.LastOffset(), st.DigitWidth))
	if err != nil {
		return inconsistent(err.Error())
	}
	id, err := markerCommit(marker)
	if err != nil {
		return inconsistent(err.Error())
	}
	if id != st.LastCommitID {
		return inconsistent(fmt.Sprintf("marker %s records commit %s, state records %s",
			filepath.Base(marker), id, st.LastCommitID))
	}
	return consistent(st)
}

// LatestTag returns the newest tag recorded by the previous run, or "".
func (s *Store) LatestTag() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.MetaDir(), latestTagFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read %s: %w", latestTagFile, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SaveLatestTag records the newest tag seen by this run.
func (s *Store) SaveLatestTag(tag string) error {
	return writeFileAtomic(filepath.Join(s.MetaDir(), latestTagFile), []byte(tag+"\n"), 0o644)
}

// loadLegacyHead recovers HEAD progress from a DUMP_HEAD file that has no
// JSON sidecar. The digit width is taken from the marker file found by
// trying each zero-pad variant of the recorded offset.
func (s *Store) loadLegacyHead(dir string) (*DumpState, error) {
	data, err := os.ReadFile(s.dumpHeadPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", dumpHeadFile, err)
	}

	fields := strings.Fields(string(data))
	if len(fields) != 2 {
		return nil, fmt.Errorf("%w: malformed %s", ErrCorrupt, dumpHeadFile)
	}
	lastOffset, err := strconv.Atoi(fields[1])
	if err != nil || lastOffset < 1 {
		return nil, fmt.Errorf("%w: malformed offset %q in %s", ErrCorrupt, fields[1], dumpHeadFile)
	}

	digits := strconv.Itoa(lastOffset)
	for pad := 0; pad <= maxLegacyPad; pad++ {
		prefix := strings.Repeat("0", pad) + digits + "-"
		if _, err := findMarker(dir, prefix); err == nil {
			return &DumpState{
				Target:       HeadKey,
				LastCommitID: fields[0],
				NextOffset:   lastOffset + 1,
				DigitWidth:   len(prefix) - 1,
				legacy:       true,
			}, nil
		}
	}
	return nil, fmt.Errorf("marker patch for offset %d not found", lastOffset)
}

// findMarker returns the patch file in dir whose name starts with prefix.
func findMarker(dir, prefix string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read target directory: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && strings.HasPrefix(name, prefix) && strings.HasSuffix(name, naming.Extension) {
			return filepath.Join(dir, name), nil
		}
	}
	return "", fmt.Errorf("marker patch %s* not found", prefix)
}

// markerCommit returns the commit ID recorded on the first line of a patch
// file ("commit <id>" for git show output).
func markerCommit(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open marker patch: %w", err)
	}
	defer file.Close()

	line, err := bufio.NewReader(file).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("marker patch %s is empty", filepath.Base(path))
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", fmt.Errorf("marker patch %s has no commit header", filepath.Base(path))
	}
	return fields[1], nil
}
