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

//go:build linux

package naming

import "golang.org/x/sys/unix"

// MaxNameLength reports the maximum file name component length of the
// filesystem holding dir. It falls back to DefaultMaxNameLength when the
// filesystem cannot be queried.
func MaxNameLength(dir string) int {
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil || st.Namelen <= 0 {
		return DefaultMaxNameLength
	}
	return int(st.Namelen)
}
