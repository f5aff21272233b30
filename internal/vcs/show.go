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

package vcs

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// ShowDateLayout is the default date format of git show.
const ShowDateLayout = "Mon Jan 2 15:04:05 2006 -0700"

// CommitHeader carries the metadata printed above a commit's diff.
type CommitHeader struct {
	ID          string
	AuthorName  string
	AuthorEmail string
	Date        time.Time
	Message     string
}

// FormatShow lays a commit out the way git show does: the header lines, a
// blank line, the message indented by four spaces, a blank line and the
// diff. The subject therefore lands on line index 4.
func FormatShow(h CommitHeader, diff string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "commit %s\n", h.ID)
	fmt.Fprintf(&b, "Author: %s <%s>\n", h.AuthorName, h.AuthorEmail)
	fmt.Fprintf(&b, "Date:   %s\n", h.Date.Format(ShowDateLayout))
	b.WriteString("\n")

	message := strings.TrimRight(h.Message, "\n")
	for _, line := range strings.Split(message, "\n") {
		if line == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString("    ")
		b.WriteString(line)
		b.WriteString("\n")
	}

	if diff != "" {
		b.WriteString("\n")
		b.WriteString(diff)
		if !strings.HasSuffix(diff, "\n") {
			b.WriteString("\n")
		}
	}
	return b.Bytes()
}
