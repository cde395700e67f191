// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rolecard

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bureau-foundation/rolecall/lib/roster"
)

// MaxSectionBody is the largest section body, in runes, a board may
// carry.
const MaxSectionBody = 1000

const (
	ellipsis = "..."

	emptyBucketBody = "No members in this role (or members are in a higher tracked role)."

	noRolesName = "No Trackable Roles"
	noRolesBody = "There are no roles to display or no members in any roles."

	dynamicNote = "No specific roles are configured for tracking. Displaying all roles with members."

	footerLayout = "2006-01-02 15:04:05 UTC"
)

// Document is a rendered role board.
type Document struct {
	Title       string
	Description string
	Sections    []Section
	Footer      string
	GeneratedAt time.Time
}

// Section is one role's block on the board.
type Section struct {
	Name string
	Body string
}

// Render turns a snapshot into a document.
func Render(snapshot roster.Snapshot, title string) Document {
	generatedAt := snapshot.TakenAt.UTC()
	document := Document{
		Title:       title,
		Description: describe(snapshot),
		Footer:      "Last updated: " + generatedAt.Format(footerLayout),
		GeneratedAt: generatedAt,
	}

	if len(snapshot.Buckets) == 0 {
		document.Sections = []Section{{Name: noRolesName, Body: noRolesBody}}
		return document
	}

	document.Sections = make([]Section, 0, len(snapshot.Buckets))
	for _, bucket := range snapshot.Buckets {
		name := bucket.Role.Name
		if name == "" {
			name = bucket.Role.ID
		}
		body := emptyBucketBody
		if len(bucket.Handles) > 0 {
			body = Truncate(strings.Join(bucket.Handles, "\n"))
		}
		document.Sections = append(document.Sections, Section{
			Name: fmt.Sprintf("%s (%d members)", name, len(bucket.Handles)),
			Body: body,
		})
	}
	return document
}

func describe(snapshot roster.Snapshot) string {
	var lines []string
	if snapshot.Dynamic {
		lines = append(lines, dynamicNote)
	}
	for _, roleID := range snapshot.MissingRoleIDs {
		lines = append(lines, fmt.Sprintf("Role Not Found (ID: %s)", roleID))
	}
	return strings.Join(lines, "\n")
}

// Truncate caps body at MaxSectionBody runes. A capped body is exactly
// MaxSectionBody runes long and ends in "...".
func Truncate(body string) string {
	if utf8.RuneCountInString(body) <= MaxSectionBody {
		return body
	}
	keep := MaxSectionBody - len(ellipsis)
	for index := range body {
		if keep == 0 {
			return body[:index] + ellipsis
		}
		keep--
	}
	return body
}
