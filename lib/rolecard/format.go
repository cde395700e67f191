// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rolecard

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/bureau-foundation/rolecall/lib/schema"
)

var (
	markdownInstance goldmark.Markdown
	markdownOnce     sync.Once
)

func getMarkdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownInstance = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdownInstance
}

// Markdown returns the plain-text body: readable as-is, and light
// enough markdown that clients which render it show headings.
func (d Document) Markdown() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "## %s\n", d.Title)
	if d.Description != "" {
		fmt.Fprintf(&builder, "\n%s\n", d.Description)
	}
	for _, section := range d.Sections {
		fmt.Fprintf(&builder, "\n**%s**\n%s\n", section.Name, section.Body)
	}
	fmt.Fprintf(&builder, "\n%s", d.Footer)
	return builder.String()
}

// HTML renders the document through goldmark. Handles and names are
// escaped first so that user IDs containing markdown punctuation show
// literally, and every body line ends in a hard break.
func (d Document) HTML() (string, error) {
	var source strings.Builder
	fmt.Fprintf(&source, "## %s\n\n", escapeMarkdown(d.Title))
	if d.Description != "" {
		fmt.Fprintf(&source, "%s\n\n", hardBreaks(d.Description))
	}
	for _, section := range d.Sections {
		fmt.Fprintf(&source, "### %s\n\n%s\n\n", escapeMarkdown(section.Name), hardBreaks(section.Body))
	}
	fmt.Fprintf(&source, "*%s*\n", escapeMarkdown(d.Footer))

	var output bytes.Buffer
	if err := getMarkdown().Convert([]byte(source.String()), &output); err != nil {
		return "", fmt.Errorf("rolecard: rendering HTML: %w", err)
	}
	return output.String(), nil
}

// Board returns the structured copy carried under schema.RoleBoardKey.
func (d Document) Board() schema.RoleBoardContent {
	sections := make([]schema.RoleBoardSection, len(d.Sections))
	for index, section := range d.Sections {
		sections[index] = schema.RoleBoardSection{Name: section.Name, Body: section.Body}
	}
	return schema.RoleBoardContent{
		Title:       d.Title,
		Description: d.Description,
		Sections:    sections,
		Footer:      d.Footer,
		GeneratedAt: d.GeneratedAt.UnixMilli(),
	}
}

func hardBreaks(text string) string {
	lines := strings.Split(text, "\n")
	for index, line := range lines {
		lines[index] = escapeMarkdown(line)
	}
	return strings.Join(lines, "\\\n")
}

// escapeMarkdown backslash-escapes every ASCII punctuation character,
// which CommonMark defines as always escapable.
func escapeMarkdown(text string) string {
	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range text {
		if r < 0x80 && isASCIIPunct(byte(r)) {
			builder.WriteByte('\\')
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

func isASCIIPunct(c byte) bool {
	return strings.IndexByte("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", c) >= 0
}
