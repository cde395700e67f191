// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"strings"
)

// parseSigilID splits a Matrix identifier of the form
// "<sigil>localpart:server" and validates its structure. kind names
// the identifier in error messages ("room ID", "user ID").
func parseSigilID(raw string, sigil byte, kind string) (localpart, server string, err error) {
	if raw == "" {
		return "", "", fmt.Errorf("empty %s", kind)
	}
	if raw[0] != sigil {
		return "", "", fmt.Errorf("%s must start with '%c': %q", kind, sigil, raw)
	}

	colonIndex := strings.IndexByte(raw[1:], ':')
	if colonIndex < 0 {
		return "", "", fmt.Errorf("%s missing ':server' suffix: %q", kind, raw)
	}
	if colonIndex == 0 {
		return "", "", fmt.Errorf("%s has empty local part: %q", kind, raw)
	}

	server = raw[1+colonIndex+1:]
	if server == "" {
		return "", "", fmt.Errorf("%s has empty server name: %q", kind, raw)
	}
	return raw[1 : 1+colonIndex], server, nil
}
