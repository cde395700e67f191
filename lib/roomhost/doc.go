// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package roomhost adapts a Matrix session to the reconciler's two
// external collaborators.
//
// [Host] implements lifecycle.Host. The board is an m.notice posted by
// the service account, carrying the markdown body, an HTML
// formatted_body, and a structured copy under schema.RoleBoardKey.
// Edits are m.replace relations; deletion is a redaction. M_NOT_FOUND
// and a redacted event both map to lifecycle.ErrNotFound, and
// M_FORBIDDEN maps to lifecycle.ErrForbidden.
//
// [RosterSource] implements roster.Source by reading one room's
// m.bureau.role state events and its joined members.
package roomhost
