// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package roster computes which members belong under which role on the
// role board.
//
// A [Roster] is a point-in-time read of a room's roles and joined
// members, produced by a [Source] (the Matrix adapter in lib/roomhost,
// or a JSONC fixture via [ReadFile]). [Build] turns a roster and the
// configured tracked-role IDs into a [Snapshot]:
//
//   - With no tracked roles, every role holding at least one member is
//     trackable, and the snapshot is marked Dynamic.
//   - Each member lands in exactly one bucket: the highest-ranked
//     trackable role they hold. Roles are totally ordered by rank
//     descending, then role ID ascending.
//   - Trackable roles nobody lands in still get an empty bucket.
//   - Tracked IDs the roster does not define are reported in
//     MissingRoleIDs and get no bucket.
//
// Build is pure: the same roster and tracked set always produce the
// same snapshot, including TakenAt, which is copied from the roster.
package roster
