// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides validated, immutable value types for the Matrix
// identifiers rolecall passes around: room IDs (where the role board
// lives and where the roster is read from), event IDs (the role board
// message itself), and user IDs (roster members).
//
// Identifiers arrive from the homeserver, the config store, or an
// operator's command line and are parsed into these types at the
// boundary. Inside the service they are never re-validated.
//
// JSON and CBOR marshaling use the canonical string form via
// encoding.TextMarshaler. An empty string unmarshals to the zero value,
// which lets optional identifiers round-trip through persisted config.
package ref
