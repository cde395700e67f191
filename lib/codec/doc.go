// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides rolecall's CBOR encoding configuration.
//
// rolecall uses JSON where it talks to the outside world (the Matrix
// client-server API, values in the config store) and CBOR for its own
// administrative socket protocol between the rolecall CLI and the
// running service. This package holds the shared CBOR modes so the
// client and server encode identically.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For sockets:
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
package codec
