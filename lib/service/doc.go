// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides the administrative transport of the
// rolecall daemon.
//
// [SocketServer] serves a CBOR request-response protocol on a Unix
// socket: each connection carries exactly one request and one
// response. Requests are CBOR maps with an "action" field naming the
// registered [ActionFunc]; responses are the [Response] envelope.
// [ServiceClient] is the matching client used by the rolecall CLI.
//
// [HTTPServer] runs an http.Handler on a TCP listener with graceful
// shutdown. The daemon uses it for the Prometheus scrape endpoint
// built by [NewMetricsHandler].
//
// Access control is the socket file's permissions: anyone who can
// connect to the socket can administer the board.
package service
