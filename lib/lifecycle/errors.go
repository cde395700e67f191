// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lifecycle

import "errors"

// Host errors. Host implementations wrap these; any other error is
// transient.
var (
	ErrNotFound  = errors.New("artifact not found")
	ErrForbidden = errors.New("artifact access forbidden")
)

// Manager errors.
var (
	// ErrUnbound means no board has been placed.
	ErrUnbound = errors.New("no board placed")

	// ErrLost means the board was found missing and its pointer has
	// been cleared.
	ErrLost = errors.New("board lost")
)

// Outcome classifies the result of a lifecycle operation or pass.
type Outcome string

// Outcomes.
const (
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnbound   Outcome = "unbound"
	OutcomeLost      Outcome = "lost"
	OutcomeForbidden Outcome = "forbidden"
	OutcomeTransient Outcome = "transient"
)

// Classify maps an error from EnsureLive or Push to an Outcome.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeUpdated
	case errors.Is(err, ErrUnbound):
		return OutcomeUnbound
	case errors.Is(err, ErrLost):
		return OutcomeLost
	case errors.Is(err, ErrForbidden):
		return OutcomeForbidden
	default:
		return OutcomeTransient
	}
}
