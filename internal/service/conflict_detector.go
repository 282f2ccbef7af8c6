// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"time"

	"github.com/MKhiriev/go-trip-keeper/models"
)

// Verdict is what the conflict detector decided for one change.
type Verdict int

const (
	// NoConflict means the server has no row with the change's id.
	NoConflict Verdict = iota
	// Conflict means the server row must not be overwritten by the change.
	Conflict
	// ProceedAllowed means the server row exists and the change may replace it.
	ProceedAllowed
)

func (v Verdict) String() string {
	switch v {
	case NoConflict:
		return "no_conflict"
	case Conflict:
		return "conflict"
	case ProceedAllowed:
		return "proceed_allowed"
	}
	return "unknown"
}

// DetectConflict compares the client's timestamp of a change with the
// server's timestamp of the same row. A nil serverUpdatedAt means the row
// does not exist.
//
// The later write wins and the client wins exact ties. A create aimed at an
// existing row is always a conflict: the id is already taken.
func DetectConflict(action models.Action, localUpdatedAt, serverUpdatedAt *time.Time) Verdict {
	if serverUpdatedAt == nil {
		return NoConflict
	}

	if action == models.ActionCreate || localUpdatedAt == nil {
		return Conflict
	}

	if serverUpdatedAt.After(*localUpdatedAt) {
		return Conflict
	}

	return ProceedAllowed
}
