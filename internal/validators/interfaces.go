// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks client payloads at the boundary, before any of
// them reaches the sync engine or the migration importer.
//
// A failed check is returned as one of the package's sentinel errors wrapped
// with the offending field, so callers can match with errors.Is and still
// report a precise message.
package validators

import "context"

// Validator validates arbitrary input values.
type Validator interface {

	// Validate validates the provided input and optionally
	// restricts validation to specific named fields.
	Validate(context.Context, any, ...string) error
}
