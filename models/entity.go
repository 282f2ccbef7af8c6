// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// EntityType names one of the synchronizable record kinds.
type EntityType string

// Action names the kind of mutation a client recorded while offline.
type Action string

// Resolution is the side a user picked for a reported conflict.
type Resolution string

const (
	EntityTrip        EntityType = "trip"
	EntityDestination EntityType = "destination"
	EntityExpense     EntityType = "expense"
)

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

const (
	ResolutionKeepLocal  Resolution = "keep_local"
	ResolutionKeepServer Resolution = "keep_server"
)

// EntityTypes lists every synchronizable entity type in parent-first order.
// Snapshots and change feeds are emitted in this order so that a client can
// apply them without dangling references.
var EntityTypes = []EntityType{EntityTrip, EntityDestination, EntityExpense}

// Valid reports whether e is a known entity type.
func (e EntityType) Valid() bool {
	switch e {
	case EntityTrip, EntityDestination, EntityExpense:
		return true
	}
	return false
}

func (e EntityType) String() string {
	return string(e)
}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

func (a Action) String() string {
	return string(a)
}

// Valid reports whether r is a known resolution.
func (r Resolution) Valid() bool {
	return r == ResolutionKeepLocal || r == ResolutionKeepServer
}
