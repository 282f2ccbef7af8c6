// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Change is one mutation recorded by a client while offline, or one server
// row streamed back to the client.
//
// Data holds the entity fields keyed by their camelCase wire names. For
// updates only the present keys are applied; for deletes it may be empty.
type Change struct {
	EntityType     EntityType     `json:"entityType" validate:"entity_type"`
	EntityID       string         `json:"entityId" validate:"required,max=64"`
	Action         Action         `json:"action" validate:"sync_action"`
	Data           map[string]any `json:"data"`
	LocalUpdatedAt time.Time      `json:"localUpdatedAt" validate:"required"`
}

// SyncBatch is the body of a push. LastSyncedAt is the client's watermark
// from its previous successful sync; when present the response also carries
// every server row modified after it.
type SyncBatch struct {
	Changes      []Change   `json:"changes" validate:"dive"`
	LastSyncedAt *time.Time `json:"lastSyncedAt,omitempty"`
}

// Conflict reports a change the server refused because its own copy of the
// row is newer than the client's, or because a create collided with an
// existing id.
type Conflict struct {
	EntityType      EntityType     `json:"entityType"`
	EntityID        string         `json:"entityId"`
	LocalData       map[string]any `json:"localData"`
	ServerData      map[string]any `json:"serverData"`
	LocalUpdatedAt  time.Time      `json:"localUpdatedAt"`
	ServerUpdatedAt time.Time      `json:"serverUpdatedAt"`
}

// SyncResult is returned by both push and pull.
//
// Applied holds each entity id at most once, in the order it was first
// applied. SyncedAt is the server clock at the end of the call and becomes
// the client's next watermark.
type SyncResult struct {
	Applied       []string   `json:"applied"`
	Conflicts     []Conflict `json:"conflicts"`
	ServerChanges []Change   `json:"serverChanges"`
	SyncedAt      time.Time  `json:"syncedAt"`
}

// NewSyncResult returns a result whose collections encode as empty JSON
// arrays rather than null.
func NewSyncResult() SyncResult {
	return SyncResult{
		Applied:       make([]string, 0),
		Conflicts:     make([]Conflict, 0),
		ServerChanges: make([]Change, 0),
	}
}

// ResolveRequest acknowledges a conflict the client has settled locally.
type ResolveRequest struct {
	EntityType EntityType `json:"entityType" validate:"entity_type"`
	EntityID   string     `json:"entityId" validate:"required,max=64"`
	Resolution Resolution `json:"resolution" validate:"resolution"`
}

// ResolveResult is the acknowledgement sent back for a [ResolveRequest].
type ResolveResult struct {
	Message string `json:"message"`
}

// ChangeOutcome is what processing a single [Change] produced. A change that
// was neither applied nor conflicted was silently rejected: its target row
// is missing or belongs to somebody else.
type ChangeOutcome struct {
	Success  bool
	Conflict *Conflict
}
