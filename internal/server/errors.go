// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "errors"

var (
	// ErrNoHTTPHandler means NewServer got no HTTP handler to serve.
	ErrNoHTTPHandler = errors.New("sync server needs an HTTP handler")
	// ErrNoHTTPAddress means the server config has no listen address.
	ErrNoHTTPAddress = errors.New("sync server needs a listen address")
)
