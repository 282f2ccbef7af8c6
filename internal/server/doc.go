// Package server runs the HTTP transport of the sync server.
//
// It handles startup, OS signals and graceful shutdown: in-flight pushes
// and migrations are given time to finish before the process exits.
package server
