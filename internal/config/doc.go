// Package config provides configuration loading, merging, and validation
// facilities for the sync server and the sync client.
//
// Configuration is assembled from multiple sources; the first source that
// sets a field wins:
//  1. Environment variables
//  2. Command-line flags (server only)
//  3. JSON config file
//  4. Built-in defaults
//
// The main entry points are [GetStructuredConfig] for the server and
// [GetClientConfig] for the client binary.
package config
