// Package http serves the sync API: push, pull, resolve and migrate under
// /sync, plus /version and /metrics.
//
// Every /sync route needs a bearer token; the user id from its subject
// scopes all reads and writes. Push and migrate accept an Idempotency-Key
// so a mobile client can retry them safely. Bodies may be gzip-encoded in
// both directions and every request carries an X-Trace-ID.
package http
