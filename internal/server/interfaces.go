package server

// Server is the sync server process: RunServer blocks until a stop signal
// and Shutdown drains in-flight pushes and migrations.
type Server interface {
	RunServer()
	Shutdown()
}
