// Package app wires the waste lookup service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, config file, .env, environment)
//	2. Initialize logging and OpenTelemetry
//	3. Resolve the data source (a file, or the newest export in a directory)
//	   and build the collection service
//	4. Optionally start watching the source file
//	5. Set up middleware, handlers and the HTTP server
//
// # Usage
//
//	app, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return app.Run()
//
// # Graceful Shutdown
//
// Run handles SIGINT and SIGTERM: in-flight requests complete within the
// shutdown timeout, the source watcher stops and telemetry is flushed.
// Initialization errors are returned to the caller; the package never
// calls os.Exit.
package app
