// Package http implements the HTTP handlers of the waste lookup service.
// Handlers stay thin: they parse and validate request parameters, call the
// collection service and render the result. Business rules live in the
// collection package.
//
// # Routes
//
// Mounted under /api by the application:
//
//	GET  /health, /health/ready, /health/live, /version
//	GET  /collections/{chip}            pickups, totals and optional estimate
//	GET  /collections/{chip}/span       available date span
//	GET  /collections/{chip}/export.csv pickup listing as CSV
//	GET  /admin/cache                   cache statistics (admin token)
//	POST /admin/cache/invalidate        drop the cached dataset (admin token)
//	POST /admin/cache/reload            drop and load again (admin token)
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details and are produced by
// errors.ErrorHandler:
//
//	{
//	    "type": "/errors/collection/chip-not-found",
//	    "title": "Chip Not Found",
//	    "status": 404,
//	    "detail": "No collection records exist for this chip",
//	    "instance": "/api/collections/123",
//	    "message": "Tento čip sa v dátach nenašiel."
//	}
//
// # Testing
//
// Handlers are tested with httptest against a real collection service
// backed by an in-memory source, or a testify mock where only the
// interaction matters.
package http
