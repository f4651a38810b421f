// Package server provides HTTP routing, middleware, and the REST surface
// for managing transfer jobs.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally, so
// handlers can register Go 1.22 method-and-wildcard patterns.
//
// # Transfer API
//
// [TransferHandler] exposes job management over JSON:
//
//	POST /transfers             create a job
//	POST /transfers/{id}/start  start a created (or failed) job
//	GET  /transfers/{id}        job status and counters
//	GET  /transfers             list jobs
//	GET  /services              list services able to move a data type
//
// Starting a job is asynchronous: the walk runs in the background and
// the job record tracks its progress.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback used
// by the CLI login flow. When the user runs the auth command a temporary
// HTTP server starts on localhost, handles the callback, and shuts down
// after receiving the token. It validates the state parameter and only
// processes one callback.
package server
