// Package transfer implements the copy engine driving a migration between two services.
//
// # Core Operation
//
// The [Copier] walks the full resource tree exposed by an [Exporter] and
// feeds every exported page to an [Importer]:
//
//  1. Export one page, retrying per the [RetryPolicy] classification
//  2. Import the page's payload
//  3. Follow the page's [ContinuationData]: next page first, then the
//     children discovered on this page, depth-first
//
// A resource's pages are always drained before any of its children start,
// so parents exist on the destination side before their children arrive.
//
// # Partial Failure
//
// A branch that permanently fails (fatal classification, exhausted retries,
// or an import error) is abandoned without touching its siblings or
// ancestors. [Copier.Copy] therefore has no job-level error for branch
// failures; the [CopyResult] aggregate reports them instead.
//
// # Idempotent Imports
//
// Importers route every side-effecting step through the job's [DataCache],
// which guarantees at-most-once execution per key and exposes earlier
// results (e.g. the destination ID created for a source album) to later
// steps. This is what makes retried or resumed imports safe to repeat.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// The [ProgressUpdate] struct contains phase, step counters, messages, and
// optional data for advanced UI rendering. Updates use select with default
// to prevent blocking.
package transfer
