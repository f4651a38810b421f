// Package tasks orchestrates transfer jobs end to end.
//
// # Core Operation
//
// [Engine.Run] drives one persisted job through its full lifecycle:
//
//  1. Loads the job record and checks it is runnable
//  2. Resolves the exporter and importer from the provider registry
//  3. Walks the source with a [transfer.Copier], importing page by page
//  4. Persists the outcome (pages walked, failed branches, final status)
//
// A job that ran to the end of its walk is complete even when branches
// failed along the way; failed is reserved for jobs that could not run
// at all (unknown provider pair, cancelled context).
//
// # Progress Reporting
//
// Run forwards the copier's non-blocking progress channel, so CLI and
// UI layers can observe the walk without slowing it down.
package tasks
