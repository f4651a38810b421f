// Package providers contains the service adapters that plug into the
// transfer engine, plus the registry that resolves them.
//
// Each adapter implements [transfer.Exporter] or [transfer.Importer] for
// one service and data type pair:
//
//   - SmugMug: photo exporter (albums, then photos per album)
//   - Imgur: photo importer (album creation, then uploads)
//   - Google Calendar: calendar exporter (calendars, then events)
//
// Exporters encode their position in the walk as the page token: the
// empty token means "first listing page", and continuation tokens carry
// whatever the upstream API hands back (a next-page URI for SmugMug, an
// opaque pageToken for Google Calendar). Importers route every durable
// write through the job's [transfer.DataCache] so a retried page never
// creates the same artifact twice.
//
// The [Registry] maps (service, data type) pairs to adapters. Lookups of
// unknown pairs return [shared.ErrProviderNotFound].
package providers
