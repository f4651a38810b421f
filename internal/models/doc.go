// Package models defines domain entities and persistence interfaces for the portage transfer service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): payload structs carried from an exporter to an importer
//   - [PhotosPayload] : Photo albums and photos exported on one page
//   - [CalendarPayload] : Calendars and events exported on one page
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [TransferJob] : One requested migration, tracking state and walk counters
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
