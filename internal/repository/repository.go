// Package repository handles all interactions with the database.
//
// It contains the SQL for users, properties, reservations and reviews and
// the methods that run it, abstracting SQL away from the service layer.
//
// Conventions shared by every method:
//   - each statement runs under the caller's context plus a per-query timeout
//   - driver errors are converted by sqlerr.HandleError into *errs.Error
//   - lookups of a single row return nil, nil when the row does not exist
//   - listings return an empty, non-nil slice when nothing matches
package repository
