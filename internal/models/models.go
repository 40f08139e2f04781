// Package models holds the records materialized from the database and the
// inputs accepted by the repositories.
//
// Records are plain values: they are built per query, serialized by the
// caller and discarded.
package models
