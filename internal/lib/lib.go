// Package lib holds helpers that do not belong to a single layer.
//
// Subpackage utils carries password hashing and JSON output shared by the
// services and the dbcheck command.
package lib
