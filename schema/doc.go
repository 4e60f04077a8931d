// Package schema describes the fixed per-table layout the engine is
// constructed with: ordered fixed-width columns and a designated
// primary-key column.
package schema
