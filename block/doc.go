// Package block implements the byte-level tuple storage unit of the
// engine: fixed-capacity columnar blocks and the table that owns them.
//
// A Block lays rows out column-major inside one flat byte arena, sized
// at construction from the schema's fixed column widths. Null tracking
// uses one Roaring bitmap per column, and a separate liveness bitmap
// records which slots hold live rows at all. Deleted slots are
// tombstoned and never reused; compaction is out of scope.
package block
