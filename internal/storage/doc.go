// Package storage persists the merged settings record between runs and keeps
// an append-only log of runs.
//
// Drivers:
//   - "file": <path>.json record and <path>.runs.jsonl run log; a legacy
//     positional CSV at <path> is read and migrated
//   - "sqlite": settings and runs tables in one database file
//   - "none": persistence disabled
package storage
