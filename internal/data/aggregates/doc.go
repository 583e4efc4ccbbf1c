// Package aggregates owns transaction boundaries for invariant-critical writes
// and maps storage failures into coded domain errors.
//
// Services compose table-level repos from internal/data/repos inside
// ExecuteWrite so every write is traced, classified and observed the same way.
package aggregates
