// Package stage models the delivery stage registry: the small, ordered
// catalog of stages an order can be in.
//
// Key business rules:
//   - Stage codes are unique and never blank
//   - Positions are unique; their ordering is the only definition of progress
//   - A registry is never empty
//   - Progress of the stage at rank p among n stages is round(p / (n - 1) * 100)
package stage
