// Package diagnostic provides structured warnings and errors for the
// provider generator.
//
// Key capabilities:
//   - Unknown directive and type name reports with "did you mean" hints
//   - Warnings for skipped types and members
//   - One combined error for a failed scan
package diagnostic
