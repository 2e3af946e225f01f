// Package match provides identifier normalization and edit-distance
// ranking, used for "did you mean" hints on unknown directive and type names.
//
// Key functions:
//   - NormalizeIdent: folds identifiers for fuzzy matching
//   - Distance / Similarity: rune-wise edit distance and its 0-1 score
//   - Rank / Suggest: rank known names against an unresolved one
package match
