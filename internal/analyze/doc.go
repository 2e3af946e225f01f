// Package analyze loads Go packages and collects the types annotated with
// //reflect: directives.
//
// It uses golang.org/x/tools/go/packages with AST and go/types. Type
// expressions in directives are resolved in the scope of the declaring file,
// so they may use the file's imports.
//
// Key types:
//   - Analyzer: scans packages into a TypeGraph
//   - TypeInfo: what to reflect of one type (attributes, methods, parents, used types)
//   - TypeGraph: all annotated types plus the diagnostics found while scanning
package analyze
