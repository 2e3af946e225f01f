// Package gen renders provider registrations for annotated types.
//
// Generation uses text/template + go/format. Each source file with reflected
// types gets a sibling file (suffix "_reflection.go" by default) whose init
// function registers one reflection.Info per type:
//   - attributes as reflection.Field accessors, ReadOnlyField when marked readonly
//   - methods as method expressions, (*T).M for pointer receivers
//   - parents as reflection.Parent, used types as reflection.Uses
//   - metadata expressions copied verbatim, with the imports they need
package gen
