// Package errors provides coded, structured errors for the reconciler and its
// tooling.
//
// Each error has a unique code (e.g., "F001") that maps to a short message and
// a longer explanation held in a registry. Errors wrap their cause, so the
// standard errors.Is and errors.As helpers keep working across package
// boundaries.
//
// # Error Categories
//
//   - validation: malformed virtual nodes
//   - runtime: scheduler and render node invariants
//   - host: host adapter failures during begin work or commit
//   - config: configuration file problems
//   - input: tree description files
//
// # Usage
//
//	err := errors.New(errors.CodeMalformedNode).
//	    WithPath("root/0/2").
//	    WithSuggestion("give the element a tag")
//
//	fmt.Println(err.Format())
package errors
