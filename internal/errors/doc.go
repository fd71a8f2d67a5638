// Package errors provides coded, structured errors for the reactive core.
//
// Contract violations in the reactive core (closing a scope before its
// children, writing through a released handle, runaway notification loops)
// are programmer errors and surface as panics carrying an *Error. Recoverable
// conditions such as a malformed configuration file are returned as *Error
// values.
//
// # Error Categories
//
//   - runtime: contract violations detected while the reactive graph runs
//   - config: configuration loading and validation
//   - cli: command-line usage errors
//
// # Error Codes
//
// Each code maps to a registered template holding a short message and a
// longer explanation:
//
//	err := errors.New("E201").
//	    WithDetail("scope 4v1 (button) still has 2 children").
//	    WithSuggestion("Close child scopes before their parent")
//
//	fmt.Println(err.Format())
//	// ERROR E201: Scope closed before its children
//	//
//	//   at ui/panel.go:88
//	//
//	//   scope 4v1 (button) still has 2 children
//	//
//	//   Hint: Close child scopes before their parent
package errors
