/*
Package errors implements the error types used across the payout engine.

The idea is to reuse as many errors from this package as possible and
declare a custom root error only when absolutely necessary. All root
errors are declared here with a unique code via Register. During runtime
create instances by wrapping a root error:

	errors.Wrap(errors.ErrNotFound, "calculation report")
	errors.ErrAddress.Newf("%q is not a tz or KT address", addr)

Stack traces are attached at the innermost Wrap call. Use fmt verbs to
inspect an error:

	%s is just the error message
	%+v is the full stack trace
*/
package errors
