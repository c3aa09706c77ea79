// Package clock provides a tiny time abstraction.
//
// Production code should depend on the Clocker interface instead of calling
// time.Now() directly. The OTP policy (payment recency) and the token issuer
// both read the year and expiry from a Clocker, so tests pin time with
// FixedClocker.
package clock
