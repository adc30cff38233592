// Package assignment provides the Assignment aggregate: one offer of a Load to
// one driver, optionally bundled with a truck and a trailer.
//
//	Pending ──┬──> Accepted
//	          ├──> Rejected
//	          ├──> Expired
//	          └──> Cancelled
//
// All four outcomes are terminal and immutable. Accept and Reject evaluate
// expiry lazily: once ExpiresAt has passed they fail even if no sweep has run.
// Retrying the call that produced the terminal state succeeds without change.
package assignment
