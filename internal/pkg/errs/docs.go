// Package errs holds the error taxonomy of the fleet dispatch service.
//
// Every kind of failure has a sentinel for errors.Is and a typed error for
// errors.As:
//   - ErrValueIsRequired / ValueIsRequiredError: a mandatory input is missing
//   - ErrValueIsInvalid / ValueIsInvalidError: an input is malformed
//   - ErrValueIsOutOfRange / ValueIsOutOfRangeError: a number outside its bounds
//   - ErrVersionIsInvalid / VersionIsInvalidError: a stored version counter is corrupt
//   - ErrObjectNotFound / ObjectNotFoundError: no load, assignment or resource with that id
//   - ErrConflict / ConflictError: the operation does not fit the entity's current
//     state, including a lost race against a concurrent writer
//   - ErrInvalidTransition / InvalidTransitionError: a state-machine move that is
//     not reachable from the current state
//
// Constructors come in pairs, with and without a cause; the cause stays
// reachable through Unwrap. The HTTP adapter maps the sentinels to status codes.
package errs
