// Package errs provides the typed error family shared by the order tracking
// service. Every type follows the same pattern: a sentinel error variable, a
// struct carrying details, constructors with and without a cause, Error() and
// Unwrap() returning the sentinel so callers can classify with errors.Is.
//
// Classification used across the service:
//   - ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError: validation (see IsValidation)
//   - ObjectNotFoundError: unknown order or stage
//   - VersionIsInvalidError: the order row changed during a compare-and-set update
//   - PermissionDeniedError: the actor may not transition the order
//   - UpstreamError: the courier platform kept failing after retries
package errs
