// Package validation provides centralized input validation logic.
// This includes staging-location parsing, bucket name validation, and
// destination key checks.
//
// All caller inputs are validated before any network call so that a
// malformed destination fails fast instead of mid-batch.
package validation
