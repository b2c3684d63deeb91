// Package internal contains private implementation details for the staging module.
// These packages are not intended for external use and may change without notice.
//
// The internal packages are organized as follows:
//   - resolve: Raw entry parsing and resource resolution
//   - fingerprint: Content digest computation
//   - stage: The concurrent staging coordinator
//   - pool: Pooled transfer buffers
//   - validation: Input validation logic
//   - s3api: The narrow S3 interface the module depends on
//   - testutil: Mocks and test helpers
package internal
