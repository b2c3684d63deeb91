// Package staging stages local build artifacts into S3 so that a distributed
// execution backend can later fetch them onto worker machines.
//
// The engine is content-addressed: every resource is fingerprinted, its
// destination key derived from its logical name plus the fingerprint, and the
// upload skipped entirely when an object with that key already exists. This
// deduplicates staging across runs without any bookkeeping on the caller's
// side.
//
// Key features:
//   - Content-addressed destination keys (name-fingerprintHex) with
//     cross-run deduplication
//   - Concurrent staging bounded by a fixed-size worker pool
//   - Order-preserving manifests regardless of upload completion order
//   - Whole-batch failure semantics: a manifest is complete or absent
//   - Pluggable filesystem abstraction for resource reads
//
// Example usage:
//
//	stager, err := staging.New()
//	if err != nil {
//	    return err
//	}
//
//	packages, err := stager.StageFiles(ctx,
//	    []string{"a.jar", "lib/b.jar"},
//	    "s3://bucket/staging")
//	if err != nil {
//	    return err
//	}
package staging
