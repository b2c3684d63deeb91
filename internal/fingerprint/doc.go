// Package fingerprint computes content fingerprints for staged resources.
//
// Fingerprints depend only on resource bytes, never on path, name, or file
// metadata, which makes cross-run deduplication sound.
package fingerprint
