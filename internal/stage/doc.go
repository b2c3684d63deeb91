// Package stage implements the staging coordinator: the concurrent
// resolve/fingerprint/probe/upload pipeline behind StageFiles.
package stage
