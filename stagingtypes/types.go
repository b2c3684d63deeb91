// Package stagingtypes provides shared type definitions for the staging module.
package stagingtypes

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
)

// ResourceSpec describes a single resource to stage: a logical name plus a
// byte source, which is either a local file path or an in-memory buffer.
// Immutable once constructed.
type ResourceSpec struct {
	// Name is the logical name of the resource; it becomes part of the
	// destination key
	Name string

	// Path is the local source path for file-backed resources
	Path string

	// Data holds the content for in-memory resources; when non-nil, Path
	// is ignored
	Data []byte
}

// InMemory reports whether the resource is backed by an in-memory buffer
// rather than a local file.
func (r ResourceSpec) InMemory() bool {
	return r.Data != nil
}

// StagedPackage is one manifest entry returned to the caller: the logical
// name and the fully qualified destination of a staged resource.
type StagedPackage struct {
	// Name is the logical name of the resource
	Name string

	// Location is the destination, e.g. "s3://bucket/staging/a.jar-<hex>"
	Location string

	// Size is the resource size in bytes
	Size int64

	// Skipped reports whether the upload was skipped because an object with
	// the same content-addressed key already existed
	Skipped bool
}

// ResourceOverride names an artifact that replaces or augments the caller's
// entry list during default-files assembly.
type ResourceOverride struct {
	// Name is the logical name the artifact is staged under
	Name string

	// Path is the local source path
	Path string
}

// CreateOptions holds the per-session upload parameters, computed once per
// staging call from the caller configuration.
type CreateOptions struct {
	// UploadBufferBytes is the effective transfer chunk size; always
	// >0 and clamped to the hard ceiling by the caller
	UploadBufferBytes int64

	// ContentType is the declared content type for created objects; empty
	// means detect per resource
	ContentType string
}

// ProgressTracker defines the interface for tracking staging progress.
// Implementations receive per-resource updates as uploads complete.
type ProgressTracker interface {
	// Update is called as resources finish staging
	Update(resourcesStaged, totalResources int64)

	// Complete is called when the whole batch completes successfully
	Complete()

	// Error is called when the batch fails
	Error(err error)
}

// StagerConfig holds configuration for the staging client.
type StagerConfig struct {
	Region           string
	MaxRetries       int
	Timeout          time.Duration
	Parallelism      int
	ForcePathStyle   bool
	CustomAWSConfig  *aws.Config
	UploadBufferSize int64
	ContentType      string
	PriorityArtifact *ResourceOverride
	AuxiliaryBinary  *ResourceOverride
	Filesystem       fs.Filesystem // Filesystem abstraction for resource reads
}

// StageOptionConfig holds per-call configuration applied via functional options.
type StageOptionConfig struct {
	UploadBufferSize int64
	ContentType      string
	ProgressTracker  ProgressTracker
}

// Option is a functional option for configuring the staging client.
type (
	Option func(*StagerConfig)
	// StageOption is a functional option for configuring a single staging call.
	StageOption func(*StageOptionConfig)
)
