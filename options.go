// Package staging provides functional options for configuring stager behavior.
// These options follow the functional options pattern for clean, composable configuration.
package staging

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/input-output-hk/catalyst-forge-libs/aws/staging/stagingtypes"
)

// WithRegion sets the AWS region for staging operations.
// If not specified, uses the default AWS region from the credential chain.
func WithRegion(region string) stagingtypes.Option {
	return func(c *stagingtypes.StagerConfig) {
		c.Region = region
	}
}

// WithMaxRetries sets the maximum number of retry attempts for the underlying
// S3 client. Retries live entirely in the SDK; the staging layer itself never
// retries a failed probe or upload.
func WithMaxRetries(maxRetries int) stagingtypes.Option {
	return func(c *stagingtypes.StagerConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithTimeout sets the timeout for individual S3 requests.
// Default is no timeout (0). Values should be positive durations.
func WithTimeout(timeout time.Duration) stagingtypes.Option {
	return func(c *stagingtypes.StagerConfig) {
		c.Timeout = timeout
	}
}

// WithParallelism sets the worker pool size used by each staging call.
// Default is DefaultParallelism.
func WithParallelism(parallelism int) stagingtypes.Option {
	return func(c *stagingtypes.StagerConfig) {
		if parallelism > 0 {
			c.Parallelism = parallelism
		}
	}
}

// WithUploadBufferSize sets the default transfer chunk size in bytes for
// uploads. The effective size is clamped to MaxUploadBufferSize; non-positive
// values are rejected when a staging call is made.
func WithUploadBufferSize(size int64) stagingtypes.Option {
	return func(c *stagingtypes.StagerConfig) {
		c.UploadBufferSize = size
	}
}

// WithContentType sets an explicit content type for all staged objects,
// disabling per-resource detection.
func WithContentType(contentType string) stagingtypes.Option {
	return func(c *stagingtypes.StagerConfig) {
		c.ContentType = contentType
	}
}

// WithPriorityArtifact designates an artifact that StageDefaultFiles prepends
// at index 0 of the resource list, ahead of all caller-listed files, so it
// takes precedence on the eventual classpath.
func WithPriorityArtifact(name, path string) stagingtypes.Option {
	return func(c *stagingtypes.StagerConfig) {
		c.PriorityArtifact = &stagingtypes.ResourceOverride{Name: name, Path: path}
	}
}

// WithAuxiliaryBinary designates a named binary that StageDefaultFiles
// appends after all caller-listed files.
func WithAuxiliaryBinary(name, path string) stagingtypes.Option {
	return func(c *stagingtypes.StagerConfig) {
		c.AuxiliaryBinary = &stagingtypes.ResourceOverride{Name: name, Path: path}
	}
}

// WithForcePathStyle forces the use of path-style URLs instead of virtual-hosted style.
// This is required for S3-compatible services that don't support virtual hosting.
// Default is false (uses virtual-hosted style).
func WithForcePathStyle(forcePathStyle bool) stagingtypes.Option {
	return func(c *stagingtypes.StagerConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior.
// Use this when you need fine-grained control over AWS SDK configuration.
func WithAWSConfig(config *aws.Config) stagingtypes.Option {
	return func(c *stagingtypes.StagerConfig) {
		c.CustomAWSConfig = config
	}
}

// WithFilesystem sets a custom filesystem implementation for resource reads.
// This allows using in-memory filesystems for testing or virtual filesystems.
// If not specified, defaults to the OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) stagingtypes.Option {
	return func(c *stagingtypes.StagerConfig) {
		c.Filesystem = filesystem
	}
}

// WithStageBufferSize overrides the transfer chunk size for a single staging
// call. The effective size is clamped to MaxUploadBufferSize; non-positive
// values fail the call with ErrInvalidConfiguration.
func WithStageBufferSize(size int64) stagingtypes.StageOption {
	return func(c *stagingtypes.StageOptionConfig) {
		c.UploadBufferSize = size
	}
}

// WithStageContentType overrides the content type for a single staging call.
func WithStageContentType(contentType string) stagingtypes.StageOption {
	return func(c *stagingtypes.StageOptionConfig) {
		c.ContentType = contentType
	}
}

// WithStageProgress sets a progress tracker for a single staging call.
// The tracker receives per-resource updates as uploads complete.
func WithStageProgress(tracker stagingtypes.ProgressTracker) stagingtypes.StageOption {
	return func(c *stagingtypes.StageOptionConfig) {
		c.ProgressTracker = tracker
	}
}
