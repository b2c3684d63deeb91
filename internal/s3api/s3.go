// Package s3api defines the interface for the S3 operations the staging
// module needs, to enable testing and mocking.
package s3api

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the narrow slice of the S3 surface used by staging: a read-only
// existence probe and an object write. The destination store is treated as
// write-once and content-addressed, so nothing else is required.
type S3API interface {
	// HeadObject retrieves metadata about an object without retrieving the
	// object itself; used as the existence probe
	HeadObject(
		ctx context.Context,
		params *s3.HeadObjectInput,
		optFns ...func(*s3.Options),
	) (*s3.HeadObjectOutput, error)

	// PutObject uploads an object; atomic-on-completion, so a failed write
	// never becomes visible to subsequent HeadObject calls
	PutObject(
		ctx context.Context,
		params *s3.PutObjectInput,
		optFns ...func(*s3.Options),
	) (*s3.PutObjectOutput, error)
}

// Verify that the AWS S3 client implements our interface
var _ S3API = (*s3.Client)(nil)
