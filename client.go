// Package staging provides client initialization and configuration.
//
// The Stager provides a high-level interface for staging artifacts to S3,
// with configurable parallelism, transfer buffering, and override artifacts
// for default-files assembly.
package staging

import (
	"context"
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"

	"github.com/input-output-hk/catalyst-forge-libs/aws/staging/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/staging/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-libs/aws/staging/stagingtypes"
)

const (
	// DefaultParallelism is the fixed worker pool size for a staging call,
	// independent of how many resources the call stages.
	DefaultParallelism = 32

	// DefaultUploadBufferSize is the default transfer chunk size (1 MiB).
	DefaultUploadBufferSize = 1024 * 1024

	// MaxUploadBufferSize is the hard ceiling on the transfer chunk size.
	// Configured values above this are clamped, never honored.
	MaxUploadBufferSize = 1024 * 1024
)

// Stager stages artifacts to S3. It is safe for concurrent use; each staging
// call acquires its own worker pool and releases it when the call returns.
type Stager struct {
	// s3Client is the underlying S3 client, narrowed to the probe/write surface
	s3Client s3api.S3API

	// config holds the AWS configuration
	config aws.Config

	// cfg holds the resolved stager configuration
	cfg stagingtypes.StagerConfig

	// mu protects concurrent access to stager configuration
	mu sync.RWMutex

	// fs is the filesystem abstraction for resource reads
	fs fs.Filesystem
}

// New creates a new Stager with the provided options.
// It loads AWS credentials using the default credential chain
// and applies the specified configuration options.
//
// Example:
//
//	stager, err := staging.New(
//	    staging.WithRegion("us-west-2"),
//	    staging.WithParallelism(16),
//	)
func New(opts ...stagingtypes.Option) (*Stager, error) {
	stagerCfg := &stagingtypes.StagerConfig{
		MaxRetries:       3,
		Parallelism:      DefaultParallelism,
		UploadBufferSize: DefaultUploadBufferSize,
	}

	for _, opt := range opts {
		opt(stagerCfg)
	}

	// Start with default AWS configuration or use custom config
	var cfg aws.Config
	var err error

	if stagerCfg.CustomAWSConfig != nil {
		cfg = *stagerCfg.CustomAWSConfig
	} else {
		cfg, err = config.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	// Apply region from options if specified, otherwise ensure a region is set
	if stagerCfg.Region != "" {
		cfg.Region = stagerCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = "us-east-1" // AWS default region
	}

	if stagerCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = stagerCfg.MaxRetries
	}

	var s3Opts []func(*s3.Options)

	if stagerCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	if stagerCfg.Timeout > 0 {
		httpClient := &http.Client{
			Timeout: stagerCfg.Timeout,
		}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	s3Client := s3.NewFromConfig(cfg, s3Opts...)

	// Initialize filesystem - use provided one or default to OS filesystem
	var filesystem fs.Filesystem
	if stagerCfg.Filesystem != nil {
		filesystem = stagerCfg.Filesystem
	} else {
		filesystem = billy.NewOSFS("/")
	}

	return &Stager{
		s3Client: s3Client,
		config:   cfg,
		cfg:      *stagerCfg,
		fs:       filesystem,
	}, nil
}

// NewWithClient creates a new Stager with a custom S3API implementation.
// This is primarily used for testing with mocked clients.
func NewWithClient(s3Client s3api.S3API, opts ...stagingtypes.Option) *Stager {
	stagerCfg := &stagingtypes.StagerConfig{
		MaxRetries:       3,
		Parallelism:      DefaultParallelism,
		UploadBufferSize: DefaultUploadBufferSize,
	}
	for _, opt := range opts {
		opt(stagerCfg)
	}

	var filesystem fs.Filesystem
	if stagerCfg.Filesystem != nil {
		filesystem = stagerCfg.Filesystem
	} else {
		filesystem = billy.NewOSFS("/")
	}

	return &Stager{
		s3Client: s3Client,
		config:   aws.Config{},
		cfg:      *stagerCfg,
		fs:       filesystem,
	}
}

// SetFilesystem sets the filesystem implementation for the stager.
// This is useful for testing or when the filesystem needs to be changed after creation.
func (s *Stager) SetFilesystem(filesystem fs.Filesystem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fs = filesystem
}

// getConfig returns a snapshot of the stager configuration.
func (s *Stager) getConfig() stagingtypes.StagerConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// getFilesystem returns the current filesystem implementation.
func (s *Stager) getFilesystem() fs.Filesystem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fs
}
