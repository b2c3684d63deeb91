// Package stage implements the staging coordinator: the concurrent
// resolve/fingerprint/probe/upload pipeline behind StageFiles.
//
// Each resource is one independently schedulable unit of work. Units are
// dispatched onto a fixed-size worker pool and the manifest is reassembled
// by input index, so completion order never leaks into the result.
package stage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/input-output-hk/catalyst-forge-libs/aws/staging/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/staging/internal/fingerprint"
	"github.com/input-output-hk/catalyst-forge-libs/aws/staging/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-libs/aws/staging/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/aws/staging/stagingtypes"
)

// DefaultContentType is used when content sniffing and extension lookup both
// fail; staged artifacts are opaque binaries.
const DefaultContentType = "application/octet-stream"

// Config holds the destination and per-session parameters for one batch.
type Config struct {
	// Bucket is the destination bucket
	Bucket string

	// Prefix is the key prefix under the bucket; may be empty
	Prefix string

	// Location is the original staging base location, used for manifest
	// entries and error context
	Location string

	// Create holds the per-session upload parameters
	Create stagingtypes.CreateOptions

	// Progress receives per-resource updates; may be nil
	Progress stagingtypes.ProgressTracker
}

// Coordinator owns a worker pool for the duration of one staging call.
// It is acquired per call and must be released with Close; it is never
// shared or reused across calls.
type Coordinator struct {
	client s3api.S3API
	fs     fs.Filesystem

	// workers bounds the number of in-flight units
	workers chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewCoordinator creates a coordinator with a worker pool of the given size.
func NewCoordinator(client s3api.S3API, filesystem fs.Filesystem, parallelism int) *Coordinator {
	if parallelism <= 0 {
		parallelism = 1
	}
	return &Coordinator{
		client:  client,
		fs:      filesystem,
		workers: make(chan struct{}, parallelism),
	}
}

// Close drains the pool, blocking until every in-flight unit has finished.
// Safe to call more than once.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	// Acquiring every slot proves no unit is still running.
	for i := 0; i < cap(c.workers); i++ {
		c.workers <- struct{}{}
	}
}

// Stage runs the probe-then-upload pipeline for every resource concurrently
// and returns the manifest in input order. If any resource fails, the whole
// batch fails with the first observed error and no manifest is returned.
// Units already dispatched are allowed to finish; no new units are
// dispatched after a failure is recorded.
func (c *Coordinator) Stage(
	ctx context.Context,
	resources []stagingtypes.ResourceSpec,
	cfg *Config,
) ([]stagingtypes.StagedPackage, error) {
	results := make([]stagingtypes.StagedPackage, len(resources))
	total := int64(len(resources))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	var staged int64

	for i, res := range resources {
		mu.Lock()
		failed := firstErr != nil
		mu.Unlock()
		if failed {
			break
		}

		if err := ctx.Err(); err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("context cancelled before dispatch: %w", err)
			}
			mu.Unlock()
			break
		}

		acquired := false
		select {
		case c.workers <- struct{}{}:
			acquired = true
		case <-ctx.Done():
			mu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("context cancelled during worker acquisition: %w", ctx.Err())
			}
			mu.Unlock()
		}
		if !acquired {
			break
		}

		mu.Lock()
		failed = firstErr != nil
		mu.Unlock()
		if failed {
			// A unit failed while the dispatcher was waiting on this slot;
			// the token must go back or Close can never drain the pool.
			<-c.workers
			break
		}

		wg.Add(1)
		go func(i int, res stagingtypes.ResourceSpec) {
			defer func() {
				<-c.workers
				wg.Done()
			}()

			pkg, err := c.stageOne(ctx, res, cfg)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			results[i] = pkg

			if cfg.Progress != nil {
				cfg.Progress.Update(atomic.AddInt64(&staged, 1), total)
			}
		}(i, res)
	}

	wg.Wait()

	if firstErr != nil {
		if cfg.Progress != nil {
			cfg.Progress.Error(firstErr)
		}
		// Partial manifests are never returned; the batch surfaces the
		// first per-resource failure.
		return nil, errors.NewError("stage", firstErr).
			WithLocation(cfg.Location).
			WithMessage("batch aborted on first failure")
	}

	if cfg.Progress != nil {
		cfg.Progress.Complete()
	}
	return results, nil
}

// stageOne runs the full pipeline for a single resource: fingerprint,
// derive key, probe, and upload only when the object is absent.
func (c *Coordinator) stageOne(
	ctx context.Context,
	res stagingtypes.ResourceSpec,
	cfg *Config,
) (stagingtypes.StagedPackage, error) {
	digest, size, err := c.fingerprintResource(res)
	if err != nil {
		return stagingtypes.StagedPackage{}, err
	}

	key := DestinationKey(cfg.Prefix, res.Name, digest)
	if err := validation.ValidateObjectKey(key); err != nil {
		return stagingtypes.StagedPackage{}, err
	}

	// The probe is always performed, even when the upload happens anyway:
	// the upload decision depends on it.
	exists, err := c.exists(ctx, cfg.Bucket, key)
	if err != nil {
		return stagingtypes.StagedPackage{}, err
	}

	if !exists {
		if err := c.upload(ctx, res, cfg, key, size); err != nil {
			return stagingtypes.StagedPackage{}, err
		}
	}

	return stagingtypes.StagedPackage{
		Name:     res.Name,
		Location: cfg.Location + "/" + res.Name + "-" + digest.Hex(),
		Size:     size,
		Skipped:  exists,
	}, nil
}

// fingerprintResource computes the content digest and size of a resource
// without buffering file-backed content in memory.
func (c *Coordinator) fingerprintResource(
	res stagingtypes.ResourceSpec,
) (fingerprint.Digest, int64, error) {
	if res.InMemory() {
		return fingerprint.FromBytes(res.Data), int64(len(res.Data)), nil
	}

	info, err := c.fs.Stat(res.Path)
	if err != nil {
		return fingerprint.Digest{}, 0, errors.NewError("fingerprint", errors.ErrInvalidResourceSpec).
			WithMessage("cannot stat " + res.Path + ": " + err.Error())
	}

	digest, err := fingerprint.FromFile(c.fs, res.Path)
	if err != nil {
		return fingerprint.Digest{}, 0, errors.NewError("fingerprint", errors.ErrInvalidResourceSpec).
			WithMessage("cannot read " + res.Path + ": " + err.Error())
	}

	return digest, info.Size(), nil
}

// exists probes the destination for an object at key. A definitive
// "not found" answer is (false, nil); anything else that prevents an answer
// is ErrProbeFailed, which callers must not treat as either presence or
// absence.
func (c *Coordinator) exists(ctx context.Context, bucket, key string) (bool, error) {
	input := &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	_, err := c.client.HeadObject(ctx, input)
	if err != nil {
		errMsg := err.Error()
		if strings.Contains(errMsg, "NotFound") || strings.Contains(errMsg, "NoSuchKey") {
			return false, nil
		}
		return false, errors.NewError("probe", errors.ErrProbeFailed).
			WithKey(key).
			WithMessage(err.Error())
	}

	return true, nil
}

// upload writes the resource's full content to key. Reads from file-backed
// sources are bounded by the configured transfer chunk size. PutObject is
// atomic-on-completion, so a failed transfer leaves nothing visible.
func (c *Coordinator) upload(
	ctx context.Context,
	res stagingtypes.ResourceSpec,
	cfg *Config,
	key string,
	size int64,
) error {
	var body io.Reader
	if res.InMemory() {
		body = bytes.NewReader(res.Data)
	} else {
		f, err := c.fs.Open(res.Path)
		if err != nil {
			return errors.NewError("upload", errors.ErrInvalidResourceSpec).
				WithKey(key).
				WithMessage("cannot open " + res.Path + ": " + err.Error())
		}
		defer f.Close()
		body = newChunkedReader(f, int(cfg.Create.UploadBufferBytes))
	}

	contentType := cfg.Create.ContentType
	if contentType == "" {
		contentType = c.detectContentType(res)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(cfg.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}

	if _, err := c.client.PutObject(ctx, input); err != nil {
		return errors.NewError("upload", errors.ErrUploadFailed).
			WithKey(key).
			WithMessage(err.Error())
	}

	return nil
}

// detectContentType sniffs the resource content where possible, falling
// back to extension-based lookup and finally to the binary default.
func (c *Coordinator) detectContentType(res stagingtypes.ResourceSpec) string {
	if res.InMemory() {
		if mt := mimetype.Detect(res.Data); mt != nil {
			return mt.String()
		}
		return DefaultContentType
	}

	if f, err := c.fs.Open(res.Path); err == nil {
		defer f.Close()

		buf := make([]byte, 512)
		if n, _ := f.Read(buf); n > 0 {
			if mt := mimetype.Detect(buf[:n]); mt != nil {
				return mt.String()
			}
		}
	}

	ext := strings.ToLower(filepath.Ext(res.Path))
	if ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}

	return DefaultContentType
}

// DestinationKey derives the content-addressed key for a resource:
// <prefix>/<name>-<fingerprintHex>. The name keeps keys readable; the digest
// makes identical content collide on the same key across runs.
func DestinationKey(prefix, name string, digest fingerprint.Digest) string {
	key := name + "-" + digest.Hex()
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}

// chunkedReader bounds the size of individual reads to the configured upload
// buffer size while remaining seekable, which the SDK needs for signing and
// retries.
type chunkedReader struct {
	rs    io.ReadSeeker
	chunk int
}

func newChunkedReader(rs io.ReadSeeker, chunk int) *chunkedReader {
	if chunk <= 0 {
		chunk = 1
	}
	return &chunkedReader{rs: rs, chunk: chunk}
}

// Read reads at most the configured chunk size per call.
func (r *chunkedReader) Read(p []byte) (int, error) {
	if len(p) > r.chunk {
		p = p[:r.chunk]
	}
	return r.rs.Read(p)
}

// Seek delegates to the underlying source.
func (r *chunkedReader) Seek(offset int64, whence int) (int64, error) {
	return r.rs.Seek(offset, whence)
}
