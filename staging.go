// Package staging provides the public staging operations.
package staging

import (
	"context"

	stagingerrors "github.com/input-output-hk/catalyst-forge-libs/aws/staging/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/staging/internal/resolve"
	"github.com/input-output-hk/catalyst-forge-libs/aws/staging/internal/stage"
	"github.com/input-output-hk/catalyst-forge-libs/aws/staging/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/aws/staging/stagingtypes"
)

// StageFiles stages the given entries to the staging location, suffixing each
// destination key with the resource's content fingerprint.
//
// Each entry is either "name=path" or a bare path whose basename becomes the
// logical name. Resources are staged concurrently on a fixed-size worker
// pool; uploads whose content-addressed destination already exists are
// skipped. The returned manifest preserves input order regardless of upload
// completion order.
//
// Returns:
//   - []StagedPackage: One manifest entry per input entry, in input order
//   - error: The first failure encountered; no partial manifest is returned
//
// Errors:
//   - ErrInvalidResourceSpec: If an entry's source is missing or unreadable
//   - ErrInvalidConfiguration: If the upload buffer size is non-positive
//   - ErrInvalidLocation: If the staging location is malformed
//   - ErrProbeFailed: If an existence check could not be answered definitively
//   - ErrUploadFailed: If a destination write did not complete
//
// Example:
//
//	packages, err := stager.StageFiles(ctx,
//	    []string{"a.jar", "lib/b.jar"},
//	    "s3://bucket/staging")
//	if err != nil {
//	    return err
//	}
//	for _, pkg := range packages {
//	    fmt.Printf("%s -> %s\n", pkg.Name, pkg.Location)
//	}
func (s *Stager) StageFiles(
	ctx context.Context,
	entries []string,
	location string,
	opts ...stagingtypes.StageOption,
) ([]stagingtypes.StagedPackage, error) {
	cfg, coord, err := s.prepare(location, opts)
	if err != nil {
		return nil, err
	}
	defer coord.Close()

	resolver := resolve.New(s.getFilesystem())
	specs, err := resolver.ResolveAll(entries)
	if err != nil {
		return nil, stagingerrors.NewError("stageFiles", err).WithLocation(location)
	}

	packages, err := coord.Stage(ctx, specs, cfg)
	if err != nil {
		return nil, stagingerrors.NewError("stageFiles", err).WithLocation(location)
	}

	return packages, nil
}

// StageDefaultFiles stages the given entries plus any configured override
// artifacts: the priority artifact, when configured, occupies index 0 of the
// resource list ahead of all caller-listed files, and the auxiliary binary,
// when configured, is appended after them.
//
// The final resource list is assembled deterministically before any
// concurrent dispatch; the caller's slice is never mutated.
func (s *Stager) StageDefaultFiles(
	ctx context.Context,
	entries []string,
	location string,
	opts ...stagingtypes.StageOption,
) ([]stagingtypes.StagedPackage, error) {
	cfg := s.getConfig()

	assembled := make([]string, 0, len(entries)+2)
	if cfg.PriorityArtifact != nil {
		assembled = append(assembled, cfg.PriorityArtifact.Name+"="+cfg.PriorityArtifact.Path)
	}
	assembled = append(assembled, entries...)
	if cfg.AuxiliaryBinary != nil {
		assembled = append(assembled, cfg.AuxiliaryBinary.Name+"="+cfg.AuxiliaryBinary.Path)
	}

	return s.StageFiles(ctx, assembled, location, opts...)
}

// StageBuffer stages a single in-memory buffer under the given base name.
// The buffer is fingerprinted directly, then follows the same key
// derivation, existence probe, and conditional upload as StageFiles.
//
// Returns:
//   - *StagedPackage: The manifest entry for the staged buffer
//   - error: Returns an error if staging fails
//
// Example:
//
//	pkg, err := stager.StageBuffer(ctx, serialized, "pipeline.pb",
//	    "s3://bucket/staging")
//	if err != nil {
//	    return err
//	}
func (s *Stager) StageBuffer(
	ctx context.Context,
	data []byte,
	baseName string,
	location string,
	opts ...stagingtypes.StageOption,
) (*stagingtypes.StagedPackage, error) {
	if baseName == "" {
		return nil, stagingerrors.NewError("stageBuffer", stagingerrors.ErrInvalidResourceSpec).
			WithLocation(location).
			WithMessage("base name cannot be empty")
	}

	// A nil buffer is a valid empty resource; left nil it would be
	// mistaken for a file-backed spec.
	if data == nil {
		data = []byte{}
	}

	cfg, coord, err := s.prepare(location, opts)
	if err != nil {
		return nil, err
	}
	defer coord.Close()

	specs := []stagingtypes.ResourceSpec{{Name: baseName, Data: data}}

	packages, err := coord.Stage(ctx, specs, cfg)
	if err != nil {
		return nil, stagingerrors.NewError("stageBuffer", err).WithLocation(location)
	}

	return &packages[0], nil
}

// prepare validates the location and per-call options, and acquires a fresh
// coordinator whose worker pool is owned by exactly one staging call.
func (s *Stager) prepare(
	location string,
	opts []stagingtypes.StageOption,
) (*stage.Config, *stage.Coordinator, error) {
	bucket, prefix, err := validation.ParseLocation(location)
	if err != nil {
		return nil, nil, err
	}

	cfg := s.getConfig()

	// Per-call options start from the stager-level defaults, so an explicit
	// zero is distinguishable from "not set".
	stageCfg := &stagingtypes.StageOptionConfig{
		UploadBufferSize: cfg.UploadBufferSize,
		ContentType:      cfg.ContentType,
	}
	for _, opt := range opts {
		opt(stageCfg)
	}

	create, err := buildCreateOptions(stageCfg)
	if err != nil {
		return nil, nil, err
	}

	coord := stage.NewCoordinator(s.s3Client, s.getFilesystem(), cfg.Parallelism)

	return &stage.Config{
		Bucket:   bucket,
		Prefix:   prefix,
		Location: "s3://" + bucket + joinPrefix(prefix),
		Create:   create,
		Progress: stageCfg.ProgressTracker,
	}, coord, nil
}

// buildCreateOptions computes the per-session upload parameters. The buffer
// size must be positive and is clamped to the hard ceiling regardless of
// what the configuration requests.
func buildCreateOptions(stageCfg *stagingtypes.StageOptionConfig) (stagingtypes.CreateOptions, error) {
	size := stageCfg.UploadBufferSize
	if size <= 0 {
		return stagingtypes.CreateOptions{}, stagingerrors.
			NewError("buildCreateOptions", stagingerrors.ErrInvalidConfiguration).
			WithMessage("upload buffer size must be > 0")
	}
	if size > MaxUploadBufferSize {
		size = MaxUploadBufferSize
	}

	return stagingtypes.CreateOptions{
		UploadBufferBytes: size,
		ContentType:       stageCfg.ContentType,
	}, nil
}

// joinPrefix renders a key prefix for inclusion in a location string.
func joinPrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	return "/" + prefix
}
