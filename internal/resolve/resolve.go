// Package resolve turns raw staging entries into resource specs.
//
// An entry is either "name=path", declaring an explicit logical name, or a
// bare path whose basename becomes the name. Resolution verifies the source
// is a readable regular file but performs no other side effects.
package resolve

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/input-output-hk/catalyst-forge-libs/aws/staging/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/staging/stagingtypes"
)

// Resolver resolves raw entries against a filesystem.
type Resolver struct {
	fs fs.Filesystem
}

// New creates a Resolver that reads from the given filesystem.
func New(filesystem fs.Filesystem) *Resolver {
	return &Resolver{fs: filesystem}
}

// ParseEntry splits a raw entry into its logical name and source path.
// Everything before the first "=" is the name; without a separator the name
// defaults to the path's final segment.
func ParseEntry(entry string) (name, path string) {
	if n, p, ok := strings.Cut(entry, "="); ok {
		return n, p
	}
	return filepath.Base(entry), entry
}

// Resolve produces a ResourceSpec for a raw entry, failing with
// ErrInvalidResourceSpec if the source path does not exist, is unreadable,
// or is not a regular file.
func (r *Resolver) Resolve(entry string) (stagingtypes.ResourceSpec, error) {
	name, path := ParseEntry(entry)

	if name == "" || path == "" {
		return stagingtypes.ResourceSpec{}, errors.NewError("resolve", errors.ErrInvalidResourceSpec).
			WithMessage("entry " + strconv.Quote(entry) + " has an empty name or path")
	}

	info, err := r.fs.Stat(path)
	if err != nil {
		return stagingtypes.ResourceSpec{}, errors.NewError("resolve", errors.ErrInvalidResourceSpec).
			WithMessage("cannot stat " + path + ": " + err.Error())
	}
	if info.IsDir() {
		return stagingtypes.ResourceSpec{}, errors.NewError("resolve", errors.ErrInvalidResourceSpec).
			WithMessage(path + " is a directory, not a file")
	}

	// Read-access check: Stat alone does not prove the file is openable.
	f, err := r.fs.Open(path)
	if err != nil {
		return stagingtypes.ResourceSpec{}, errors.NewError("resolve", errors.ErrInvalidResourceSpec).
			WithMessage("cannot open " + path + ": " + err.Error())
	}
	_ = f.Close()

	return stagingtypes.ResourceSpec{Name: name, Path: path}, nil
}

// ResolveAll resolves a list of raw entries in order, failing on the first
// unresolvable entry.
func (r *Resolver) ResolveAll(entries []string) ([]stagingtypes.ResourceSpec, error) {
	specs := make([]stagingtypes.ResourceSpec, 0, len(entries))
	for _, entry := range entries {
		spec, err := r.Resolve(entry)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
