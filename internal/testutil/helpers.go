// Package testutil provides test helper functions.
package testutil

import (
	"crypto/md5" //nolint:gosec // mirrors the staging fingerprint
	"encoding/hex"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
)

// GenerateRandomData generates random bytes of the specified size.
// This is useful for creating artifact content for staging tests.
func GenerateRandomData(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(rand.Intn(256))
	}
	return data
}

// GenerateTestBucketName generates a unique DNS-compliant bucket name with
// the given prefix.
func GenerateTestBucketName(prefix string) string {
	name := fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), rand.Intn(10000))
	return strings.ToLower(name)
}

// ContentDigestHex computes the hex form of the content fingerprint for the
// given bytes, so tests can predict destination keys independently of the
// fingerprint package.
func ContentDigestHex(data []byte) string {
	sum := md5.Sum(data) //nolint:gosec // content addressing
	return hex.EncodeToString(sum[:])
}

// NewMemoryFS returns an in-memory filesystem pre-populated with the given
// path -> content files. Parent directories are created as needed.
func NewMemoryFS(files map[string][]byte) (*billy.FS, error) {
	memFS := billy.NewInMemoryFS()
	for path, content := range files {
		if dir := parentDir(path); dir != "" {
			if err := memFS.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
		if err := memFS.WriteFile(path, content, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
	}
	return memFS, nil
}

func parentDir(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx <= 0 {
		return ""
	}
	return path[:idx]
}
