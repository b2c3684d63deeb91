// Package fingerprint computes content fingerprints for staged resources.
//
// The digest is a 128-bit MD5 over the full byte stream. It depends only on
// the bytes themselves, never on path, name, or file metadata, so identical
// content yields the same destination key on every machine.
package fingerprint

import (
	"crypto/md5" //nolint:gosec // content addressing, not authentication
	"encoding/hex"
	"io"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/input-output-hk/catalyst-forge-libs/aws/staging/internal/pool"
)

// Size is the digest length in bytes.
const Size = md5.Size

// Digest is a fixed-length content fingerprint.
type Digest [Size]byte

// Hex returns the lowercase hexadecimal form of the digest, as embedded in
// destination keys.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// FromBytes fingerprints an in-memory buffer.
func FromBytes(data []byte) Digest {
	return Digest(md5.Sum(data)) //nolint:gosec // content addressing
}

// FromReader fingerprints a byte stream without buffering it fully,
// bounding memory for large artifacts.
func FromReader(r io.Reader) (Digest, error) {
	h := md5.New() //nolint:gosec // content addressing

	buf := pool.GetTransfer(0)
	defer pool.PutTransfer(buf)

	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return Digest{}, err
	}

	var d Digest
	copy(d[:], h.Sum(nil))
	return d, nil
}

// FromFile fingerprints a file on the given filesystem.
func FromFile(filesystem fs.Filesystem, path string) (Digest, error) {
	f, err := filesystem.Open(path)
	if err != nil {
		return Digest{}, err
	}
	defer f.Close()

	return FromReader(f)
}
