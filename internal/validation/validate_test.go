package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stagingerrors "github.com/input-output-hk/catalyst-forge-libs/aws/staging/errors"
)

// TestParseLocation covers staging base location parsing.
func TestParseLocation(t *testing.T) {
	tests := []struct {
		name       string
		location   string
		wantBucket string
		wantPrefix string
		wantErr    error
	}{
		{
			name:       "bucket and prefix",
			location:   "s3://my-bucket/staging",
			wantBucket: "my-bucket",
			wantPrefix: "staging",
		},
		{
			name:       "nested prefix",
			location:   "s3://my-bucket/staging/v1",
			wantBucket: "my-bucket",
			wantPrefix: "staging/v1",
		},
		{
			name:       "trailing slash stripped",
			location:   "s3://my-bucket/staging/",
			wantBucket: "my-bucket",
			wantPrefix: "staging",
		},
		{
			name:       "bucket only",
			location:   "s3://my-bucket",
			wantBucket: "my-bucket",
			wantPrefix: "",
		},
		{
			name:     "empty location",
			location: "",
			wantErr:  stagingerrors.ErrInvalidLocation,
		},
		{
			name:     "wrong scheme",
			location: "gs://my-bucket/staging",
			wantErr:  stagingerrors.ErrInvalidLocation,
		},
		{
			name:     "missing bucket",
			location: "s3:///staging",
			wantErr:  stagingerrors.ErrInvalidBucketName,
		},
		{
			name:     "invalid bucket characters",
			location: "s3://My_Bucket/staging",
			wantErr:  stagingerrors.ErrInvalidBucketName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, prefix, err := ParseLocation(tt.location)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantPrefix, prefix)
		})
	}
}

// TestValidateBucketName covers DNS-compliance rules.
func TestValidateBucketName(t *testing.T) {
	tests := []struct {
		name    string
		bucket  string
		wantErr bool
	}{
		{name: "valid", bucket: "artifact-staging"},
		{name: "valid with dots", bucket: "artifacts.example"},
		{name: "empty", bucket: "", wantErr: true},
		{name: "too short", bucket: "ab", wantErr: true},
		{name: "uppercase", bucket: "Staging", wantErr: true},
		{name: "leading hyphen", bucket: "-staging", wantErr: true},
		{name: "trailing dot", bucket: "staging.", wantErr: true},
		{name: "adjacent dots", bucket: "stag..ing", wantErr: true},
		{name: "ip address", bucket: "192.168.1.1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBucketName(tt.bucket)
			if tt.wantErr {
				assert.ErrorIs(t, err, stagingerrors.ErrInvalidBucketName)
				return
			}
			assert.NoError(t, err)
		})
	}
}

// TestValidateObjectKey covers destination key checks.
func TestValidateObjectKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "valid content-addressed key", key: "staging/a.jar-900150983cd24fb0d6963f7d28e17f72"},
		{name: "empty", key: "", wantErr: true},
		{name: "traversal", key: "staging/../secrets", wantErr: true},
		{name: "absolute", key: "/staging/a.jar", wantErr: true},
		{name: "control characters", key: "staging/a\x00.jar", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateObjectKey(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, stagingerrors.ErrInvalidObjectKey)
				return
			}
			assert.NoError(t, err)
		})
	}
}
