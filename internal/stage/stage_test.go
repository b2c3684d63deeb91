package stage

import (
	"context"
	stderrors "errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stagingerrors "github.com/input-output-hk/catalyst-forge-libs/aws/staging/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/staging/internal/fingerprint"
	"github.com/input-output-hk/catalyst-forge-libs/aws/staging/internal/testutil"
	"github.com/input-output-hk/catalyst-forge-libs/aws/staging/stagingtypes"
)

// notFoundErr mimics the SDK's HeadObject response for an absent key.
var notFoundErr = stderrors.New(
	"operation error S3: HeadObject, https response error StatusCode: 404, api error NotFound: Not Found",
)

func testConfig() *Config {
	return &Config{
		Bucket:   "test-bucket",
		Prefix:   "staging",
		Location: "s3://test-bucket/staging",
		Create: stagingtypes.CreateOptions{
			UploadBufferBytes: 1024 * 1024,
		},
	}
}

func headNotFound(
	_ context.Context, _ *s3.HeadObjectInput, _ ...func(*s3.Options),
) (*s3.HeadObjectOutput, error) {
	return nil, notFoundErr
}

// TestCoordinator_Stage_UploadsAbsent verifies that resources absent from the
// destination are uploaded under their content-addressed key.
func TestCoordinator_Stage_UploadsAbsent(t *testing.T) {
	content := []byte("artifact bytes")
	mockClient := &testutil.MockS3Client{HeadObjectFunc: headNotFound}

	coord := NewCoordinator(mockClient, nil, 4)
	defer coord.Close()

	resources := []stagingtypes.ResourceSpec{
		{Name: "a.jar", Data: content},
	}

	packages, err := coord.Stage(context.Background(), resources, testConfig())
	require.NoError(t, err)
	require.Len(t, packages, 1)

	wantKey := "staging/a.jar-" + testutil.ContentDigestHex(content)
	assert.Equal(t, []string{wantKey}, mockClient.HeadCalls())
	assert.Equal(t, []string{wantKey}, mockClient.PutCalls())

	assert.Equal(t, "a.jar", packages[0].Name)
	assert.Equal(t, "s3://test-bucket/staging/a.jar-"+testutil.ContentDigestHex(content), packages[0].Location)
	assert.Equal(t, int64(len(content)), packages[0].Size)
	assert.False(t, packages[0].Skipped)
}

// TestCoordinator_Stage_SkipsPresent verifies the dedup path: a successful
// probe suppresses the upload entirely.
func TestCoordinator_Stage_SkipsPresent(t *testing.T) {
	mockClient := &testutil.MockS3Client{} // HeadObject succeeds by default

	coord := NewCoordinator(mockClient, nil, 4)
	defer coord.Close()

	resources := []stagingtypes.ResourceSpec{
		{Name: "a.jar", Data: []byte("already staged")},
	}

	packages, err := coord.Stage(context.Background(), resources, testConfig())
	require.NoError(t, err)
	require.Len(t, packages, 1)

	assert.Len(t, mockClient.HeadCalls(), 1)
	assert.Empty(t, mockClient.PutCalls())
	assert.True(t, packages[0].Skipped)
}

// TestCoordinator_Stage_PreservesOrder verifies the manifest follows input
// order even when workers complete out of order.
func TestCoordinator_Stage_PreservesOrder(t *testing.T) {
	mockClient := &testutil.MockS3Client{HeadObjectFunc: headNotFound}

	coord := NewCoordinator(mockClient, nil, 8)
	defer coord.Close()

	names := []string{"z.jar", "a.jar", "m.jar", "b.jar", "q.jar"}
	resources := make([]stagingtypes.ResourceSpec, len(names))
	for i, name := range names {
		resources[i] = stagingtypes.ResourceSpec{
			Name: name,
			Data: testutil.GenerateRandomData(32 * 1024),
		}
	}

	packages, err := coord.Stage(context.Background(), resources, testConfig())
	require.NoError(t, err)
	require.Len(t, packages, len(names))

	for i, name := range names {
		assert.Equal(t, name, packages[i].Name)
	}
}

// TestCoordinator_Stage_FailsBatchOnUploadError verifies a single upload
// failure aborts the whole batch with no manifest.
func TestCoordinator_Stage_FailsBatchOnUploadError(t *testing.T) {
	mockClient := &testutil.MockS3Client{
		HeadObjectFunc: headNotFound,
		PutObjectFunc: func(
			_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options),
		) (*s3.PutObjectOutput, error) {
			if strings.HasPrefix(*params.Key, "staging/bad.jar-") {
				return nil, stderrors.New("connection reset by peer")
			}
			return &s3.PutObjectOutput{}, nil
		},
	}

	coord := NewCoordinator(mockClient, nil, 2)
	defer coord.Close()

	tracker := &testutil.MockProgressTracker{}
	cfg := testConfig()
	cfg.Progress = tracker

	resources := []stagingtypes.ResourceSpec{
		{Name: "good.jar", Data: []byte("good")},
		{Name: "bad.jar", Data: []byte("bad")},
		{Name: "other.jar", Data: []byte("other")},
	}

	packages, err := coord.Stage(context.Background(), resources, cfg)
	require.Error(t, err)
	assert.Nil(t, packages)
	assert.True(t, stagingerrors.IsUploadFailed(err))

	assert.True(t, tracker.ErrorCalled)
	assert.False(t, tracker.CompleteCalled)
}

// TestCoordinator_Stage_ProbeFailureAbortsBatch verifies an indeterminate
// probe is surfaced as a probe failure and never treated as absence.
func TestCoordinator_Stage_ProbeFailureAbortsBatch(t *testing.T) {
	mockClient := &testutil.MockS3Client{
		HeadObjectFunc: func(
			_ context.Context, _ *s3.HeadObjectInput, _ ...func(*s3.Options),
		) (*s3.HeadObjectOutput, error) {
			return nil, stderrors.New("api error AccessDenied: Access Denied")
		},
	}

	coord := NewCoordinator(mockClient, nil, 4)
	defer coord.Close()

	resources := []stagingtypes.ResourceSpec{
		{Name: "a.jar", Data: []byte("content")},
	}

	packages, err := coord.Stage(context.Background(), resources, testConfig())
	require.Error(t, err)
	assert.Nil(t, packages)
	assert.True(t, stagingerrors.IsProbeFailed(err))
	assert.False(t, stagingerrors.IsUploadFailed(err))

	// The upload must never run on an indeterminate probe.
	assert.Empty(t, mockClient.PutCalls())
}

// TestCoordinator_Stage_FileBacked verifies file-backed resources are read
// through the filesystem and sized from the file.
func TestCoordinator_Stage_FileBacked(t *testing.T) {
	content := testutil.GenerateRandomData(256 * 1024)
	memFS, err := testutil.NewMemoryFS(map[string][]byte{
		"/jars/worker.jar": content,
	})
	require.NoError(t, err)

	mockClient := &testutil.MockS3Client{HeadObjectFunc: headNotFound}

	coord := NewCoordinator(mockClient, memFS, 4)
	defer coord.Close()

	resources := []stagingtypes.ResourceSpec{
		{Name: "worker.jar", Path: "/jars/worker.jar"},
	}

	packages, err := coord.Stage(context.Background(), resources, testConfig())
	require.NoError(t, err)
	require.Len(t, packages, 1)

	wantKey := "staging/worker.jar-" + testutil.ContentDigestHex(content)
	assert.Equal(t, []string{wantKey}, mockClient.PutCalls())
	assert.Equal(t, int64(len(content)), packages[0].Size)
}

// TestCoordinator_Stage_MissingFileFails verifies a vanished file surfaces as
// an invalid resource and aborts the batch.
func TestCoordinator_Stage_MissingFileFails(t *testing.T) {
	memFS, err := testutil.NewMemoryFS(nil)
	require.NoError(t, err)

	mockClient := &testutil.MockS3Client{HeadObjectFunc: headNotFound}

	coord := NewCoordinator(mockClient, memFS, 4)
	defer coord.Close()

	resources := []stagingtypes.ResourceSpec{
		{Name: "gone.jar", Path: "/jars/gone.jar"},
	}

	packages, err := coord.Stage(context.Background(), resources, testConfig())
	require.Error(t, err)
	assert.Nil(t, packages)
	assert.True(t, stagingerrors.IsInvalidResourceSpec(err))
}

// TestCoordinator_Stage_ProgressUpdates verifies the tracker sees every
// resource and the final completion signal.
func TestCoordinator_Stage_ProgressUpdates(t *testing.T) {
	mockClient := &testutil.MockS3Client{HeadObjectFunc: headNotFound}

	coord := NewCoordinator(mockClient, nil, 4)
	defer coord.Close()

	tracker := &testutil.MockProgressTracker{}
	cfg := testConfig()
	cfg.Progress = tracker

	resources := []stagingtypes.ResourceSpec{
		{Name: "a.jar", Data: []byte("a")},
		{Name: "b.jar", Data: []byte("b")},
		{Name: "c.jar", Data: []byte("c")},
	}

	_, err := coord.Stage(context.Background(), resources, cfg)
	require.NoError(t, err)

	assert.True(t, tracker.UpdateCalled)
	assert.Equal(t, int64(3), tracker.LastStaged)
	assert.Equal(t, int64(3), tracker.LastTotal)
	assert.True(t, tracker.CompleteCalled)
	assert.False(t, tracker.ErrorCalled)
}

// TestCoordinator_Stage_ReleasesSlotAfterFailure verifies the dispatcher
// gives back a slot it acquired after a unit failure, so Close can still
// drain the pool. With one worker and a slow failing upload, the dispatcher
// is parked on slot acquisition when the failure lands.
func TestCoordinator_Stage_ReleasesSlotAfterFailure(t *testing.T) {
	mockClient := &testutil.MockS3Client{
		HeadObjectFunc: headNotFound,
		PutObjectFunc: func(
			_ context.Context, _ *s3.PutObjectInput, _ ...func(*s3.Options),
		) (*s3.PutObjectOutput, error) {
			time.Sleep(50 * time.Millisecond)
			return nil, stderrors.New("connection reset by peer")
		},
	}

	coord := NewCoordinator(mockClient, nil, 1)

	resources := []stagingtypes.ResourceSpec{
		{Name: "a.jar", Data: []byte("a")},
		{Name: "b.jar", Data: []byte("b")},
	}

	_, err := coord.Stage(context.Background(), resources, testConfig())
	require.Error(t, err)
	assert.True(t, stagingerrors.IsUploadFailed(err))

	closed := make(chan struct{})
	go func() {
		coord.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return; the dispatcher leaked a worker slot")
	}
}

// TestCoordinator_Stage_CancelledBeforeDispatch verifies an already-cancelled
// context never dispatches work, even when the pool has free slots.
func TestCoordinator_Stage_CancelledBeforeDispatch(t *testing.T) {
	mockClient := &testutil.MockS3Client{HeadObjectFunc: headNotFound}

	coord := NewCoordinator(mockClient, nil, 4)
	defer coord.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	packages, err := coord.Stage(ctx, []stagingtypes.ResourceSpec{
		{Name: "a.jar", Data: []byte("a")},
	}, testConfig())
	require.Error(t, err)
	assert.Nil(t, packages)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, mockClient.HeadCalls())
}

// TestCoordinator_Stage_CancelledContext verifies cancellation before
// dispatch fails the batch.
func TestCoordinator_Stage_CancelledContext(t *testing.T) {
	mockClient := &testutil.MockS3Client{HeadObjectFunc: headNotFound}

	coord := NewCoordinator(mockClient, nil, 1)
	defer coord.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Fill the only worker slot so acquisition must consult the context.
	coord.workers <- struct{}{}
	defer func() { <-coord.workers }()

	resources := []stagingtypes.ResourceSpec{
		{Name: "a.jar", Data: []byte("a")},
	}

	packages, err := coord.Stage(ctx, resources, testConfig())
	require.Error(t, err)
	assert.Nil(t, packages)
	assert.ErrorIs(t, err, context.Canceled)
}

// TestCoordinator_Close verifies Close is idempotent.
func TestCoordinator_Close(t *testing.T) {
	mockClient := &testutil.MockS3Client{}
	coord := NewCoordinator(mockClient, nil, 4)

	coord.Close()
	coord.Close()
}

// TestDestinationKey covers key derivation with and without a prefix.
func TestDestinationKey(t *testing.T) {
	digest := fingerprint.FromBytes([]byte("abc"))

	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{
			name:   "with prefix",
			prefix: "staging",
			want:   "staging/a.jar-900150983cd24fb0d6963f7d28e17f72",
		},
		{
			name:   "nested prefix",
			prefix: "staging/v1",
			want:   "staging/v1/a.jar-900150983cd24fb0d6963f7d28e17f72",
		},
		{
			name:   "no prefix",
			prefix: "",
			want:   "a.jar-900150983cd24fb0d6963f7d28e17f72",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DestinationKey(tt.prefix, "a.jar", digest))
		})
	}
}

// TestChunkedReader verifies reads are bounded by the chunk size while the
// full content still comes through, and that seeking is delegated.
func TestChunkedReader(t *testing.T) {
	data := testutil.GenerateRandomData(10*1024 + 37)
	r := newChunkedReader(strings.NewReader(string(data)), 4096)

	var got []byte
	buf := make([]byte, 64*1024)
	for {
		n, err := r.Read(buf)
		assert.LessOrEqual(t, n, 4096)
		got = append(got, buf[:n]...)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, data, got)

	pos, err := r.Seek(0, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pos)

	again, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

// TestDetectContentType covers sniffing and the binary fallback.
func TestDetectContentType(t *testing.T) {
	coord := NewCoordinator(&testutil.MockS3Client{}, nil, 1)
	defer coord.Close()

	t.Run("in-memory text", func(t *testing.T) {
		ct := coord.detectContentType(stagingtypes.ResourceSpec{
			Name: "notes.txt",
			Data: []byte("plain text content"),
		})
		assert.Contains(t, ct, "text/plain")
	})

	t.Run("file-backed by extension", func(t *testing.T) {
		memFS, err := testutil.NewMemoryFS(map[string][]byte{
			"/data/payload.json": []byte(`{"key": "value"}`),
		})
		require.NoError(t, err)

		fileCoord := NewCoordinator(&testutil.MockS3Client{}, memFS, 1)
		defer fileCoord.Close()

		ct := fileCoord.detectContentType(stagingtypes.ResourceSpec{
			Name: "payload.json",
			Path: "/data/payload.json",
		})
		assert.Contains(t, ct, "json")
	})
}
