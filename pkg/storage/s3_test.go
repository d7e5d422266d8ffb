package storage

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	deletes int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

// ListObjectsV2 honours Prefix and a "/" Delimiter in a single page.
func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := aws.ToString(in.Prefix)
	var keys []string
	for k := range f.objects {
		rest, ok := strings.CutPrefix(k, prefix)
		if !ok || strings.Contains(rest, "/") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func TestS3Storage_ReadWriteDelete(t *testing.T) {
	ctx := context.Background()
	api := newFakeS3()
	s := NewS3StorageWithClient(api, "bucket", "/inspectguild/")

	_, err := s.Read(ctx, "tasks/a.yaml")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Write(ctx, "tasks/a.yaml", []byte("title: a\n")))
	require.NoError(t, s.Write(ctx, "/tasks/b.yaml", []byte("title: b\n")))
	require.NoError(t, s.Write(ctx, "tasks/nested/c.yaml", []byte("title: c\n")))
	assert.Contains(t, api.objects, "inspectguild/tasks/a.yaml")

	data, err := s.Read(ctx, "tasks/a.yaml")
	require.NoError(t, err)
	assert.Equal(t, "title: a\n", string(data))

	keys, err := s.List(ctx, "tasks")
	require.NoError(t, err)
	assert.Equal(t, []string{"tasks/a.yaml", "tasks/b.yaml"}, keys)

	ok, err := s.Exists(ctx, "tasks/b.yaml")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, "tasks/b.yaml"))
	assert.ErrorIs(t, s.Delete(ctx, "tasks/b.yaml"), ErrNotFound)
	assert.Equal(t, 1, api.deletes)

	ok, err = s.Exists(ctx, "tasks/b.yaml")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestS3Storage_EmptyPrefix(t *testing.T) {
	api := newFakeS3()
	s := NewS3StorageWithClient(api, "bucket", "")

	require.NoError(t, s.Write(context.Background(), "inspectors/x.yaml", []byte("x")))
	assert.Contains(t, api.objects, "inspectors/x.yaml")

	keys, err := s.List(context.Background(), "inspectors")
	require.NoError(t, err)
	assert.Equal(t, []string{"inspectors/x.yaml"}, keys)
}

func TestS3Storage_WorksUnderOverlay(t *testing.T) {
	ctx := context.Background()
	s := NewS3StorageWithClient(newFakeS3(), "bucket", "p")
	require.NoError(t, s.Write(ctx, "tasks/a.yaml", []byte("a")))

	o := NewOverlay(s)
	require.NoError(t, o.Delete(ctx, "tasks/a.yaml"))
	require.NoError(t, o.Write(ctx, "tasks/b.yaml", []byte("b")))
	require.NoError(t, o.Commit(ctx))

	keys, err := s.List(ctx, "tasks")
	require.NoError(t, err)
	assert.Equal(t, []string{"tasks/b.yaml"}, keys)
}

func TestClean(t *testing.T) {
	for in, want := range map[string]string{
		"a/b":       "a/b",
		"/a//b/":    "a/b",
		"../../x":   "x",
		"a/./b/../": "a",
		"":          "",
	} {
		assert.Equal(t, want, Clean(in), in)
	}
}
