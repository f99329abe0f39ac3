// AngelaMos | 2026
// storage_test.go

package core

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	put       *s3.PutObjectInput
	body      string
	deleteErr error
	headErr   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = in
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = string(data)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, _ *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	return &s3.DeleteObjectOutput{}, f.deleteErr
}

func (f *fakeS3) HeadBucket(_ context.Context, _ *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func TestStorage_Put(t *testing.T) {
	client := &fakeS3{}
	s := NewStorageWithClient(client, "media", "https://cdn.example.com/")

	require.NoError(t, s.Put(t.Context(), "avatars/u1/a.png", strings.NewReader("png"), 3, "image/png"))

	assert.Equal(t, "media", aws.ToString(client.put.Bucket))
	assert.Equal(t, "avatars/u1/a.png", aws.ToString(client.put.Key))
	assert.Equal(t, "image/png", aws.ToString(client.put.ContentType))
	assert.Equal(t, int64(3), aws.ToInt64(client.put.ContentLength))
	assert.Equal(t, "png", client.body)
}

func TestStorage_URL(t *testing.T) {
	withCDN := NewStorageWithClient(&fakeS3{}, "media", "https://cdn.example.com/")
	assert.Equal(t, "https://cdn.example.com/avatars/a.png", withCDN.URL("avatars/a.png"))
	assert.Empty(t, withCDN.URL(""))

	bare := NewStorageWithClient(&fakeS3{}, "media", "")
	assert.Equal(t, "/media/avatars/a.png", bare.URL("avatars/a.png"))
}

func TestStorage_DeleteIgnoresMissingKey(t *testing.T) {
	s := NewStorageWithClient(&fakeS3{deleteErr: &types.NoSuchKey{}}, "media", "")
	assert.NoError(t, s.Delete(t.Context(), "gone"))

	s = NewStorageWithClient(&fakeS3{deleteErr: errors.New("timeout")}, "media", "")
	assert.Error(t, s.Delete(t.Context(), "gone"))
}

func TestStorage_Ping(t *testing.T) {
	s := NewStorageWithClient(&fakeS3{}, "media", "")
	require.NoError(t, s.Ping(t.Context()))

	s = NewStorageWithClient(&fakeS3{
		headErr: &smithy.GenericAPIError{Code: "NoSuchBucket", Message: "missing"},
	}, "media", "")
	err := s.Ping(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NoSuchBucket")
}
