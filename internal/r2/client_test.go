package r2

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"learnassess/internal/config"
)

type fakeS3 struct {
	in   *s3.PutObjectInput
	body string
	err  error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func TestNewClientDisabled(t *testing.T) {
	c, err := NewClient(context.Background(), config.R2{BucketName: "b"}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = c.Upload(context.Background(), uuid.New(), "notes.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestUpload(t *testing.T) {
	fake := &fakeS3{}
	c := &Client{s3: fake, bucket: "study", publicURL: "https://pub.example.dev/base", logger: zap.NewNop()}
	session := uuid.New()

	u, err := c.Upload(context.Background(), session, "../lecture 1.pdf", strings.NewReader("pdf bytes"))
	require.NoError(t, err)

	key := aws.ToString(fake.in.Key)
	assert.True(t, strings.HasPrefix(key, "material/"+session.String()+"/"), key)
	assert.True(t, strings.HasSuffix(key, "/lecture 1.pdf"), key)
	assert.Equal(t, "study", aws.ToString(fake.in.Bucket))
	assert.Equal(t, "application/pdf", aws.ToString(fake.in.ContentType))
	assert.Equal(t, "pdf bytes", fake.body)
	assert.True(t, strings.HasPrefix(u, "https://pub.example.dev/base/material/"), u)
}

func TestUploadError(t *testing.T) {
	c := &Client{s3: &fakeS3{err: errors.New("denied")}, bucket: "b", publicURL: "https://x", logger: zap.NewNop()}
	_, err := c.Upload(context.Background(), uuid.New(), "a.txt", strings.NewReader("x"))
	assert.ErrorContains(t, err, "denied")
}
