package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rpupo63/portfolio-site-backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectAPI struct {
	put     *s3.PutObjectInput
	body    string
	deleted []string
	err     error
}

func (f *fakeObjectAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.put = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjectAPI) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3StorePutAndDelete(t *testing.T) {
	api := &fakeObjectAPI{}
	store := newS3Store(api, "resumes-bucket", "https://cdn.example.com/")

	url, err := store.Put(context.Background(), "resumes/a.pdf", strings.NewReader("%PDF"), 4, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/resumes/a.pdf", url)
	assert.Equal(t, "resumes-bucket", aws.ToString(api.put.Bucket))
	assert.Equal(t, "application/pdf", aws.ToString(api.put.ContentType))
	assert.EqualValues(t, 4, aws.ToInt64(api.put.ContentLength))
	assert.Equal(t, "%PDF", api.body)

	require.NoError(t, store.Delete(context.Background(), "resumes/a.pdf"))
	assert.Equal(t, []string{"resumes/a.pdf"}, api.deleted)
}

func TestS3StoreErrors(t *testing.T) {
	store := newS3Store(&fakeObjectAPI{err: errors.New("access denied")}, "b", "https://x")

	_, err := store.Put(context.Background(), "k", strings.NewReader(""), 0, "application/pdf")
	assert.ErrorContains(t, err, "access denied")
	assert.ErrorContains(t, store.Delete(context.Background(), "k"), "access denied")
}

func TestResumeKey(t *testing.T) {
	key := ResumeKey(`C:\Users\me\My Resume (final).pdf`)
	assert.True(t, strings.HasPrefix(key, "resumes/"))
	assert.True(t, strings.HasSuffix(key, "-My_Resume_final_.pdf"), key)

	assert.True(t, strings.HasSuffix(ResumeKey("../../"), "-resume.pdf"))
	assert.NotEqual(t, ResumeKey("a.pdf"), ResumeKey("a.pdf"))
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), config.Config{"STORAGE_DRIVER": "ftp"})
	assert.ErrorContains(t, err, "ftp")

	_, err = New(context.Background(), config.Config{"STORAGE_DRIVER": "s3"})
	assert.ErrorContains(t, err, "S3_BUCKET")
}
