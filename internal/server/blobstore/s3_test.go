package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
	puts    int
	headErr error
	getErr  error
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: map[string][]byte{}} }

func (f *fakeS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	if _, ok := f.objects[*in.Key]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = b
	f.puts++
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	b, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func TestNewS3Store_AppliesConfig(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		creds, err := lo.Credentials.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "admin", creds.AccessKeyID)
		return aws.Config{}, nil
	}

	fake := newFakeS3()
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		var o s3.Options
		for _, fn := range optFns {
			fn(&o)
		}
		assert.Equal(t, "http://minio:9000", aws.ToString(o.BaseEndpoint))
		assert.True(t, o.UsePathStyle)
		return fake
	}

	s, err := NewS3Store(context.Background(), S3Config{
		Region: "us-east-1", AccessKey: "admin", SecretKey: "pw", BaseEndpoint: "http://minio:9000", Bucket: "vault",
	})
	require.NoError(t, err)
	assert.Equal(t, "vault", s.bucket)
}

func TestNewS3Store_LoadError(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no creds")
	}

	_, err := NewS3Store(context.Background(), S3Config{})
	assert.ErrorContains(t, err, "no creds")
}

func TestS3Store_PutGet(t *testing.T) {
	fake := newFakeS3()
	s := &S3Store{client: fake, bucket: "vault"}
	ctx := context.Background()

	h, err := s.Put(ctx, []byte("sealed"))
	require.NoError(t, err)
	_, err = s.Put(ctx, []byte("sealed"))
	require.NoError(t, err)
	assert.Equal(t, 1, fake.puts, "second put of same content must be skipped")

	got, err := s.Get(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, []byte("sealed"), got)
}

func TestS3Store_GetErrors(t *testing.T) {
	fake := newFakeS3()
	s := &S3Store{client: fake, bucket: "vault"}
	ctx := context.Background()

	h, err := ContentID([]byte("absent"))
	require.NoError(t, err)
	_, err = s.Get(ctx, h)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	fake.objects[objectKey(h)] = []byte("not absent")
	_, err = s.Get(ctx, h)
	assert.ErrorIs(t, err, ErrIntegrity)

	fake.getErr = errors.New("timeout")
	_, err = s.Get(ctx, h)
	assert.ErrorContains(t, err, "timeout")
}

func TestS3Store_PutHeadError(t *testing.T) {
	fake := newFakeS3()
	fake.headErr = errors.New("forbidden")
	s := &S3Store{client: fake, bucket: "vault"}

	_, err := s.Put(context.Background(), []byte("x"))
	assert.ErrorContains(t, err, "forbidden")
	assert.Zero(t, fake.puts)
}

func TestS3Store_Has(t *testing.T) {
	fake := newFakeS3()
	s := &S3Store{client: fake, bucket: "vault"}
	ctx := context.Background()

	h, err := s.Put(ctx, []byte("sealed"))
	require.NoError(t, err)

	ok, err := s.Has(ctx, h)
	require.NoError(t, err)
	assert.True(t, ok)

	absent, err := ContentID([]byte("absent"))
	require.NoError(t, err)
	ok, err = s.Has(ctx, absent)
	require.NoError(t, err)
	assert.False(t, ok)

	fake.headErr = errors.New("throttled")
	_, err = s.Has(ctx, h)
	assert.ErrorContains(t, err, "throttled")
}
