package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/trailkeeper/internal/common"
	sc "github.com/dmitrijs2005/trailkeeper/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPictureServiceForTest() *PictureService {
	return NewPictureService(&sc.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "trailkeeper",
	})
}

// stubPresign replaces the AWS seams and records what was presigned.
func stubPresign(t *testing.T) *[]string {
	t.Helper()

	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	origPut := presignPutObject
	origGet := presignGetObject
	origID := newPictureID
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignPutObject = origPut
		presignGetObject = origGet
		newPictureID = origID
	})

	var calls []string
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&lo); err != nil {
				t.Fatalf("load options fn error: %v", err)
			}
		}
		if lo.Region != "us-east-1" {
			t.Fatalf("region not applied: %q", lo.Region)
		}
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		if opts.BaseEndpoint == nil || *opts.BaseEndpoint != "http://127.0.0.1:9000" {
			t.Fatalf("BaseEndpoint not applied: %v", opts.BaseEndpoint)
		}
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient { return &s3.PresignClient{} }
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		calls = append(calls, "PUT "+*in.Bucket+"/"+*in.Key)
		return &v4.PresignedHTTPRequest{URL: "http://s3/put/" + *in.Key, Method: http.MethodPut}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		calls = append(calls, "GET "+*in.Bucket+"/"+*in.Key)
		return &v4.PresignedHTTPRequest{URL: "http://s3/get/" + *in.Key, Method: http.MethodGet}, nil
	}
	newPictureID = func() string { return "p-1" }
	return &calls
}

func TestPictureService_PresignPutAllocatesKey(t *testing.T) {
	calls := stubPresign(t)
	svc := newPictureServiceForTest()

	key, url, err := svc.PresignPut(context.Background(), "u1", "")
	require.NoError(t, err)
	assert.Equal(t, "users/u1/pictures/p-1", key)
	assert.Equal(t, "http://s3/put/users/u1/pictures/p-1", url)
	assert.Equal(t, []string{"PUT trailkeeper/users/u1/pictures/p-1"}, *calls)
}

func TestPictureService_PresignPutExistingKey(t *testing.T) {
	stubPresign(t)
	svc := newPictureServiceForTest()

	key, _, err := svc.PresignPut(context.Background(), "u1", "users/u1/pictures/abc")
	require.NoError(t, err)
	assert.Equal(t, "users/u1/pictures/abc", key)

	_, _, err = svc.PresignPut(context.Background(), "u1", "users/u2/pictures/abc")
	assert.ErrorIs(t, err, common.ErrOwnershipConflict)
}

func TestPictureService_PresignGet(t *testing.T) {
	calls := stubPresign(t)
	svc := newPictureServiceForTest()
	ctx := context.Background()

	url, err := svc.PresignGet(ctx, "u1", "users/u1/pictures/abc")
	require.NoError(t, err)
	assert.Equal(t, "http://s3/get/users/u1/pictures/abc", url)
	assert.Equal(t, []string{"GET trailkeeper/users/u1/pictures/abc"}, *calls)

	for _, key := range []string{"users/u2/pictures/abc", "users/u1/pictures/", "users/u1/pictures/a/b", "other"} {
		_, err := svc.PresignGet(ctx, "u1", key)
		assert.ErrorIs(t, err, common.ErrOwnershipConflict, key)
	}

	_, err = svc.PresignGet(ctx, "", "users/u1/pictures/abc")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestPictureService_Failures(t *testing.T) {
	stubPresign(t)
	svc := newPictureServiceForTest()
	ctx := context.Background()

	presignPutObject = func(*s3.PresignClient, context.Context, *s3.PutObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("put-fail")
	}
	_, _, err := svc.PresignPut(ctx, "u1", "")
	assert.EqualError(t, err, "put-fail")

	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	_, err = svc.PresignGet(ctx, "u1", "users/u1/pictures/abc")
	assert.EqualError(t, err, "load-fail")

	_, _, err = svc.PresignPut(ctx, "", "")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestPictureKey(t *testing.T) {
	key := PictureKey("u9")
	assert.True(t, strings.HasPrefix(key, "users/u9/pictures/"))
	assert.Greater(t, len(key), len("users/u9/pictures/"))
}
