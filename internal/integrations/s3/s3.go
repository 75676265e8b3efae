package s3

import (
	"context"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	"nimbus/internal/types"
)

type (
	// Verifier checks that a profile's destination bucket actually exists
	// and is reachable with the configured credentials, before any rclone
	// transfer is attempted against it.
	Verifier interface {
		VerifyBucket(ctx context.Context, bucket string) error
	}

	verifier struct {
		client *minio.Client
	}
)

func NewVerifier(cred types.StorageCredentials) (Verifier, error) {
	endpoint := cred.Endpoint
	if endpoint == "" {
		endpoint = "s3.amazonaws.com"
	}

	mn, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cred.AccessKeyID, cred.SecretKey, ""),
		Secure: true,
		Region: cred.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, "invalid object storage credential")
	}
	return &verifier{client: mn}, nil
}

func (v *verifier) VerifyBucket(ctx context.Context, bucket string) error {
	exists, err := v.client.BucketExists(ctx, bucket)
	if err != nil {
		return errors.Wrapf(err, "failed to check bucket %s", bucket)
	}
	if !exists {
		return errors.Errorf("bucket %s does not exist or is not accessible", bucket)
	}
	return nil
}
