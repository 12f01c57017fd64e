package s3client

import (
	"context"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	"procurement-backend/config"
)

var Client *minio.Client

func Connect(ctx context.Context) error {
	useSSL := config.Conf.S3.UseSSL != nil && *config.Conf.S3.UseSSL
	minioClient, err := minio.New(config.Conf.S3.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.Conf.S3.AccessKeyID, config.Conf.S3.SecretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return errors.Wrap(err, "error creating s3 client")
	}
	if err = MakeBucket(ctx, minioClient, config.Conf.S3.BucketName); err != nil {
		return err
	}
	Client = minioClient
	return nil
}

func MakeBucket(ctx context.Context, minioClient *minio.Client, bucketName string) error {
	location := "us-east-1"
	exists, err := minioClient.BucketExists(ctx, bucketName)
	if err != nil {
		return errors.Wrapf(err, "error checking bucket %s", bucketName)
	}
	if exists {
		return nil
	}
	err = minioClient.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: location})
	if err != nil {
		return errors.Wrapf(err, "error creating bucket %s", bucketName)
	}
	return nil
}
