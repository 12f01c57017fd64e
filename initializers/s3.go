package initializers

import (
	"context"

	log "github.com/sirupsen/logrus"
	"procurement-backend/config"
	filestorage "procurement-backend/lib/file-storage"
	s3client "procurement-backend/s3"
)

func InitS3(ctx context.Context) {
	if err := s3client.Connect(ctx); err != nil {
		panic(err.Error())
	}
	filestorage.NewInstance(s3client.Client, config.Conf.S3.BucketName)
	log.WithField("bucket", config.Conf.S3.BucketName).Info("s3 client initialized")
}
