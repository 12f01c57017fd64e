package filestorage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Provider keeps attachment blobs. Keys are "<pr id>/<uuid><ext>".
type Provider interface {
	Upload(ctx context.Context, prID, fileName, contentType string, reader io.Reader, size int64) (key string, err error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

var Instance Provider

type impl struct {
	s3client   *minio.Client
	bucketName string
}

func NewInstance(s3client *minio.Client, bucketName string) {
	Instance = &impl{
		s3client:   s3client,
		bucketName: bucketName,
	}
}

func ObjectKey(prID, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("%s/%s%s", prID, uuid.NewString(), ext)
}

func (i impl) Upload(ctx context.Context, prID, fileName, contentType string, reader io.Reader, size int64) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := ObjectKey(prID, fileName)
	_, err := i.s3client.PutObject(ctx, i.bucketName, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"original-name": fileName,
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "error uploading attachment")
	}
	log.WithField("pr_id", prID).WithField("object_key", key).Info("attachment uploaded")
	return key, nil
}

func (i impl) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := i.s3client.GetObject(ctx, i.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "error reading attachment")
	}
	// GetObject is lazy; Stat surfaces a missing key before streaming starts
	if _, err = obj.Stat(); err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, errors.Errorf("attachment object %s not found", key)
		}
		return nil, errors.Wrap(err, "error reading attachment")
	}
	return obj, nil
}

func (i impl) Remove(ctx context.Context, key string) error {
	err := i.s3client.RemoveObject(ctx, i.bucketName, key, minio.RemoveObjectOptions{})
	if err != nil {
		return errors.Wrap(err, "error removing attachment object")
	}
	return nil
}
