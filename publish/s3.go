package publish

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/btangonan/gif-maker/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type s3Publisher struct {
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

func newS3Publisher(cfg map[string]string) (Publisher, error) {
	if cfg["bucket"] == "" {
		return nil, fmt.Errorf("s3 publisher requires a bucket")
	}

	creds := credentials.NewStaticCredentialsProvider(cfg["accessKey"], cfg["secretKey"], "")
	client := s3.New(s3.Options{
		Region:      cfg["region"],
		Credentials: creds,
	})

	return &s3Publisher{
		uploader: manager.NewUploader(client),
		bucket:   cfg["bucket"],
		prefix:   cfg["prefix"],
	}, nil
}

func (p *s3Publisher) Upload(ctx context.Context, name string, reader io.Reader) error {
	key := path.Join(p.prefix, name)

	_, err := p.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        reader,
		ContentType: aws.String("image/gif"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s to bucket %s: %w", key, p.bucket, err)
	}

	logger.Infof("Published '%s' to s3://%s/%s", name, p.bucket, key)
	return nil
}
