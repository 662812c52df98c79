package publish

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"path"

	"github.com/btangonan/gif-maker/logger"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type gcsPublisher struct {
	credentialsJSON []byte
	bucket          string
	prefix          string
}

func newGCSPublisher(cfg map[string]string) (Publisher, error) {
	if cfg["bucket"] == "" {
		return nil, fmt.Errorf("gcs publisher requires a bucket")
	}

	// The service account key arrives base64-wrapped in the environment;
	// accept raw JSON as well.
	raw := cfg["credentialsJSON"]
	credentialsJSON, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		credentialsJSON = []byte(raw)
	}

	return &gcsPublisher{
		credentialsJSON: credentialsJSON,
		bucket:          cfg["bucket"],
		prefix:          cfg["prefix"],
	}, nil
}

func (p *gcsPublisher) Upload(ctx context.Context, name string, reader io.Reader) error {
	client, err := storage.NewClient(ctx, option.WithCredentialsJSON(p.credentialsJSON))
	if err != nil {
		return fmt.Errorf("storage.NewClient: %w", err)
	}
	defer client.Close()

	object := path.Join(p.prefix, name)
	wc := client.Bucket(p.bucket).Object(object).NewWriter(ctx)
	wc.ContentType = "image/gif"

	if _, err := io.Copy(wc, reader); err != nil {
		return fmt.Errorf("io.Copy: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("Writer.Close: %w", err)
	}

	logger.Infof("Published '%s' to gs://%s/%s", name, p.bucket, object)
	return nil
}
