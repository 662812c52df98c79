// Package publish mirrors finished GIFs to an optional remote backend. The
// local output directory remains the source of truth; publishing is a
// best-effort copy the orchestrator logs and forgets.
package publish

import (
	"context"
	"fmt"
	"io"
)

// A Publisher pushes one artifact to a remote destination under its name.
type Publisher interface {
	Upload(ctx context.Context, name string, reader io.Reader) error
}

// New builds a publisher for the named backend ("s3", "gcs" or "sftp") from
// a flat credential/settings map. An empty backend returns (nil, nil):
// publishing disabled.
func New(backend string, cfg map[string]string) (Publisher, error) {
	switch backend {
	case "":
		return nil, nil
	case "s3":
		return newS3Publisher(cfg)
	case "gcs":
		return newGCSPublisher(cfg)
	case "sftp":
		return newSFTPPublisher(cfg)
	default:
		return nil, fmt.Errorf("unknown publish backend: %s", backend)
	}
}
