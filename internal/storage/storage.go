// Package storage provides persistent storage for materialized video
// artifacts. It defines the Storage port and implementations for
// local disk and optional S3 delivery.
package storage

import (
	"context"
	"io"
)

// Storage defines the interface for artifact storage. The local disk
// copy is authoritative; S3 upload is an optional delivery channel.
type Storage interface {
	// SaveArtifact writes data under filename and returns the stored
	// file path.
	SaveArtifact(ctx context.Context, filename string, data io.Reader) (path string, err error)

	// FindArtifact returns the path of an already stored artifact for
	// the job ID, if one exists. It is the idempotence check that
	// prevents downloading the same artifact twice.
	FindArtifact(ctx context.Context, jobID string) (path string, ok bool, err error)

	// UploadToS3 uploads data to S3 and returns the public URL.
	// Returns ErrS3NotConfigured if S3 is not configured.
	UploadToS3(ctx context.Context, key string, data io.Reader) (url string, err error)
}
