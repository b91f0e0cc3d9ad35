package export

import (
	"context"
	"fmt"
	"path"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCSOptions struct {
	Bucket string
	// Endpoint points the client at an emulator. Authentication is disabled when set.
	Endpoint        string
	CredentialsFile string
}

// GCS writes objects into a single bucket.
type GCS struct {
	client     *storage.Client
	bucket     *storage.BucketHandle
	bucketName string
}

func NewGCS(ctx context.Context, opts GCSOptions) (*GCS, error) {
	var clientOptions []option.ClientOption

	switch {
	case opts.Endpoint != "":
		clientOptions = append(clientOptions, option.WithEndpoint(opts.Endpoint), option.WithoutAuthentication())
	case opts.CredentialsFile != "":
		clientOptions = append(clientOptions, option.WithCredentialsFile(opts.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, clientOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCS{
		client:     client,
		bucket:     client.Bucket(opts.Bucket),
		bucketName: opts.Bucket,
	}, nil
}

func contentType(objectPath string) string {
	switch path.Ext(objectPath) {
	case ".json":
		return "application/json"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

func (that *GCS) Upload(ctx context.Context, objectPath string, data []byte, metadata map[string]string) (string, error) {
	writer := that.bucket.Object(objectPath).NewWriter(ctx)
	writer.ContentType = contentType(objectPath)
	writer.Metadata = metadata

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("failed to write to GCS: %w", err)
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", that.bucketName, objectPath), nil
}

func (that *GCS) Close() error {
	if err := that.client.Close(); err != nil {
		return fmt.Errorf("failed to close storage client: %w", err)
	}

	return nil
}
