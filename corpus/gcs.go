package corpus

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// GCSReplica mirrors every Add'd program to a GCS bucket, for a durable
// off-host copy of the corpus independent of any one worker's local disk.
// It is optional: a Corpus works the same with or without one attached.
type GCSReplica struct {
	bucket *storage.BucketHandle
	prefix string
}

// OpenGCSReplica opens bucket (which must already exist) for writing corpus
// entries under prefix.
func OpenGCSReplica(ctx context.Context, bucket, prefix string) (*GCSReplica, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("corpus: gcs client: %w", err)
	}
	return &GCSReplica{bucket: client.Bucket(bucket), prefix: prefix}, nil
}

// Upload writes the canonical program bytes for fingerprint fp to the bucket.
func (g *GCSReplica) Upload(ctx context.Context, fp string, data []byte) error {
	w := g.bucket.Object(g.prefix + fp).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("corpus: gcs upload %s: %w", fp, err)
	}
	return w.Close()
}

// Download fetches the canonical program bytes for fingerprint fp.
func (g *GCSReplica) Download(ctx context.Context, fp string) ([]byte, error) {
	r, err := g.bucket.Object(g.prefix + fp).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("corpus: gcs download %s: %w", fp, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}
