// Package s3 implements a document store backed by Amazon S3 or
// S3-compatible object storage.
//
// Documents are stored as objects keyed by their root digest, with the
// indexed attributes carried in object metadata and the topic index kept as
// small pointer objects. The bucket must already exist.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/store"
)

// Object metadata keys for the indexed document attributes.
const (
	metaTopic    = "hypermedia-topic"
	metaVersion  = "hypermedia-version"
	metaName     = "hypermedia-name"
	metaSize     = "hypermedia-size"
	metaStoredAt = "hypermedia-stored-at"
)

// S3DocumentStore implements store.DocumentStore on top of an S3 bucket.
//
// Key layout (under the optional prefix):
//
//	docs/<hash>     serialized document text, attributes in object metadata
//	topics/<topic>  pointer object whose body is the document hash
//
// Concurrent writes to the same digest are last-write-wins, which is
// harmless here: the digest fixes the document content.
type S3DocumentStore struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
}

// Config contains configuration for the S3 document store.
type Config struct {
	// Client is the configured S3 client
	Client *s3.Client

	// Bucket is the S3 bucket name; it must already exist
	Bucket string

	// KeyPrefix is an optional prefix for all object keys
	KeyPrefix string
}

// NewS3DocumentStore creates an S3-backed document store and verifies
// bucket access.
func NewS3DocumentStore(ctx context.Context, cfg Config) (*S3DocumentStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("s3 store requires a configured client")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 store requires a bucket name")
	}

	_, err := cfg.Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("access bucket %q: %w", cfg.Bucket, err)
	}

	return &S3DocumentStore{
		client:    cfg.Client,
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
	}, nil
}

func (s *S3DocumentStore) docKey(hash string) string {
	return s.keyPrefix + "docs/" + hash
}

func (s *S3DocumentStore) topicKey(topic string) string {
	return s.keyPrefix + "topics/" + topic
}

// Put stores the document object and, when a topic is set, the topic
// pointer object.
func (s *S3DocumentStore) Put(ctx context.Context, doc *store.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	metadata := map[string]string{
		metaVersion:  doc.Version,
		metaName:     doc.Name,
		metaSize:     strconv.FormatUint(doc.Size, 10),
		metaStoredAt: strconv.FormatInt(doc.StoredAt.Unix(), 10),
	}
	if doc.Topic != "" {
		metadata[metaTopic] = doc.Topic
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(s.docKey(doc.Hash)),
		Body:     strings.NewReader(doc.Text),
		Metadata: metadata,
	})
	if err != nil {
		return fmt.Errorf("write document %s: %w", doc.Hash, err)
	}

	if doc.Topic != "" {
		_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.topicKey(doc.Topic)),
			Body:   strings.NewReader(doc.Hash),
		})
		if err != nil {
			return fmt.Errorf("write topic index for %s: %w", doc.Hash, err)
		}
	}
	return nil
}

// Get retrieves a document by its root digest.
func (s *S3DocumentStore) Get(ctx context.Context, hash string) (*store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.docKey(hash)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("read document %s: %w", hash, err)
	}
	defer out.Body.Close()

	text, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read document body %s: %w", hash, err)
	}

	doc := &store.Document{
		Hash:    hash,
		Topic:   out.Metadata[metaTopic],
		Version: out.Metadata[metaVersion],
		Name:    out.Metadata[metaName],
		Text:    string(text),
	}
	if v := out.Metadata[metaSize]; v != "" {
		doc.Size, _ = strconv.ParseUint(v, 10, 64)
	}
	if v := out.Metadata[metaStoredAt]; v != "" {
		sec, _ := strconv.ParseInt(v, 10, 64)
		doc.StoredAt = time.Unix(sec, 0).UTC()
	}
	return doc, nil
}

// GetByTopic resolves the topic pointer object and fetches the document.
func (s *S3DocumentStore) GetByTopic(ctx context.Context, topic string) (*store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.topicKey(topic)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("read topic index %s: %w", topic, err)
	}
	defer out.Body.Close()

	hash, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read topic index body %s: %w", topic, err)
	}
	return s.Get(ctx, string(hash))
}

// Exists reports whether a document object exists for the digest.
func (s *S3DocumentStore) Exists(ctx context.Context, hash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.docKey(hash)),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("head document %s: %w", hash, err)
	}
	return true, nil
}

// List pages through the document namespace and returns the stored digests.
func (s *S3DocumentStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := s.keyPrefix + "docs/"
	var hashes []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			hashes = append(hashes, strings.TrimPrefix(*obj.Key, prefix))
		}
	}
	return hashes, nil
}

// Delete removes the document object and its topic pointer. Deleting an
// absent document is a no-op.
func (s *S3DocumentStore) Delete(ctx context.Context, hash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc, err := s.Get(ctx, hash)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if doc.Topic != "" {
		_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.topicKey(doc.Topic)),
		})
		if err != nil {
			return fmt.Errorf("delete topic index for %s: %w", hash, err)
		}
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.docKey(hash)),
	})
	if err != nil {
		return fmt.Errorf("delete document %s: %w", hash, err)
	}
	return nil
}

// Close releases the store. The S3 client holds no resources that need
// explicit shutdown.
func (s *S3DocumentStore) Close() error { return nil }

// isNotFound reports whether an S3 error means the object does not exist.
func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var notFound *types.NotFound
	return errors.As(err, &notFound)
}
