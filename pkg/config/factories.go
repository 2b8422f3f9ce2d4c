package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mitchellh/mapstructure"

	"github.com/KreischerPanoptic/net-ipfs-hypermedia/internal/logger"
	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/store"
	badgerstore "github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/store/badger"
	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/store/memory"
	s3store "github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/store/s3"
)

// NewStore creates a document store based on configuration.
//
// This factory function uses the Type field to determine which store
// implementation to create, then decodes the type-specific configuration
// from the corresponding options map and passes it to the store's
// constructor.
//
// Supported types:
//   - "memory": Uses pkg/store/memory (in-memory storage, ephemeral)
//   - "badger": Uses pkg/store/badger (BadgerDB storage, persistent)
//   - "s3": Uses pkg/store/s3 (Amazon S3 or compatible object storage)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Loaded and validated configuration
//
// Returns:
//   - store.DocumentStore: Initialized document store
//   - error: Configuration or initialization error
func NewStore(ctx context.Context, cfg *Config) (store.DocumentStore, error) {
	switch cfg.Store.Type {
	case "memory":
		return memory.NewMemoryDocumentStore(ctx)
	case "badger":
		return newBadgerStore(ctx, cfg.Store.Badger)
	case "s3":
		return newS3Store(ctx, cfg.Store.S3)
	default:
		return nil, fmt.Errorf("unknown store type: %q (supported: memory, badger, s3)", cfg.Store.Type)
	}
}

// newBadgerStore creates a BadgerDB-backed persistent document store.
func newBadgerStore(ctx context.Context, options map[string]any) (store.DocumentStore, error) {
	// Decode the options into the store's config struct
	var storeCfg badgerstore.Config
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode badger store config: %w", err)
	}

	// Validate required fields
	if storeCfg.Path == "" {
		return nil, fmt.Errorf("badger store: path is required")
	}

	st, err := badgerstore.NewBadgerDocumentStore(ctx, storeCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create badger store: %w", err)
	}
	return st, nil
}

// newS3Store builds an AWS S3 client from the options map and creates the
// S3 document store on top of it.
func newS3Store(ctx context.Context, options map[string]any) (store.DocumentStore, error) {
	// Define the configuration struct for the S3 store
	type S3StoreConfig struct {
		Bucket          string `mapstructure:"bucket"`
		Region          string `mapstructure:"region"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		KeyPrefix       string `mapstructure:"key_prefix"`
		UsePathStyle    bool   `mapstructure:"use_path_style"`
		MaxRetries      int    `mapstructure:"max_retries"`
	}

	// Decode the options into the config struct
	var storeCfg S3StoreConfig
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode S3 store config: %w", err)
	}

	// Validate required fields
	if storeCfg.Bucket == "" {
		return nil, fmt.Errorf("s3 store: bucket is required")
	}
	if storeCfg.Region == "" && storeCfg.Endpoint == "" {
		return nil, fmt.Errorf("s3 store: either region or endpoint must be set")
	}
	if (storeCfg.AccessKeyID == "") != (storeCfg.SecretAccessKey == "") {
		return nil, fmt.Errorf("s3 store: access_key_id and secret_access_key must be set together")
	}

	// ========================================================================
	// Step 1: Build AWS Config
	// ========================================================================

	var configOptions []func(*awsConfig.LoadOptions) error

	if storeCfg.Region != "" {
		configOptions = append(configOptions, awsConfig.WithRegion(storeCfg.Region))
	}

	// Custom endpoint for S3-compatible storage (MinIO, Localstack, etc.)
	if storeCfg.Endpoint != "" {
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
				return aws.Endpoint{
					URL:               storeCfg.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(customResolver))
	}

	// Static credentials if provided, otherwise the default credential chain
	if storeCfg.AccessKeyID != "" && storeCfg.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(
			storeCfg.AccessKeyID,
			storeCfg.SecretAccessKey,
			"", // session token (empty for static credentials)
		)
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	// Retry transient errors (502, 503, timeouts, etc.) more aggressively
	// than the AWS default of 3 attempts
	maxRetries := storeCfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// ========================================================================
	// Step 2: Create S3 Client
	// ========================================================================

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// Path-style addressing is required by most S3-compatible endpoints
		if storeCfg.UsePathStyle || storeCfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	// ========================================================================
	// Step 3: Create S3 Document Store
	// ========================================================================

	st, err := s3store.NewS3DocumentStore(ctx, s3store.Config{
		Client:    client,
		Bucket:    storeCfg.Bucket,
		KeyPrefix: storeCfg.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 document store: %w", err)
	}

	logger.Info("S3 document store initialized: bucket=%s, region=%s, prefix=%s",
		storeCfg.Bucket, storeCfg.Region, storeCfg.KeyPrefix)

	return st, nil
}
