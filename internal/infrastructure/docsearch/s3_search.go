// Package docsearch locates invoice documents in S3-compatible object storage.
package docsearch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	infraconfig "github.com/ardash/backend/internal/infrastructure/config"
)

// Result describes the outcome of a document lookup. When no document
// matches the invoice number, Found is false and the URL fields are empty.
type Result struct {
	Found       bool   `json:"found"`
	FileName    string `json:"file_name,omitempty"`
	ViewURL     string `json:"view_url,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
}

// Searcher finds stored invoice documents by invoice number
type Searcher interface {
	Search(ctx context.Context, invoiceNumber string) (Result, error)
}

// S3Searcher implements Searcher against any S3-compatible storage
// (AWS S3, MinIO, etc.). Documents are expected to be stored with the
// invoice number as the leading part of the object name.
type S3Searcher struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	prefix        string
	presignExpiry time.Duration
	logger        *zap.Logger
}

// S3SearcherOption is a functional option for configuring S3Searcher
type S3SearcherOption func(*S3Searcher)

// WithLogger sets a custom logger for S3Searcher
func WithLogger(logger *zap.Logger) S3SearcherOption {
	return func(s *S3Searcher) {
		s.logger = logger
	}
}

// NewS3Searcher creates a document searcher from storage configuration
func NewS3Searcher(cfg *infraconfig.StorageConfig, opts ...S3SearcherOption) (*S3Searcher, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKeyID == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretAccessKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			endpoint := cfg.Endpoint
			if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
				endpoint = "https://" + endpoint
			}
			if _, err := url.Parse(endpoint); err == nil {
				o.BaseEndpoint = aws.String(endpoint)
			}
		}
	})

	searcher := &S3Searcher{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		prefix:        strings.Trim(cfg.Prefix, "/"),
		presignExpiry: cfg.PresignExpiry,
		logger:        zap.NewNop(),
	}

	for _, opt := range opts {
		opt(searcher)
	}

	if searcher.presignExpiry == 0 {
		searcher.presignExpiry = 15 * time.Minute
	}

	return searcher, nil
}

// Search looks for a document whose object name starts with the invoice
// number. When several match, the lexicographically first key wins, which
// keeps repeated lookups for the same invoice stable.
func (s *S3Searcher) Search(ctx context.Context, invoiceNumber string) (Result, error) {
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if invoiceNumber == "" {
		return Result{}, errors.New("invoice number is required")
	}

	keyPrefix := invoiceNumber
	if s.prefix != "" {
		keyPrefix = s.prefix + "/" + invoiceNumber
	}

	listed, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(keyPrefix),
		MaxKeys: aws.Int32(10),
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to list documents: %w", err)
	}

	var key string
	for _, obj := range listed.Contents {
		if obj.Key == nil || strings.HasSuffix(*obj.Key, "/") {
			continue
		}
		if key == "" || *obj.Key < key {
			key = *obj.Key
		}
	}
	if key == "" {
		return Result{Found: false}, nil
	}

	fileName := path.Base(key)

	viewReq, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(s.bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String("inline"),
	}, s3.WithPresignExpires(s.presignExpiry))
	if err != nil {
		return Result{}, fmt.Errorf("failed to generate view URL: %w", err)
	}

	downloadReq, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(s.bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", fileName)),
	}, s3.WithPresignExpires(s.presignExpiry))
	if err != nil {
		return Result{}, fmt.Errorf("failed to generate download URL: %w", err)
	}

	s.logger.Debug("Document located",
		zap.String("invoice_number", invoiceNumber),
		zap.String("key", key))

	return Result{
		Found:       true,
		FileName:    fileName,
		ViewURL:     viewReq.URL,
		DownloadURL: downloadReq.URL,
	}, nil
}

// Ensure S3Searcher implements Searcher
var _ Searcher = (*S3Searcher)(nil)
