package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

type S3StoreConfig struct {
	BucketName string
	// Endpoint переопределяет адрес AWS, например https://<account>.r2.cloudflarestorage.com.
	Endpoint string
	Region   string
	// Статические ключи; если пусто, используется стандартная цепочка AWS.
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
}

type s3Store struct {
	s3Client      *s3.Client
	bucketName    string
	publicBaseURL string
}

func NewS3Store(ctx context.Context, cfg S3StoreConfig) (ObjectStore, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("invalid S3 configuration: bucket name is required")
	}

	region := cfg.Region
	if region == "" && cfg.Endpoint != "" {
		region = "auto" // R2 и другие S3-совместимые хранилища
	}
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	sdkCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3StoreWithClient(client, cfg.BucketName, cfg.PublicBaseURL), nil
}

// NewS3StoreWithClient оборачивает уже настроенный клиент.
func NewS3StoreWithClient(client *s3.Client, bucketName, publicBaseURL string) ObjectStore {
	return &s3Store{
		s3Client:      client,
		bucketName:    bucketName,
		publicBaseURL: publicBaseURL,
	}
}

func (u *s3Store) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	putObjectInput := &s3.PutObjectInput{
		Bucket:      aws.String(u.bucketName),
		Key:         aws.String(key),
		Body:        reader,
		ContentType: aws.String(contentType),
	}

	result, err := u.s3Client.PutObject(ctx, putObjectInput)
	if err != nil {
		return nil, fmt.Errorf("failed to upload object (key: %s): %w", key, err)
	}

	etag := ""
	if result.ETag != nil {
		// ETag от S3-совместимых API часто приходит в двойных кавычках, их нужно убрать.
		etag = strings.Trim(*result.ETag, "\"")
	}

	return &UploadResult{
		Key:      key,
		Location: u.publicURL(key),
		ETag:     etag,
	}, nil
}

func (u *s3Store) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := u.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NoSuchKey" || apiErr.ErrorCode() == "NotFound") {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("failed to download object (key: %s): %w", key, err)
	}
	return resp.Body, nil
}

func (u *s3Store) publicURL(key string) string {
	return joinPublicURL(u.publicBaseURL, key)
}

func joinPublicURL(base, key string) string {
	if base == "" || key == "" {
		return "" // Не можем сформировать URL без этих данных
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	if !strings.HasSuffix(baseURL.Path, "/") {
		baseURL.Path += "/"
	}
	pathURL, err := url.Parse(strings.TrimPrefix(key, "/"))
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(pathURL).String()
}
