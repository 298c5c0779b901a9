// Package storage uploads profile photos to the backend's S3-compatible
// object storage.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/nospi-app/nospi/internal/logging"
)

// PutObjectAPI is the subset of the S3 client used for uploads.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) PutObjectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}

	openFile = os.Open
	nowFn    = time.Now
)

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".heic": "image/heic",
}

type Options struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	// PublicBaseURL is the backend URL serving public objects.
	PublicBaseURL string
}

type S3PhotoUploader struct {
	opts   Options
	logger logging.Logger

	mu     sync.Mutex
	client PutObjectAPI
}

func NewS3PhotoUploader(opts Options, logger logging.Logger) *S3PhotoUploader {
	return &S3PhotoUploader{opts: opts, logger: logger.With("component", "storage")}
}

// StorageKey returns a fresh object key for a photo uploaded at now.
func StorageKey(now time.Time, ext string) string {
	return fmt.Sprintf("users/%04d/%02d/%s%s", now.Year(), int(now.Month()), uuid.New(), strings.ToLower(ext))
}

func (u *S3PhotoUploader) getClient(ctx context.Context) (PutObjectAPI, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.client != nil {
		return u.client, nil
	}

	optFns := []func(*config.LoadOptions) error{config.WithRegion(u.opts.Region)}
	if u.opts.AccessKey != "" {
		optFns = append(optFns, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(u.opts.AccessKey, u.opts.SecretKey, ""),
		))
	}

	cfg, err := loadDefaultAWSConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	u.client = newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if u.opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(u.opts.Endpoint)
		}
		o.UsePathStyle = true
	})
	return u.client, nil
}

// PublicURL returns the address the backend serves key from.
func (u *S3PhotoUploader) PublicURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", strings.TrimRight(u.opts.PublicBaseURL, "/"), u.opts.Bucket, key)
}

// UploadPhoto stores the file at path under a new key and returns its
// public URL.
func (u *S3PhotoUploader) UploadPhoto(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	contentType, ok := contentTypes[ext]
	if !ok {
		return "", fmt.Errorf("unsupported photo type %q", ext)
	}

	f, err := openFile(path)
	if err != nil {
		return "", fmt.Errorf("open photo: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat photo: %w", err)
	}

	client, err := u.getClient(ctx)
	if err != nil {
		return "", err
	}

	key := StorageKey(nowFn(), ext)
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.opts.Bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(fi.Size()),
	})
	if err != nil {
		return "", fmt.Errorf("put photo: %w", err)
	}

	u.logger.Info(ctx, "photo uploaded", "bucket", u.opts.Bucket, "key", key, "bytes", fi.Size())
	return u.PublicURL(key), nil
}
