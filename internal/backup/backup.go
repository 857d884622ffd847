// Package backup copies the record tables to an S3-compatible bucket.
package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"wedding-site/internal/config"
	"wedding-site/internal/report"
	"wedding-site/internal/storage"
)

// ErrNotConfigured is returned when bucket or credentials are missing.
var ErrNotConfigured = errors.New("backup bucket not configured (BACKUP_BUCKET_NAME, BACKUP_ACCESS_KEY_ID, BACKUP_SECRET_ACCESS_KEY)")

// PutObjectAPI is the part of the S3 client the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader writes table snapshots as CSV objects.
type Uploader struct {
	client PutObjectAPI
	bucket string
	prefix string
	log    zerolog.Logger

	now func() time.Time
}

// NewUploader builds an S3 client from static credentials. A custom endpoint
// allows non-AWS providers.
func NewUploader(ctx context.Context, cfg config.BackupConfig, log zerolog.Logger) (*Uploader, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewUploaderWithClient(client, cfg.Bucket, cfg.Prefix, log), nil
}

// NewUploaderWithClient uses an existing client.
func NewUploaderWithClient(client PutObjectAPI, bucket, prefix string, log zerolog.Logger) *Uploader {
	return &Uploader{
		client: client,
		bucket: bucket,
		prefix: prefix,
		log:    log.With().Str("component", "backup").Logger(),
		now:    time.Now,
	}
}

// Run uploads every table of store under <prefix>/<UTC timestamp>/ and
// returns the object keys written.
func (u *Uploader) Run(ctx context.Context, store storage.Store) ([]string, error) {
	stamp := u.now().UTC().Format("20060102T150405Z")

	var keys []string
	for _, table := range storage.Tables {
		rows, err := store.ReadAll(ctx, table)
		if err != nil {
			return keys, fmt.Errorf("read %s: %w", table, err)
		}

		var buf bytes.Buffer
		if err := report.WriteCSV(&buf, table.Columns(), rows); err != nil {
			return keys, fmt.Errorf("encode %s: %w", table, err)
		}

		key := path.Join(u.prefix, stamp, string(table)+".csv")
		_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(u.bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(buf.Bytes()),
			ContentType:   aws.String("text/csv"),
			ContentLength: aws.Int64(int64(buf.Len())),
		})
		if err != nil {
			return keys, fmt.Errorf("upload %s: %w", key, err)
		}

		u.log.Info().Str("key", key).Int("rows", len(rows)).Msg("Uploaded table")
		keys = append(keys, key)
	}
	return keys, nil
}
