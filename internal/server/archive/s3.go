// Package archive keeps a copy of every generated summary in an S3-compatible
// bucket (MinIO in development).
package archive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/todokeeper/internal/server/config"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

type S3Archive struct {
	config *sc.Config
}

func NewS3Archive(config *sc.Config) *S3Archive {
	return &S3Archive{config: config}
}

// Enabled reports whether a bucket is configured.
func (a *S3Archive) Enabled() bool {
	return a.config.S3Bucket != ""
}

// ObjectKey returns a unique key grouped by day.
func ObjectKey(d time.Time) string {
	return fmt.Sprintf("summaries/%d/%02d/%02d/%v.txt", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (a *S3Archive) client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(a.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			a.config.S3RootUser,
			a.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if a.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(a.config.S3BaseEndpoint)
		}
		o.UsePathStyle = true
	}), nil
}

// Store uploads body as a plain-text object and returns its key.
func (a *S3Archive) Store(ctx context.Context, body string) (string, error) {
	if !a.Enabled() {
		return "", fmt.Errorf("archive: no bucket configured")
	}

	c, err := a.client(ctx)
	if err != nil {
		return "", fmt.Errorf("archive: aws config: %w", err)
	}

	key := ObjectKey(time.Now().UTC())
	_, err = putObject(c, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.config.S3Bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(body),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("archive: put object: %w", err)
	}
	return key, nil
}
