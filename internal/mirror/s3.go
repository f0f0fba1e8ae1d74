// Package mirror copies installed databases to an S3 bucket.
package mirror

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"github.com/NethermindEth/geoipupdate/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const (
	// HashMetadataKey holds the MD5 of the uploaded database.
	HashMetadataKey = "md5"
	// ModifiedMetadataKey holds the server side modification time.
	ModifiedMetadataKey = "date-of-source-database-modification"
)

// S3API is the subset of the S3 client used by S3Mirror.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Mirror uploads installed databases to a bucket, under an optional
// prefix, keyed by the database file name.
type S3Mirror struct {
	client     S3API
	fs         afero.Fs
	bucket     string
	prefix     string
	disableSSE bool
}

// NewS3Mirror builds an S3 client from the default AWS config chain. Static
// credentials and a custom endpoint from settings take precedence.
func NewS3Mirror(ctx context.Context, fs afero.Fs, settings config.S3Settings) (*S3Mirror, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if settings.Region != "" {
		opts = append(opts, awsconfig.WithRegion(settings.Region))
	}
	if settings.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			settings.AccessKeyID,
			settings.SecretAccessKey,
			"",
		)))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLoadingAWSConfig, err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if settings.Endpoint != "" {
			o.BaseEndpoint = aws.String(settings.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3MirrorWithClient(client, fs, settings), nil
}

// NewS3MirrorWithClient creates an S3Mirror around an existing client.
func NewS3MirrorWithClient(client S3API, fs afero.Fs, settings config.S3Settings) *S3Mirror {
	if settings.DisableServerSideEncryption {
		log.Infof("Server side encryption has been disabled for s3://%s/%s", settings.Bucket, settings.Prefix)
	}
	return &S3Mirror{
		client:     client,
		fs:         fs,
		bucket:     settings.Bucket,
		prefix:     settings.Prefix,
		disableSSE: settings.DisableServerSideEncryption,
	}
}

// Key returns the object key a database at databasePath is uploaded to.
func (m *S3Mirror) Key(databasePath string) string {
	return path.Join(m.prefix, filepath.Base(databasePath))
}

// Upload copies the installed database at databasePath to the bucket. hash
// is its MD5 and is checked by S3 on receipt.
func (m *S3Mirror) Upload(ctx context.Context, databasePath, hash string, modifiedAt time.Time) error {
	sum, err := hex.DecodeString(hash)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidHash, hash)
	}

	f, err := m.fs.Open(databasePath)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrOpeningDatabase, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: %s", ErrOpeningDatabase, err)
	}

	metadata := map[string]string{HashMetadataKey: hash}
	if !modifiedAt.IsZero() {
		metadata[ModifiedMetadataKey] = modifiedAt.UTC().Format(time.RFC3339)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(m.bucket),
		Key:           aws.String(m.Key(databasePath)),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentMD5:    aws.String(base64.StdEncoding.EncodeToString(sum)),
		Metadata:      metadata,
	}
	if !m.disableSSE {
		input.ServerSideEncryption = types.ServerSideEncryptionAes256
	}

	log.WithFields(log.Fields{
		"bucket": m.bucket,
		"key":    *input.Key,
	}).Debug("Uploading database to S3")
	if _, err := m.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("%w: s3://%s/%s: %s", ErrUploading, m.bucket, *input.Key, err)
	}
	return nil
}
