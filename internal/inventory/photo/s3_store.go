package photo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	inverrors "github.com/abgdnv/inventory/internal/inventory/errors"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps photos as objects in an S3 bucket under an optional key prefix.
type S3Store struct {
	client   S3API
	bucket   string
	prefix   string
	maxBytes int64
	namer    *namer
}

// NewS3Client builds an S3 client from the default AWS credential chain.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// NewS3Store creates a photo store backed by bucket.
func NewS3Store(client S3API, bucket, prefix string, maxUploadBytes int64) *S3Store {
	return &S3Store{
		client:   client,
		bucket:   bucket,
		prefix:   prefix,
		maxBytes: maxUploadBytes,
		namer:    newNamer(),
	}
}

func (s *S3Store) Save(ctx context.Context, r io.Reader) (Ref, error) {
	data, err := readLimited(r, s.maxBytes)
	if err != nil {
		return "", err
	}
	ref, err := s.namer.next(time.Now())
	if err != nil {
		return "", err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(ref)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("%w: uploading photo %s: %v", inverrors.ErrIO, ref, err)
	}
	return ref, nil
}

func (s *S3Store) Read(ctx context.Context, ref Ref) ([]byte, error) {
	if _, err := ParseRef(string(ref)); err != nil {
		return nil, err
	}
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(ref)),
	})
	if err != nil {
		var noSuchKey *s3types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: %s", inverrors.ErrPhotoNotFound, ref)
		}
		return nil, fmt.Errorf("%w: downloading photo %s: %v", inverrors.ErrIO, ref, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading photo %s: %v", inverrors.ErrIO, ref, err)
	}
	return data, nil
}

func (s *S3Store) Delete(ctx context.Context, ref Ref) error {
	if _, err := ParseRef(string(ref)); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(ref)),
	})
	if err != nil {
		return fmt.Errorf("%w: deleting photo %s: %v", inverrors.ErrIO, ref, err)
	}
	return nil
}

func (s *S3Store) key(ref Ref) string {
	if s.prefix == "" {
		return string(ref)
	}
	return path.Join(s.prefix, string(ref))
}
