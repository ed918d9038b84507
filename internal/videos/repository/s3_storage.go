package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/amankumarsingh77/vidhost/internal/media"
	"github.com/amankumarsingh77/vidhost/internal/videos"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/multierr"
)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// s3Storage writes slots locally and publishes them to a bucket on commit.
type s3Storage struct {
	local     *localStorage
	client    s3API
	bucket    string
	publicURL string
}

func NewS3Storage(client *s3.Client, bucket, publicURL, workDir string) (videos.Storage, error) {
	s, err := newS3Storage(client, bucket, publicURL, workDir)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func newS3Storage(client s3API, bucket, publicURL, workDir string) (*s3Storage, error) {
	local, err := newLocalStorage(workDir, "")
	if err != nil {
		return nil, err
	}
	return &s3Storage{
		local:     local,
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

func objectKey(kind videos.AssetKind, name string) string {
	return string(kind) + "/" + name
}

func (s *s3Storage) Reserve(kind videos.AssetKind, id string) (*videos.Slot, error) {
	return s.local.Reserve(kind, id)
}

func (s *s3Storage) Commit(ctx context.Context, slot *videos.Slot) (string, error) {
	if _, err := s.local.Commit(ctx, slot); err != nil {
		return "", err
	}
	f, err := os.Open(slot.Path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", slot.Name, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", slot.Name, err)
	}

	contentType := slot.ContentType
	if contentType == "" {
		contentType = slot.Kind.ContentType()
	}
	key := objectKey(slot.Kind, slot.Name)
	if _, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(info.Size()),
		Body:          f,
	}); err != nil {
		return "", fmt.Errorf("failed to upload file : %w", err)
	}

	// The bucket copy is the durable one now.
	_ = media.RemoveFile(slot.Path)
	return s.URL(slot.Kind, slot.Name), nil
}

func (s *s3Storage) URL(kind videos.AssetKind, name string) string {
	return s.publicURL + "/" + objectKey(kind, name)
}

func (s *s3Storage) Exists(ctx context.Context, kind videos.AssetKind, name string) (bool, error) {
	if _, ok := videos.ParseAssetKind(string(kind)); !ok || !assetNamePattern.MatchString(name) {
		return false, nil
	}
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(kind, name)),
	})
	if err == nil {
		return true, nil
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to head %s: %w", name, err)
}

func (s *s3Storage) Remove(ctx context.Context, kind videos.AssetKind, name string) error {
	if !assetNamePattern.MatchString(name) {
		return fmt.Errorf("invalid asset name %q", name)
	}
	var errs error
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(kind, name)),
	}); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("failed to remove file : %w", err))
	}
	return multierr.Append(errs, s.local.Remove(ctx, kind, name))
}
