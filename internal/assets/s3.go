package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var ErrDisabled = errors.New("asset storage not configured")

// S3Store keeps uploaded images in a bucket and hands back public URLs.
type S3Store struct {
	Client     *s3.Client
	Bucket     string
	PublicBase string // e.g. a CDN origin; defaults to the bucket's virtual-host URL
	Region     string
}

// NewS3Store returns a disabled store when bucket is empty.
func NewS3Store(ctx context.Context, region, bucket, publicBase string) (*S3Store, error) {
	if bucket == "" {
		return &S3Store{}, nil
	}
	if region == "" {
		region = "eu-west-1"
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &S3Store{Client: s3.NewFromConfig(cfg), Bucket: bucket, PublicBase: publicBase, Region: region}, nil
}

func (s *S3Store) Enabled() bool { return s != nil && s.Client != nil && s.Bucket != "" }

// Put uploads data under a fresh key derived from filename and returns the
// object's public URL together with the key.
func (s *S3Store) Put(ctx context.Context, filename, contentType string, data []byte) (url, key string, err error) {
	if !s.Enabled() {
		return "", "", ErrDisabled
	}
	key = Key(filename, time.Now())
	_, err = s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.Bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", "", fmt.Errorf("put %s: %w", key, err)
	}
	return s.URL(key), key, nil
}

func (s *S3Store) URL(key string) string {
	if s.PublicBase != "" {
		return strings.TrimSuffix(s.PublicBase, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.Bucket, s.Region, key)
}

// Key builds "uploads/YYYY/MM/<uuid><ext>" with the lower-cased extension of
// filename.
func Key(filename string, t time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	return fmt.Sprintf("uploads/%s/%s%s", t.UTC().Format("2006/01"), uuid.NewString(), ext)
}
