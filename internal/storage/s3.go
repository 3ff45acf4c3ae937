package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/NahomAnteneh/repo-browser/internal/db/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options configures an S3Lister built from the default AWS configuration chain
type S3Options struct {
	Bucket          string
	Region          string
	Endpoint        string // Custom endpoint for S3-compatible stores
	KeyPrefix       string // Prepended to "<repository_id>/"
	UsePathStyle    bool
	AccessKeyID     string
	SecretAccessKey string
}

// S3Lister lists repository objects stored under "<key_prefix><repository_id>/" in a bucket
type S3Lister struct {
	client    s3.ListObjectsV2APIClient
	bucket    string
	keyPrefix string
}

// NewS3Lister creates a lister over an existing client
func NewS3Lister(client s3.ListObjectsV2APIClient, bucket, keyPrefix string) *S3Lister {
	if keyPrefix != "" && !strings.HasSuffix(keyPrefix, "/") {
		keyPrefix += "/"
	}
	return &S3Lister{client: client, bucket: bucket, keyPrefix: keyPrefix}
}

// NewS3ListerFromOptions loads the AWS configuration and creates the S3 client
func NewS3ListerFromOptions(ctx context.Context, opts S3Options) (*S3Lister, error) {
	if opts.Bucket == "" {
		return nil, NewError(ErrCategoryS3, "bucket is not configured", nil)
	}

	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, NewError(ErrCategoryS3, "failed to load AWS configuration", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})
	return NewS3Lister(client, opts.Bucket, opts.KeyPrefix), nil
}

// List walks every page of keys under the repository prefix.
// Keys ending in "/" are directory markers; the ETag is used as the checksum.
func (l *S3Lister) List(ctx context.Context, repositoryID, prefix string) (*ListResult, error) {
	if err := validateListing(repositoryID, prefix); err != nil {
		return nil, err
	}

	root := l.keyPrefix + repositoryID + "/"
	paginator := s3.NewListObjectsV2Paginator(l.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(l.bucket),
		Prefix: aws.String(root + prefix),
	})

	result := &ListResult{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, NewError(ErrCategoryS3, fmt.Sprintf("failed to list s3://%s/%s%s", l.bucket, root, prefix), err)
		}

		for _, obj := range page.Contents {
			rel := strings.TrimPrefix(aws.ToString(obj.Key), root)
			if rel == "" {
				continue // The repository root marker itself
			}
			modified := aws.ToTime(obj.LastModified)
			item := models.RepositoryObject{
				ID:           aws.ToString(obj.Key),
				RepositoryID: repositoryID,
				Path:         rel,
				Size:         aws.ToInt64(obj.Size),
				Type:         models.ObjectTypeFile,
				Checksum:     strings.Trim(aws.ToString(obj.ETag), `"`),
				CreatedAt:    modified,
				UpdatedAt:    modified,
			}
			if strings.HasSuffix(rel, "/") {
				item.Type = models.ObjectTypeDirectory
			} else {
				item.MimeType = DetectMimeType(rel)
			}
			item.Normalize()
			result.Objects = append(result.Objects, item)
		}
	}
	return result, nil
}
