package records

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/Noureldein28/security-todo/internal/common"
	"github.com/Noureldein28/security-todo/internal/server/models"
)

// ObjectStoreClient is the slice of the S3 API this repository uses.
// *s3.Client satisfies it; tests provide a fake.
type ObjectStoreClient interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Repository stores each record as one JSON document in an S3-compatible
// bucket, keyed owners/<ownerID>/records/<recordID>.json. An alternative to
// the Postgres store for deployments that already run object storage.
type S3Repository struct {
	client ObjectStoreClient
	bucket string
}

func NewS3Repository(client ObjectStoreClient, bucket string) *S3Repository {
	return &S3Repository{client: client, bucket: bucket}
}

// NewS3Client builds an S3 client for a MinIO-style endpoint with static
// credentials.
func NewS3Client(ctx context.Context, region, user, password, baseEndpoint string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(user, password, "")),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(baseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// recordDocument is the persisted JSON shape.
type recordDocument struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	encodedFields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *S3Repository) key(ownerID, recordID string) string {
	return fmt.Sprintf("owners/%s/records/%s.json", ownerID, recordID)
}

func (r *S3Repository) ownerPrefix(ownerID string) string {
	return fmt.Sprintf("owners/%s/records/", ownerID)
}

func (r *S3Repository) put(ctx context.Context, rec *models.Record) error {
	doc := recordDocument{
		ID:            rec.ID,
		OwnerID:       rec.OwnerID,
		encodedFields: encodeFields(rec.Ciphertext, rec.Nonce, rec.AuthTag, rec.Digest),
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding record document: %w", err)
	}

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(r.key(rec.OwnerID, rec.ID)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("object store error: %w", err)
	}

	return nil
}

func (r *S3Repository) Create(ctx context.Context, rec *models.Record) error {
	return r.put(ctx, rec)
}

func (r *S3Repository) Get(ctx context.Context, ownerID, recordID string) (*models.Record, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key(ownerID, recordID)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("object store error: %w", err)
	}
	defer func() { _ = out.Body.Close() }()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("object store error: %w", err)
	}

	return decodeDocument(body)
}

func (r *S3Repository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Record, error) {
	var result []*models.Record

	var continuation *string
	for {
		out, err := r.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(r.bucket),
			Prefix:            aws.String(r.ownerPrefix(ownerID)),
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, fmt.Errorf("object store error: %w", err)
		}

		for _, obj := range out.Contents {
			get, err := r.client.GetObject(ctx, &s3.GetObjectInput{
				Bucket: aws.String(r.bucket),
				Key:    obj.Key,
			})
			if err != nil {
				if isNotFound(err) {
					// Deleted between List and Get.
					continue
				}
				return nil, fmt.Errorf("object store error: %w", err)
			}

			body, err := io.ReadAll(get.Body)
			_ = get.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("object store error: %w", err)
			}

			rec, err := decodeDocument(body)
			if err != nil {
				return nil, err
			}
			result = append(result, rec)
		}

		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		continuation = out.NextContinuationToken
	}

	return result, nil
}

func (r *S3Repository) Update(ctx context.Context, rec *models.Record) error {
	// PutObject would silently create; the contract requires not-found for
	// an absent record, so check existence first.
	if _, err := r.Get(ctx, rec.OwnerID, rec.ID); err != nil {
		return err
	}
	return r.put(ctx, rec)
}

func (r *S3Repository) Delete(ctx context.Context, ownerID, recordID string) error {
	if _, err := r.Get(ctx, ownerID, recordID); err != nil {
		return err
	}

	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key(ownerID, recordID)),
	})
	if err != nil {
		return fmt.Errorf("object store error: %w", err)
	}

	return nil
}

func decodeDocument(body []byte) (*models.Record, error) {
	var doc recordDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedRecord, err)
	}

	rec := &models.Record{
		ID:        doc.ID,
		OwnerID:   doc.OwnerID,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}

	var err error
	rec.Ciphertext, rec.Nonce, rec.AuthTag, rec.Digest, err = decodeFields(doc.encodedFields)
	if err != nil {
		return nil, err
	}

	return rec, nil
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey"
}
