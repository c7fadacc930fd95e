package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/nijaru/videovoyager/config"
	"github.com/nijaru/videovoyager/errors"
	"github.com/nijaru/videovoyager/models"
	pkgerrors "github.com/pkg/errors"
)

// SpacesStore keeps transcripts as JSON objects in an S3 compatible bucket
// (DigitalOcean Spaces, MinIO, AWS S3).
type SpacesStore struct {
	client *s3.Client
	bucket string
	prefix string
}

type spacesObject struct {
	VideoID   string    `json:"video_id"`
	Text      string    `json:"text"`
	FetchedAt time.Time `json:"fetched_at"`
}

func NewSpacesStore(ctx context.Context, cfg config.SpacesConfig) (*SpacesStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "unable to load SDK config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	return &SpacesStore{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

func (s *SpacesStore) key(videoID string) string {
	return path.Join(s.prefix, videoID+".json")
}

func (s *SpacesStore) Save(ctx context.Context, t *models.Transcript) error {
	const op = "SpacesStore.Save"

	obj := spacesObject{VideoID: t.VideoID, Text: t.Text, FetchedAt: t.FetchedAt}
	if obj.FetchedAt.IsZero() {
		obj.FetchedAt = time.Now().UTC()
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return errors.Internal(op, err, "Failed to encode transcript")
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(t.VideoID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return errors.Internal(op, err, "Failed to save transcript to Spaces")
	}

	return nil
}

func (s *SpacesStore) Find(ctx context.Context, videoID string) (*models.Transcript, error) {
	const op = "SpacesStore.Find"

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(videoID)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if pkgerrors.As(err, &noKey) {
			return nil, errors.NotFound(op, nil, "Transcript not found")
		}
		return nil, errors.Internal(op, err, "Failed to get transcript from Spaces")
	}
	defer result.Body.Close()

	var obj spacesObject
	if err := json.NewDecoder(result.Body).Decode(&obj); err != nil {
		return nil, errors.Internal(op, err, "Failed to decode transcript")
	}

	return &models.Transcript{VideoID: obj.VideoID, Text: obj.Text, FetchedAt: obj.FetchedAt}, nil
}

func (s *SpacesStore) Close() error {
	return nil
}
