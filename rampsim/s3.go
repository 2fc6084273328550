package rampsim

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultSeedQuestionsKey is the object key deployments use when none
// is configured.
const DefaultSeedQuestionsKey = "seed-questions.json"

// S3Source fetches the seed-question document from an S3 object.
type S3Source struct {
	Client *s3.Client
	Bucket string
	Key    string
}

func (s *S3Source) Fetch(ctx context.Context) (io.ReadCloser, error) {
	key := s.Key
	if key == "" {
		key = DefaultSeedQuestionsKey
	}

	Logger.Infow(
		"loading seed questions",
		"bucket", s.Bucket,
		"key", key,
	)

	result, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", s.Bucket, key, err)
	}

	return result.Body, nil
}
