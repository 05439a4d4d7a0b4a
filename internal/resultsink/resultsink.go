// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package resultsink optionally archives a finished test's results to
// S3 (-s3-bucket). A sink failure never changes the process's exit
// code.
package resultsink

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Sink uploads a results payload to an S3 bucket under a fixed key
// prefix. A nil Sink is valid and Upload becomes a no-op, so callers
// can construct one unconditionally from config.
type Sink struct {
	client *s3.Client
	bucket string
	prefix string
	logger *slog.Logger
}

// New builds a Sink for bucket. With accessKey/secretKey both set it
// pins static credentials (-s3-access-key/-s3-secret-key); otherwise
// it falls back to ambient AWS credentials/region resolution
// (environment, shared config, IMDS). Returns nil if bucket is empty.
func New(ctx context.Context, bucket, prefix, accessKey, secretKey string, logger *slog.Logger) (*Sink, error) {
	if bucket == "" {
		return nil, nil
	}

	var opts []func(*awsconfig.LoadOptions) error
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("resultsink: loading aws config: %w", err)
	}
	return &Sink{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: prefix,
		logger: logger.With("component", "resultsink"),
	}, nil
}

// Upload stores payload (typically a JSON results summary) under key.
// A nil Sink is a no-op. Errors are returned for the caller to log;
// they must never be treated as test failures.
func (s *Sink) Upload(ctx context.Context, key string, payload []byte) error {
	if s == nil {
		return nil
	}
	fullKey := key
	if s.prefix != "" {
		fullKey = s.prefix + "/" + key
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullKey),
		Body:   bytes.NewReader(payload),
	})
	if err != nil {
		return fmt.Errorf("resultsink: putting object %s/%s: %w", s.bucket, fullKey, err)
	}
	s.logger.Info("results archived", "bucket", s.bucket, "key", fullKey, "bytes", len(payload))
	return nil
}
