// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package blobscan

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3PutObjectAPI is the subset of the S3 client used by [TargetS3].
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// TargetS3 persists files as objects of an S3 bucket. Paths are joined to
// the key prefix with forward slashes. Directories do not exist in S3 and
// are not created.
type TargetS3 struct {
	client S3PutObjectAPI
	bucket string
	prefix string
}

// NewTargetS3 creates a target writing to bucket below prefix.
func NewTargetS3(client S3PutObjectAPI, bucket, prefix string) *TargetS3 {
	return &TargetS3{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// key returns the object key for a target path
func (t *TargetS3) key(p string) string {
	return path.Join(t.prefix, filepath.ToSlash(p))
}

// CreateFile uploads src as the object at path. If overwrite is false, the
// upload is conditional and fails if the object already exists. The file
// mode is stored as object metadata.
func (t *TargetS3) CreateFile(ctx context.Context, p string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error) {
	var buf bytes.Buffer
	n, err := io.Copy(limitWriter(&buf, maxSize), src)
	if err != nil {
		return n, err
	}

	input := &s3.PutObjectInput{
		Bucket:            aws.String(t.bucket),
		Key:               aws.String(t.key(p)),
		Body:              bytes.NewReader(buf.Bytes()),
		ContentLength:     aws.Int64(n),
		ContentType:       aws.String("application/octet-stream"),
		ChecksumAlgorithm: types.ChecksumAlgorithmCrc32,
		Metadata: map[string]string{
			"file-mode": fmt.Sprintf("%04o", mode.Perm()),
		},
	}
	if !overwrite {
		input.IfNoneMatch = aws.String("*")
	}

	if _, err := t.client.PutObject(ctx, input); err != nil {
		return 0, fmt.Errorf("upload s3://%s/%s: %w", t.bucket, *input.Key, err)
	}
	return n, nil
}

// CreateDir is a no-op, S3 has no directories.
func (t *TargetS3) CreateDir(ctx context.Context, p string, mode fs.FileMode) error {
	return ctx.Err()
}
