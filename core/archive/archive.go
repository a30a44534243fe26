package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"catalog-sync/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Archive persists run reports as JSON objects in object storage, keyed by
// scope and run id, so operators can inspect the history of reconciliation
// and propagation runs.
type Archive struct {
	client storage.Client
	bucket string
	logger *zap.Logger
}

// New creates an archive writing into the given bucket.
func New(client storage.Client, bucket string, logger *zap.Logger) *Archive {
	return &Archive{client: client, bucket: bucket, logger: logger}
}

// EnsureBucket creates the archive bucket if it does not exist yet.
func (a *Archive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", a.bucket, err)
	}
	return nil
}

// Save marshals the report and uploads it under
// reports/<scope>/<kind>-<runID>.json.
func (a *Archive) Save(ctx context.Context, scopeID, kind, runID string, report any) error {
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s report %s: %w", kind, runID, err)
	}

	objectName := fmt.Sprintf("reports/%s/%s-%s.json", scopeID, kind, runID)
	_, err = a.client.PutObject(ctx, a.bucket, objectName,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("archive %s: %w", objectName, err)
	}

	a.logger.Info("archived run report",
		zap.String("object", objectName),
		zap.String("scope", scopeID))
	return nil
}

// List returns the archived report object names for a scope, newest last.
func (a *Archive) List(ctx context.Context, scopeID string) ([]string, error) {
	prefix := "reports/" + scopeID + "/"
	var names []string
	for info := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if info.Err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, info.Err)
		}
		if strings.HasSuffix(info.Key, ".json") {
			names = append(names, info.Key)
		}
	}
	sort.Strings(names)
	return names, nil
}
