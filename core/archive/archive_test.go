package archive

import (
	"context"
	"errors"
	"testing"

	"catalog-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEnsureBucket(t *testing.T) {
	t.Run("Existing bucket untouched", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "catalog-sync").Return(true, nil)

		arch := New(client, "catalog-sync", zap.NewNop())
		assert.NoError(t, arch.EnsureBucket(context.Background()))
		client.AssertExpectations(t)
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Missing bucket created", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "catalog-sync").Return(false, nil)
		client.On("MakeBucket", mock.Anything, "catalog-sync", mock.Anything).Return(nil)

		arch := New(client, "catalog-sync", zap.NewNop())
		assert.NoError(t, arch.EnsureBucket(context.Background()))
		client.AssertExpectations(t)
	})
}

func TestSave(t *testing.T) {
	client := new(mocks.Client)
	client.On("PutObject", mock.Anything, "catalog-sync",
		"reports/site-a/reconcile-run-1.json",
		mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	arch := New(client, "catalog-sync", zap.NewNop())
	report := map[string]string{"run_id": "run-1"}
	require.NoError(t, arch.Save(context.Background(), "site-a", "reconcile", "run-1", report))
	client.AssertExpectations(t)
}

func TestSave_UploadFailure(t *testing.T) {
	client := new(mocks.Client)
	client.On("PutObject", mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("connection reset"))

	arch := New(client, "catalog-sync", zap.NewNop())
	err := arch.Save(context.Background(), "site-a", "propagate", "run-2", map[string]string{})
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	ch := make(chan minio.ObjectInfo, 3)
	ch <- minio.ObjectInfo{Key: "reports/site-a/reconcile-run-2.json"}
	ch <- minio.ObjectInfo{Key: "reports/site-a/reconcile-run-1.json"}
	ch <- minio.ObjectInfo{Key: "reports/site-a/notes.txt"}
	close(ch)

	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "catalog-sync", mock.Anything).
		Return((<-chan minio.ObjectInfo)(ch))

	arch := New(client, "catalog-sync", zap.NewNop())
	names, err := arch.List(context.Background(), "site-a")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"reports/site-a/reconcile-run-1.json",
		"reports/site-a/reconcile-run-2.json",
	}, names)
}
