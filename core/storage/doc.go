// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client to provide a simplified interface for the
// operations the run-report archive needs: bucket checks, uploads, downloads
// and listing. This abstraction supports both AWS S3 and self-hosted MinIO
// instances, and makes storage interactions mockable in unit tests (see
// core/storage/mocks).
package storage
