// Package minio implements bankstore.Store backed by MinIO or any
// S3-compatible object storage, for sharing shade banks across machines.
package minio
