// Package storage provides the object storage client for the image staging
// archive.
//
// Downloaded source images are archived here before upload so a failed
// upload can be re-driven without hitting the source host again. The
// Client interface wraps the Minio SDK; mocks live in storage/mocks.
package storage
