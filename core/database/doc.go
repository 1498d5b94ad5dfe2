// Package database provides the connection layer for the durable sync state.
//
// It supports two drivers: sqlite (default, single-binary deployments) and
// mysql (shared deployments). The returned *gorm.DB is consumed by the
// state store in core/state.
package database
