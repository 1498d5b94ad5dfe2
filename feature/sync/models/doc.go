// Package models defines the typed catalog schema shared by the sync
// engine and its remote adapters.
//
// Every field is explicit; absent values are zero values resolved once at
// construction, never probed dynamically by consumers.
package models
