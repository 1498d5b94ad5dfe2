// Package config loads application configuration from environment variables
// and an optional .env file.
//
// Each subsystem owns a partial Config struct (logger, database, storage),
// composed here together with the domain sections (messaging, catalog,
// source, sync). Defaults come from `default:` struct tags; environment
// variables override using underscore-joined names, e.g. MESSAGING_PAGE_ID.
package config
