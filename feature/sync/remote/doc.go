// Package remote holds the HTTP implementations of the engine's capability
// interfaces: the catalog feed source, the drive image downloader, the
// messaging platform client, and the POS catalog client. Each client is
// built from its config section; nothing here reads the environment.
package remote
