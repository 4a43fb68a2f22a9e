// Package sources retrieves community node feeds and turns them into
// canonical census nodes.
//
// A SourceHandler reads raw bytes for one URL scheme. The Loader picks a
// handler through a SourceHandlerFactory, detects the feed format and
// projects its nodes:
//   - http and https URLs are fetched with a bounded-timeout HTTP GET
//   - file URLs are read from the local filesystem
//
// Every other scheme fails with ErrUnsupportedScheme.
package sources
