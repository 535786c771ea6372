// Package media stores event images on an external asset host.
package media

import (
	"context"
	"io"
	"strings"
)

// Folder is the asset-host folder that holds event images.
const Folder = "dev-events"

// Uploader stores and removes image assets.
//
// Destroy failures are advisory: callers log and continue, because a stale
// asset is preferable to a failed event mutation.
type Uploader interface {
	// Upload stores an image and returns its public URL.
	Upload(ctx context.Context, image io.Reader) (string, error)
	// Destroy removes the asset behind a previously returned URL.
	Destroy(ctx context.Context, url string) error
}

// PublicIDFromURL derives the asset-host public id from a delivery URL.
//
// Delivery URLs end in "<folder>/<filename>.<ext>"; the public id is the
// folder plus the filename stem.
func PublicIDFromURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return ""
	}
	parts := strings.Split(url, "/")
	filename := parts[len(parts)-1]
	if filename == "" {
		return ""
	}
	stem := filename
	if dot := strings.LastIndex(filename, "."); dot > 0 {
		stem = filename[:dot]
	}
	return Folder + "/" + stem
}
