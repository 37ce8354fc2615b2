// Package host uploads rendered figures to a service Google can fetch
// them from; the Slides API only accepts images by URL.
package host

import "context"

// Host uploads a local file and returns a fetchable URL for it.
type Host interface {
	Upload(ctx context.Context, localPath string) (string, error)
}
