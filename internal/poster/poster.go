package poster

import (
	"context"
)

// PostContent is one card to publish. Platforms use the fields they need:
// Instagram takes public ImageURLs, Bluesky and the content API upload the
// local ImagePath.
type PostContent struct {
	Caption   string
	Title     string
	Body      string
	AltText   string
	ImagePath string
	ImageURLs []string
}

// PostResult represents the result of a post.
type PostResult struct {
	PostID   string
	PostURL  string
	ImageURL string
}

// Poster is the interface for publishing to a platform.
type Poster interface {
	// Platform returns the name of the platform.
	Platform() string

	// Post publishes content to the platform.
	Post(ctx context.Context, content PostContent) (*PostResult, error)

	// ValidateCredentials checks if the credentials are valid.
	ValidateCredentials(ctx context.Context) error
}
