package poster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/abdulachik/wisdomcard/internal/logging"
)

const (
	blueskyBaseURL = "https://bsky.social/xrpc"

	// blueskyMaxBlobBytes is the largest image the PDS accepts.
	blueskyMaxBlobBytes = 976 * 1024
)

// BlueskyPoster posts to Bluesky via the AT Protocol.
type BlueskyPoster struct {
	httpClient  *http.Client
	baseURL     string
	handle      string
	appPassword string
	accessToken string
	did         string
	logger      *slog.Logger
}

// BlueskyConfig holds configuration for the Bluesky poster.
type BlueskyConfig struct {
	Handle      string
	AppPassword string
	// BaseURL overrides the XRPC endpoint.
	BaseURL string
	Logger  *slog.Logger
}

// NewBlueskyPoster creates a new Bluesky poster.
func NewBlueskyPoster(cfg BlueskyConfig) *BlueskyPoster {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = blueskyBaseURL
	}
	return &BlueskyPoster{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     baseURL,
		handle:      cfg.Handle,
		appPassword: cfg.AppPassword,
		logger:      logging.OrNop(cfg.Logger),
	}
}

// Platform returns the platform name.
func (b *BlueskyPoster) Platform() string {
	return "bluesky"
}

// createSessionRequest is the request body for session creation.
type createSessionRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// createSessionResponse is the response from session creation.
type createSessionResponse struct {
	DID        string `json:"did"`
	Handle     string `json:"handle"`
	AccessJwt  string `json:"accessJwt"`
	RefreshJwt string `json:"refreshJwt"`
}

// ValidateCredentials authenticates and validates the credentials.
func (b *BlueskyPoster) ValidateCredentials(ctx context.Context) error {
	return b.authenticate(ctx)
}

func (b *BlueskyPoster) authenticate(ctx context.Context) error {
	if b.accessToken != "" {
		return nil // Already authenticated
	}

	reqBody := createSessionRequest{
		Identifier: b.handle,
		Password:   b.appPassword,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	var session createSessionResponse
	if err := b.xrpc(ctx, "com.atproto.server.createSession", "application/json", body, false, &session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	b.accessToken = session.AccessJwt
	b.did = session.DID

	b.logger.Debug("authenticated with Bluesky",
		"handle", session.Handle,
		"did", session.DID,
	)

	return nil
}

// uploadBlobResponse wraps the blob reference used in embeds.
type uploadBlobResponse struct {
	Blob json.RawMessage `json:"blob"`
}

// createRecordRequest is the request body for creating a post.
type createRecordRequest struct {
	Repo       string     `json:"repo"`
	Collection string     `json:"collection"`
	Record     postRecord `json:"record"`
}

// postRecord represents a Bluesky post.
type postRecord struct {
	Type      string       `json:"$type"`
	Text      string       `json:"text"`
	CreatedAt string       `json:"createdAt"`
	Langs     []string     `json:"langs,omitempty"`
	Embed     *imagesEmbed `json:"embed,omitempty"`
}

type imagesEmbed struct {
	Type   string       `json:"$type"`
	Images []embedImage `json:"images"`
}

type embedImage struct {
	Alt   string          `json:"alt"`
	Image json.RawMessage `json:"image"`
}

// createRecordResponse is the response from creating a post.
type createRecordResponse struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

// Post publishes the caption with content.ImagePath attached.
func (b *BlueskyPoster) Post(ctx context.Context, content PostContent) (*PostResult, error) {
	// Ensure we're authenticated
	if err := b.authenticate(ctx); err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	text := content.Caption
	if !FitsInLimit(text, BlueskyMaxLength) {
		runes := []rune(text)
		text = strings.TrimSpace(string(runes[:BlueskyMaxLength-3])) + "..."
	}

	record := postRecord{
		Type:      "app.bsky.feed.post",
		Text:      text,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Langs:     []string{"ko", "en"},
	}

	if content.ImagePath != "" {
		blob, err := b.uploadImage(ctx, content.ImagePath)
		if err != nil {
			return nil, err
		}
		record.Embed = &imagesEmbed{
			Type:   "app.bsky.embed.images",
			Images: []embedImage{{Alt: content.AltText, Image: blob}},
		}
	}

	reqBody := createRecordRequest{
		Repo:       b.did,
		Collection: "app.bsky.feed.post",
		Record:     record,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var createResp createRecordResponse
	if err := b.xrpc(ctx, "com.atproto.repo.createRecord", "application/json", body, true, &createResp); err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}

	// URI format: at://did:plc:xxx/app.bsky.feed.post/rkey
	// URL format: https://bsky.app/profile/handle/post/rkey
	postURL := ""
	if parts := splitURI(createResp.URI); len(parts) >= 3 {
		rkey := parts[len(parts)-1]
		postURL = fmt.Sprintf("https://bsky.app/profile/%s/post/%s", b.handle, rkey)
	}

	b.logger.Info("posted to Bluesky",
		"uri", createResp.URI,
		"url", postURL,
	)

	return &PostResult{
		PostID:  createResp.URI,
		PostURL: postURL,
	}, nil
}

func (b *BlueskyPoster) uploadImage(ctx context.Context, path string) (json.RawMessage, error) {
	opts := DefaultCompressOptions()
	opts.MaxBytes = blueskyMaxBlobBytes
	data, err := CompressImage(path, opts)
	if err != nil {
		return nil, err
	}

	var uploaded uploadBlobResponse
	if err := b.xrpc(ctx, "com.atproto.repo.uploadBlob", "image/jpeg", data, true, &uploaded); err != nil {
		return nil, fmt.Errorf("upload blob: %w", err)
	}
	if len(uploaded.Blob) == 0 {
		return nil, fmt.Errorf("upload blob: response has no blob")
	}
	return uploaded.Blob, nil
}

// xrpc POSTs body to the named procedure and decodes the JSON answer.
func (b *BlueskyPoster) xrpc(ctx context.Context, method, contentType string, body []byte, auth bool, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if auth {
		req.Header.Set("Authorization", "Bearer "+b.accessToken)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return newAPIError(resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// splitURI splits an AT Protocol URI into its non-empty path parts.
func splitURI(uri string) []string {
	uri = strings.TrimPrefix(uri, "at://")
	var parts []string
	for _, p := range strings.Split(uri, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
