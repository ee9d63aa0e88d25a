package poster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abdulachik/wisdomcard/internal/logging"
	"github.com/abdulachik/wisdomcard/internal/retry"
)

const (
	graphBaseURL           = "https://graph.facebook.com"
	defaultGraphAPIVersion = "v18.0"
)

// InstagramPoster publishes images through the Instagram Graph API.
type InstagramPoster struct {
	httpClient  *http.Client
	baseURL     string
	apiVersion  string
	accessToken string
	accountID   string
	probe       retry.Policy
	logger      *slog.Logger
}

// InstagramConfig holds configuration for the Instagram poster.
type InstagramConfig struct {
	AccessToken string
	AccountID   string
	APIVersion  string
	// BaseURL overrides the Graph API host.
	BaseURL string
	// Probe bounds the reachability check of each image URL.
	Probe  retry.Policy
	Logger *slog.Logger
}

// NewInstagramPoster creates a new Instagram poster.
func NewInstagramPoster(cfg InstagramConfig) *InstagramPoster {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = graphBaseURL
	}
	version := cfg.APIVersion
	if version == "" {
		version = defaultGraphAPIVersion
	}
	probe := cfg.Probe
	if probe.Attempts == 0 {
		probe = retry.DefaultPolicy()
	}

	return &InstagramPoster{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     baseURL,
		apiVersion:  version,
		accessToken: cfg.AccessToken,
		accountID:   cfg.AccountID,
		probe:       probe,
		logger:      logging.OrNop(cfg.Logger),
	}
}

// Platform returns the platform name.
func (p *InstagramPoster) Platform() string {
	return "instagram"
}

// ValidateCredentials fetches the account node with the configured token.
func (p *InstagramPoster) ValidateCredentials(ctx context.Context) error {
	params := url.Values{}
	params.Set("fields", "id,username")

	var account struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	if err := p.call(ctx, http.MethodGet, p.accountID, params, &account); err != nil {
		return fmt.Errorf("validate instagram credentials: %w", err)
	}
	p.logger.Debug("instagram credentials valid", "account_id", account.ID, "username", account.Username)
	return nil
}

// mediaResponse is the answer to media container and publish calls.
type mediaResponse struct {
	ID string `json:"id"`
}

// Post publishes content.ImageURLs: one URL becomes a single image post,
// several become a carousel. Every URL must answer a HEAD request with 200
// before it is handed to the API.
func (p *InstagramPoster) Post(ctx context.Context, content PostContent) (*PostResult, error) {
	urls := content.ImageURLs
	if len(urls) == 0 {
		return nil, errors.New("instagram post needs at least one public image URL")
	}

	var containerID string
	if len(urls) == 1 {
		id, err := p.createSingleMedia(ctx, urls[0], content.Caption)
		if err != nil {
			return nil, err
		}
		containerID = id
	} else {
		id, err := p.createCarousel(ctx, urls, content.Caption)
		if err != nil {
			return nil, err
		}
		containerID = id
	}

	params := url.Values{}
	params.Set("creation_id", containerID)

	var published mediaResponse
	if err := p.call(ctx, http.MethodPost, p.accountID+"/media_publish", params, &published); err != nil {
		return nil, fmt.Errorf("publish media: %w", err)
	}
	if published.ID == "" {
		return nil, errors.New("publish media: response has no id")
	}

	p.logger.Info("posted to Instagram", "media_id", published.ID, "images", len(urls))

	return &PostResult{
		PostID:   published.ID,
		ImageURL: urls[0],
	}, nil
}

func (p *InstagramPoster) createSingleMedia(ctx context.Context, imageURL, caption string) (string, error) {
	if err := p.probeImage(ctx, imageURL); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("image_url", imageURL)
	params.Set("caption", caption)

	return p.createContainer(ctx, params)
}

func (p *InstagramPoster) createCarousel(ctx context.Context, imageURLs []string, caption string) (string, error) {
	children := make([]string, 0, len(imageURLs))
	for i, imageURL := range imageURLs {
		if err := p.probeImage(ctx, imageURL); err != nil {
			return "", err
		}

		params := url.Values{}
		params.Set("image_url", imageURL)
		params.Set("is_carousel_item", "true")

		id, err := p.createContainer(ctx, params)
		if err != nil {
			return "", fmt.Errorf("carousel item %d: %w", i+1, err)
		}
		children = append(children, id)
	}

	params := url.Values{}
	params.Set("media_type", "CAROUSEL")
	params.Set("children", strings.Join(children, ","))
	params.Set("caption", caption)

	return p.createContainer(ctx, params)
}

func (p *InstagramPoster) createContainer(ctx context.Context, params url.Values) (string, error) {
	var container mediaResponse
	if err := p.call(ctx, http.MethodPost, p.accountID+"/media", params, &container); err != nil {
		return "", fmt.Errorf("create media container: %w", err)
	}
	if container.ID == "" {
		return "", errors.New("create media container: response has no id")
	}
	return container.ID, nil
}

// probeImage waits until imageURL answers HEAD with 200.
func (p *InstagramPoster) probeImage(ctx context.Context, imageURL string) error {
	err := retry.Do(ctx, p.probe, p.logger, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, imageURL, nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("create request: %w", err))
		}
		resp, err := p.httpClient.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()

		p.logger.Debug("probed image url",
			"url", imageURL,
			"status", resp.StatusCode,
			"content_type", resp.Header.Get("Content-Type"))

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("status %d", resp.StatusCode)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("image url %s not reachable: %w", imageURL, err)
	}
	return nil
}

// call sends one Graph API request with params in the query string and
// decodes the JSON answer into out.
func (p *InstagramPoster) call(ctx context.Context, method, path string, params url.Values, out any) error {
	endpoint := fmt.Sprintf("%s/%s/%s", p.baseURL, p.apiVersion, path)

	p.logger.Debug("instagram api request", "method", method, "url", endpoint, "params", params.Encode())

	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("access_token", p.accessToken)

	req, err := http.NewRequestWithContext(ctx, method, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		// the error text carries the URL, token included
		return fmt.Errorf("send request to %s: %w", endpoint, unwrapURLError(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return newAPIError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
