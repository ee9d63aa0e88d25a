package poster

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdulachik/wisdomcard/internal/logging"
)

// ContentAPIPoster uploads cards to the board-content endpoint of the site
// backend. The answer carries the public URL of the uploaded image.
type ContentAPIPoster struct {
	httpClient *http.Client
	baseURL    string
	category   string
	writer     string
	compress   CompressOptions
	logger     *slog.Logger
}

// ContentAPIConfig holds configuration for the content API poster.
type ContentAPIConfig struct {
	BaseURL  string
	Category string
	Writer   string
	Compress CompressOptions
	Logger   *slog.Logger
}

// NewContentAPIPoster creates a new content API poster.
func NewContentAPIPoster(cfg ContentAPIConfig) *ContentAPIPoster {
	compress := cfg.Compress
	if compress == (CompressOptions{}) {
		compress = DefaultCompressOptions()
	}
	category := cfg.Category
	if category == "" {
		category = "투자명언"
	}
	writer := cfg.Writer
	if writer == "" {
		writer = "admin"
	}

	return &ContentAPIPoster{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		category: category,
		writer:   writer,
		compress: compress,
		logger:   logging.OrNop(cfg.Logger),
	}
}

// Platform returns the platform name.
func (c *ContentAPIPoster) Platform() string {
	return "content_api"
}

// ValidateCredentials checks that an endpoint is configured. The API takes
// no credentials.
func (c *ContentAPIPoster) ValidateCredentials(ctx context.Context) error {
	if c.baseURL == "" {
		return errors.New("content api base url is not set")
	}
	return nil
}

// boardContentResponse is the answer of POST /api/board-content.
type boardContentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		ID        json.RawMessage `json:"id"`
		ImageURLs []string        `json:"image_urls"`
	} `json:"data"`
}

// Post uploads content.ImagePath, compressed, as both the first board image
// and the thumbnail, with content.Title and content.Body.
func (c *ContentAPIPoster) Post(ctx context.Context, content PostContent) (*PostResult, error) {
	if content.ImagePath == "" {
		return nil, &APIError{StatusCode: http.StatusBadRequest, Message: "no image to upload"}
	}

	image, err := CompressImage(content.ImagePath, c.compress)
	if err != nil {
		return nil, &APIError{StatusCode: http.StatusBadRequest, Message: fmt.Sprintf("process image %s: %v", content.ImagePath, err)}
	}
	c.logger.Info("compressed image", "path", content.ImagePath, "kb", len(image)/1024)

	body, contentType, err := c.buildForm(content, filepath.Base(content.ImagePath), image)
	if err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}

	endpoint := c.baseURL + "/api/board-content"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("content api request", "url", endpoint, "title", content.Title, "category", c.category)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var parsed boardContentResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("parse response: %s", strings.TrimSpace(string(respBody)))}
	}
	if !parsed.Success {
		msg := parsed.Message
		if msg == "" {
			msg = strings.TrimSpace(string(respBody))
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("upload %q failed: %s", content.Title, msg)}
	}

	result := &PostResult{PostID: rawID(parsed.Data.ID)}
	if len(parsed.Data.ImageURLs) == 0 {
		c.logger.Warn("content api returned no image url", "title", content.Title)
	} else {
		result.ImageURL = parsed.Data.ImageURLs[0]
	}

	c.logger.Info("uploaded to content api", "title", content.Title, "image_url", result.ImageURL)
	return result, nil
}

func (c *ContentAPIPoster) buildForm(content PostContent, filename string, image []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"title", content.Title},
		{"content", content.Body},
		{"category", c.category},
		{"writer", c.writer},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}

	for _, field := range []string{"image[0]", "thumbnail_image"} {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, filename))
		h.Set("Content-Type", "image/jpeg")
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(image); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// rawID renders a JSON id that may be a number or a string.
func rawID(raw json.RawMessage) string {
	id := strings.Trim(string(raw), `"`)
	if id == "null" {
		return ""
	}
	return id
}
