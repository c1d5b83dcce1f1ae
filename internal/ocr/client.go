// Package ocr is the boundary client for the external optical-character-
// recognition service. The decision pipeline only ever sees recognized text
// or a typed failure; an OCR outage never silently becomes an empty scan.
package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Page-segmentation modes the service supports. Anything else folds to the
// single-block default, which works well for most printed labels.
const (
	PSMSingleBlock = 6
	PSMSparseText  = 11
)

// ErrInvalidImage marks input that is not a decodable image data URL.
var ErrInvalidImage = errors.New("invalid image data, expected a base64 image data URL")

// ErrUnavailable marks a reachable-but-failing or unreachable OCR service.
var ErrUnavailable = errors.New("ocr service unavailable")

var dataURLRe = regexp.MustCompile(`(?i)^data:image/(?:png|jpeg|jpg|webp);base64,(.+)$`)

// Config drives the OCR client.
type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// Client calls the OCR service over HTTP.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

// NewClient constructs an OCR client. An empty endpoint is a configuration
// error: callers should skip OCR entirely instead.
func NewClient(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("ocr endpoint required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
	}, nil
}

// NormalizePSM folds the requested page-segmentation mode to a supported one.
func NormalizePSM(psm int) int {
	if psm == PSMSparseText {
		return PSMSparseText
	}
	return PSMSingleBlock
}

type recognizeRequest struct {
	Image string `json:"image"`
	PSM   int    `json:"psm"`
}

type recognizeResponse struct {
	Text string `json:"text"`
}

// Recognize extracts text from a base64 image data URL using the given
// page-segmentation mode. Failures are typed: ErrInvalidImage for bad input,
// ErrUnavailable for service trouble.
func (c *Client) Recognize(ctx context.Context, imageDataURL string, psm int) (string, error) {
	image, err := decodeDataURL(imageDataURL)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(recognizeRequest{
		Image: base64.StdEncoding.EncodeToString(image),
		PSM:   NormalizePSM(psm),
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var decoded recognizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return strings.TrimSpace(decoded.Text), nil
}

func decodeDataURL(imageDataURL string) ([]byte, error) {
	m := dataURLRe.FindStringSubmatch(strings.TrimSpace(imageDataURL))
	if m == nil {
		return nil, ErrInvalidImage
	}
	data, err := base64.StdEncoding.DecodeString(m[1])
	if err != nil || len(data) == 0 {
		return nil, ErrInvalidImage
	}
	return data, nil
}
