package covers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/time/rate"
)

var (
	ErrNotImage = errors.New("content is not an image")
	ErrTooLarge = errors.New("image exceeds size limit")
)

// PickedItem identifies an image chosen by the user: a remote URL or a
// file on the server's filesystem. The zero value picks nothing.
type PickedItem struct {
	URL  string `json:"url,omitempty"`
	Path string `json:"path,omitempty"`
}

func (p PickedItem) Empty() bool {
	return p.URL == "" && p.Path == ""
}

func (p PickedItem) String() string {
	if p.URL != "" {
		return p.URL
	}
	return p.Path
}

type LoaderConfig struct {
	Timeout  time.Duration
	MaxBytes int64
	Rate     float64 // fetches per second
	Burst    int
}

// Loader turns picked items into image bytes.
type Loader struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	maxBytes    int64
}

func NewLoader(cfg LoaderConfig) *Loader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 10 << 20
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &Loader{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst),
		maxBytes:    cfg.MaxBytes,
	}
}

// LoadImageData returns the image bytes for item, or nil for an empty item.
func (l *Loader) LoadImageData(ctx context.Context, item PickedItem) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case item.URL != "":
		data, err = l.fetch(ctx, item.URL)
	case item.Path != "":
		data, err = l.readFile(item.Path)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if _, err := DetectImage(data); err != nil {
		return nil, fmt.Errorf("%s: %w", item, err)
	}
	return data, nil
}

func (l *Loader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid cover url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported cover url scheme %q", u.Scheme)
	}

	if err := l.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "BookCatalog/1.0")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch cover: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch cover: status %d", resp.StatusCode)
	}
	return l.readLimited(resp.Body)
}

func (l *Loader) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cover file: %w", err)
	}
	defer f.Close()
	return l.readLimited(f)
}

func (l *Loader) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read cover: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

// DetectImage returns the MIME type of data, or ErrNotImage when the
// content is not a recognised image format.
func DetectImage(data []byte) (string, error) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, mt.String())
	}
	return mt.String(), nil
}
