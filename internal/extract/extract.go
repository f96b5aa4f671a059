// Package extract turns stored version content into plain text for diffing and matching.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"policytrack/internal/storage"
)

var (
	// ErrUnsupported is returned for content types no backend can read.
	ErrUnsupported = errors.New("extract: unsupported content type")
	// ErrEmpty is returned when a document yields no text.
	ErrEmpty = errors.New("extract: no text in document")
)

// Extractor returns the plain text of stored content.
type Extractor interface {
	Extract(ctx context.Context, ref, contentType string) (string, error)
}

// Options configures a StorageExtractor.
type Options struct {
	// TikaURL is the base URL of a Tika server. Empty disables non-text formats.
	TikaURL  string
	Timeout  time.Duration
	MaxBytes int64
}

// StorageExtractor reads content from object storage. Plain text is decoded in process,
// anything else is sent to Tika's /tika endpoint.
type StorageExtractor struct {
	store    storage.Storage
	client   *http.Client
	tikaURL  string
	maxBytes int64
}

// NewStorageExtractor creates an extractor over store.
func NewStorageExtractor(store storage.Storage, opts Options) *StorageExtractor {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 20 << 20
	}
	return &StorageExtractor{
		store: store,
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tikaURL:  strings.TrimRight(opts.TikaURL, "/"),
		maxBytes: opts.MaxBytes,
	}
}

var _ Extractor = (*StorageExtractor)(nil)

// Extract loads ref and returns its text.
func (e *StorageExtractor) Extract(ctx context.Context, ref, contentType string) (string, error) {
	rc, info, err := e.store.Get(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", ref, err)
	}
	defer rc.Close()

	if contentType == "" {
		contentType = info.ContentType
	}
	body := io.LimitReader(rc, e.maxBytes)

	var text string
	if IsPlainText(contentType, ref) {
		text, err = e.readText(body)
	} else {
		text, err = e.tika(ctx, body, contentType)
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmpty
	}
	return text, nil
}

func (e *StorageExtractor) readText(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: text is not valid UTF-8", ErrUnsupported)
	}
	return string(b), nil
}

func (e *StorageExtractor) tika(ctx context.Context, r io.Reader, contentType string) (string, error) {
	if e.tikaURL == "" {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, contentType)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, e.tikaURL+"/tika", r)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("tika request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes))
	if err != nil {
		return "", fmt.Errorf("read tika response: %w", err)
	}
	if resp.StatusCode == http.StatusUnsupportedMediaType || resp.StatusCode == http.StatusUnprocessableEntity {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, contentType)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tika returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return string(body), nil
}

// IsPlainText reports whether content can be read without a conversion backend.
func IsPlainText(contentType, name string) bool {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		if strings.HasPrefix(mt, "text/") {
			return true
		}
		if mt != "application/octet-stream" {
			return false
		}
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".txt", ".md", ".text":
		return true
	}
	return false
}
