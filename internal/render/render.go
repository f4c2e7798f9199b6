// Package render turns a Graphviz description into an output artifact:
// a local dot file, or an image produced by an external layout service.
package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/gtempel/jiragraph/internal/logger"
)

// RenderError indicates the external renderer failed or its output could
// not be written.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering to %s failed: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// WriteDot writes the raw graph description to a file.
func WriteDot(description, path string) error {
	if err := os.WriteFile(path, []byte(description), 0644); err != nil {
		return &RenderError{Path: path, Err: err}
	}
	return nil
}

// Renderer posts dot text to a Google Chart compatible graphviz endpoint
// and writes the returned image bytes.
type Renderer struct {
	chartURL   string
	httpClient *http.Client
	log        *logger.Logger
}

// NewRenderer creates a Renderer for the given chart endpoint.
func NewRenderer(chartURL string, log *logger.Logger) *Renderer {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Renderer{
		chartURL:   chartURL,
		httpClient: &http.Client{},
		log:        log,
	}
}

// RenderPNG submits the description for layout and writes the resulting
// image to path. Any failure surfaces as a *RenderError; nothing is
// written on failure.
func (r *Renderer) RenderPNG(ctx context.Context, description, path string) error {
	form := url.Values{}
	form.Set("cht", "gv")
	form.Set("chl", description)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.chartURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return &RenderError{Path: path, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	r.log.Debugw("Submitting graph for rendering", "endpoint", r.chartURL, "bytes", len(description))

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return &RenderError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RenderError{Path: path, Err: fmt.Errorf("renderer returned HTTP %d", resp.StatusCode)}
	}

	image, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RenderError{Path: path, Err: err}
	}

	if err := os.WriteFile(path, image, 0644); err != nil {
		return &RenderError{Path: path, Err: err}
	}

	r.log.Infow("Wrote rendered image", "path", path, "bytes", len(image))
	return nil
}
