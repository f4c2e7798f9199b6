package render

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteDot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.dot")

	if err := WriteDot("digraph G {}\n", path); err != nil {
		t.Fatalf("WriteDot() failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(content) != "digraph G {}\n" {
		t.Errorf("file content = %q", content)
	}
}

func TestWriteDot_BadPath(t *testing.T) {
	err := WriteDot("digraph G {}", filepath.Join(t.TempDir(), "missing", "graph.dot"))
	var renderErr *RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("expected RenderError, got %v", err)
	}
}

func TestRenderPNG(t *testing.T) {
	image := []byte{0x89, 'P', 'N', 'G'}
	var gotChart, gotDescription string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gotChart = r.PostForm.Get("cht")
		gotDescription = r.PostForm.Get("chl")
		w.Write(image)
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "graph.png")
	renderer := NewRenderer(server.URL, nil)

	if err := renderer.RenderPNG(context.Background(), "digraph G {}", path); err != nil {
		t.Fatalf("RenderPNG() failed: %v", err)
	}

	if gotChart != "gv" {
		t.Errorf("cht param = %q, expected gv", gotChart)
	}
	if gotDescription != "digraph G {}" {
		t.Errorf("chl param = %q", gotDescription)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(content) != string(image) {
		t.Errorf("image bytes = %v", content)
	}
}

func TestRenderPNG_ServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "graph.png")
	renderer := NewRenderer(server.URL, nil)

	err := renderer.RenderPNG(context.Background(), "digraph G {}", path)
	var renderErr *RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("expected RenderError, got %v", err)
	}

	// Nothing must be written on failure.
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("output file should not exist after a failed render")
	}
}

func TestRenderPNG_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	renderer := NewRenderer(serverURL, nil)
	err := renderer.RenderPNG(context.Background(), "digraph G {}", filepath.Join(t.TempDir(), "g.png"))
	var renderErr *RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("expected RenderError, got %v", err)
	}
}
