package asset

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestLocalResource(t *testing.T) {
	_, thisFile, _, _ := runtime.Caller(0)
	res, err := NewResource(thisFile, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	if res.IsRemote() || res.IsCompressed() {
		t.Fatalf("expected a local uncompressed resource")
	}
	if res.Ext() != ".go" {
		t.Fatalf("expected extension .go; got %q", res.Ext())
	}
}

func TestHttpResource(t *testing.T) {
	_, thisFile, _, _ := runtime.Caller(0)
	thisDir := filepath.Dir(thisFile)

	server := httptest.NewServer(http.FileServer(http.Dir(thisDir)))
	defer server.Close()

	fetchUrl := server.URL + "/" + filepath.Base(thisFile)
	res, err := NewResource(fetchUrl, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()
	if !res.IsRemote() {
		t.Fatal("expected resource to be remote")
	}

	fetchUrl = server.URL + "/file-not-found.foo"
	expError := fmt.Sprintf("resource: could not fetch '%s': status %d", fetchUrl, 404)
	_, err = NewResource(fetchUrl, nil)
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get: %s; got %v", expError, err)
	}
}

func TestRelativeResources(t *testing.T) {
	serverHits := 0
	serverFn := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serverHits++
		if r.URL.Path == "/foo/scene.obj" || r.URL.Path == "/foo/scene.mtl" {
			w.Write([]byte("OK"))
		} else {
			http.NotFound(w, r)
		}
	})
	server := httptest.NewServer(serverFn)
	defer server.Close()

	res1, err := NewResource(server.URL+"/foo/scene.obj", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res1.Close()
	res2, err := NewResource("scene.mtl", res1)
	if err != nil {
		t.Fatal(err)
	}
	defer res2.Close()

	if serverHits != 2 {
		t.Fatalf("expected server to receive 2 requests; got %d", serverHits)
	}
}

func TestCompressedResource(t *testing.T) {
	payload := []byte(strings.Repeat("v 1.0 2.0 3.0\n", 100))
	compressed, err := Compress(payload)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	file := filepath.Join(dir, "scene.obj.zst")
	if err = os.WriteFile(file, compressed, 0644); err != nil {
		t.Fatal(err)
	}

	res, err := NewResource(file, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	if !res.IsCompressed() {
		t.Fatal("expected resource to be flagged as compressed")
	}
	if res.Ext() != ".obj" {
		t.Fatalf("expected extension .obj; got %q", res.Ext())
	}

	data, err := io.ReadAll(res)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, payload) {
		t.Fatalf("expected decompressed payload to match the original")
	}

	streamRes, err := NewResourceFromStream("embedded.obj.zst", bytes.NewReader(compressed))
	if err != nil {
		t.Fatal(err)
	}
	defer streamRes.Close()
	if data, err = io.ReadAll(streamRes); err != nil || !bytes.Equal(data, payload) {
		t.Fatalf("expected stream resource to decompress payload; err: %v", err)
	}
}

func TestUnsupportedResourceScheme(t *testing.T) {
	expError := "resource: unsupported scheme 'gopher'"
	_, err := NewResource("gopher://digging.go", nil)
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get: %s; got %v", expError, err)
	}
}

func TestResourceConnectionRefusedError(t *testing.T) {
	_, err := NewResource("http://localhost:12345/foo.go", nil)
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected to get 'connection refused error'; got %v", err)
	}
}
