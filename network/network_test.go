package network

import (
	"archive/tar"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

const payload = "a\tr\tb\nb\tr\tc\n"

func TestDecompressBody(t *testing.T) {
	var gzBuf bytes.Buffer
	gzWriter := gzip.NewWriter(&gzBuf)
	gzWriter.Write([]byte(payload))
	gzWriter.Close()

	var brBuf bytes.Buffer
	brWriter := brotli.NewWriter(&brBuf)
	brWriter.Write([]byte(payload))
	brWriter.Close()

	zstdEncoder, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("failed to create zstd encoder: %s", err)
	}
	zstdData := zstdEncoder.EncodeAll([]byte(payload), nil)
	zstdEncoder.Close()

	cases := map[string][]byte{
		"":         []byte(payload),
		"identity": []byte(payload),
		"gzip":     gzBuf.Bytes(),
		"br":       brBuf.Bytes(),
		"zstd":     zstdData,
	}

	for encoding, body := range cases {
		data, err := DecompressBody(encoding, body)
		if err != nil {
			t.Errorf("%q: unexpected error: %s", encoding, err)
			continue
		}
		if string(data) != payload {
			t.Errorf("%q: got %q, want %q", encoding, data, payload)
		}
	}

	if _, err := DecompressBody("compress", []byte(payload)); err == nil {
		t.Error("expecting error for unknown encoding")
	}
}

func TestExtractTarGz(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "data.tar.gz")

	var buf bytes.Buffer
	gzWriter := gzip.NewWriter(&buf)
	tarWriter := tar.NewWriter(gzWriter)
	for _, name := range []string{"./set/train.txt", "set/other.txt"} {
		tarWriter.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0o644,
			Size:     int64(len(payload)),
			Typeflag: tar.TypeReg,
		})
		tarWriter.Write([]byte(payload))
	}
	tarWriter.Close()
	gzWriter.Close()

	if err := os.WriteFile(archivePath, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write archive: %s", err)
	}

	output := filepath.Join(dir, "out", "train.txt")
	if err := ExtractArchive(archivePath, map[string]string{"set/train.txt": output}); err != nil {
		t.Fatalf("extraction failed: %s", err)
	}

	data, err := os.ReadFile(output)
	if err != nil || string(data) != payload {
		t.Errorf("extracted content %q, err %v", data, err)
	}

	err = ExtractArchive(archivePath, map[string]string{"set/missing.txt": output})
	if err == nil {
		t.Error("expecting error for missing member")
	}
}

func TestExtractZip(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "data.zip")

	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)
	w, _ := zipWriter.Create("Release/test.txt")
	w.Write([]byte(payload))
	zipWriter.Close()

	if err := os.WriteFile(archivePath, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write archive: %s", err)
	}

	output := filepath.Join(dir, "test.txt")
	if err := ExtractArchive(archivePath, map[string]string{"Release/test.txt": output}); err != nil {
		t.Fatalf("extraction failed: %s", err)
	}

	data, err := os.ReadFile(output)
	if err != nil || string(data) != payload {
		t.Errorf("extracted content %q, err %v", data, err)
	}
}

func TestDownloadRetries(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(payload))
	}))
	defer server.Close()

	output := filepath.Join(t.TempDir(), "train.txt")
	err := Download(context.Background(), []Target{
		{URL: server.URL + "/train.txt", OutputPath: output},
	}, DownloadOptions{JobCnt: 1, RetryCnt: 2})
	if err != nil {
		t.Fatalf("download failed: %s", err)
	}

	data, err := os.ReadFile(output)
	if err != nil || string(data) != payload {
		t.Errorf("downloaded content %q, err %v", data, err)
	}
	if hits.Load() != 2 {
		t.Errorf("expecting 2 requests, server saw %d", hits.Load())
	}
}

func TestDownloadGivesUp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	output := filepath.Join(t.TempDir(), "train.txt")
	err := Download(context.Background(), []Target{
		{URL: server.URL + "/train.txt", OutputPath: output},
	}, DownloadOptions{JobCnt: 1, RetryCnt: 1})
	if err == nil {
		t.Fatal("expecting download error")
	}

	if _, statErr := os.Stat(output); statErr == nil {
		t.Error("no file should be written for failed download")
	}
}

func TestExtractSingleFile(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "train.txt.zst")

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("failed to create zstd encoder: %s", err)
	}
	data := encoder.EncodeAll([]byte(payload), nil)
	encoder.Close()

	if err := os.WriteFile(archivePath, data, 0o644); err != nil {
		t.Fatalf("failed to write archive: %s", err)
	}

	output := filepath.Join(dir, "train.txt")
	if err := ExtractArchive(archivePath, map[string]string{"": output}); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	content, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("failed to read output: %s", err)
	}
	if string(content) != payload {
		t.Errorf("got %q, want %q", content, payload)
	}

	if encoding, ok := EncodingOfFile("a/B.GZ"); !ok || encoding != "gzip" {
		t.Errorf("EncodingOfFile(B.GZ) = %q, %v", encoding, ok)
	}
	if _, ok := EncodingOfFile("train.txt"); ok {
		t.Error("plain text file should not have encoding")
	}
}
