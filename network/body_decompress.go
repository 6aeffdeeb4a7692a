package network

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gocolly/colly/v2"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// decoderFactory wraps a compressed stream with its decoder.
type decoderFactory = func(io.Reader) (io.ReadCloser, error)

// Content-Encoding value -> decoder
var decoders = map[string]decoderFactory{
	"br": func(r io.Reader) (io.ReadCloser, error) {
		return io.NopCloser(brotli.NewReader(r)), nil
	},
	"deflate": func(r io.Reader) (io.ReadCloser, error) {
		return flate.NewReader(r), nil
	},
	"gzip": func(r io.Reader) (io.ReadCloser, error) {
		return gzip.NewReader(r)
	},
	"zstd": func(r io.Reader) (io.ReadCloser, error) {
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return decoder.IOReadCloser(), nil
	},
	"identity": func(r io.Reader) (io.ReadCloser, error) {
		return io.NopCloser(r), nil
	},
}

// file extension of single file compressed download -> encoding
var extEncodings = map[string]string{
	".br":  "br",
	".gz":  "gzip",
	".zst": "zstd",
}

// NewDecoder returns reader of decoded content of `r`. Empty encoding means
// identity.
func NewDecoder(encoding string, r io.Reader) (io.ReadCloser, error) {
	encoding = strings.ToLower(strings.TrimSpace(encoding))
	if encoding == "" {
		encoding = "identity"
	}

	factory, ok := decoders[encoding]
	if !ok {
		return nil, fmt.Errorf("unknown content-encoding: %s", encoding)
	}

	return factory(r)
}

// EncodingOfFile guesses encoding of a single file compressed stream from its
// extension. ok is false for files that are not compressed this way.
func EncodingOfFile(path string) (encoding string, ok bool) {
	encoding, ok = extEncodings[strings.ToLower(filepath.Ext(path))]
	return encoding, ok
}

// DecompressResponseBody decodes response body according to its
// Content-Encoding header.
func DecompressResponseBody(r *colly.Response) ([]byte, error) {
	return DecompressBody(r.Headers.Get("content-encoding"), r.Body)
}

// DecompressBody decodes data encoded with given Content-Encoding value.
func DecompressBody(encoding string, body []byte) ([]byte, error) {
	reader, err := NewDecoder(encoding, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress response: %s", err)
	}

	return data, nil
}
