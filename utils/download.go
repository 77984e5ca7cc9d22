package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// SVGContentType is reported by DetectContentType for SVG documents.
const SVGContentType = "image/svg+xml"

// maxDownloadSize caps the size of a remote source image.
const maxDownloadSize = 64 << 20

// DownloadImage downloads a source image and returns its bytes.
func DownloadImage(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid image URI %s: %w", uri, err)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to download image file from URI %s: %w", uri, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unable to download image file from URI %s, status %v", uri, res.Status)
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, maxDownloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("unable to read response body: %w", err)
	}
	if len(data) > maxDownloadSize {
		return nil, fmt.Errorf("the image at %s exceeds %s", uri, FormatBytes(maxDownloadSize))
	}

	if ctype := DetectContentType(data); !strings.HasPrefix(ctype, "image/") {
		return nil, fmt.Errorf("the downloaded file is not a valid image type: %s", ctype)
	}
	return data, nil
}

// IsValidUrl tests a string to determine if it is a well-structured url or not.
func IsValidUrl(uri string) bool {
	_, err := url.ParseRequestURI(uri)
	if err != nil {
		return false
	}

	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// DetectContentType sniffs the MIME type of data. SVG documents, which the
// standard sniffer reports as XML or plain text, are recognized by their root element.
func DetectContentType(data []byte) string {
	// Only the first 512 bytes are used to sniff the content type.
	contentType := http.DetectContentType(data)
	if strings.HasPrefix(contentType, "image/") {
		return contentType
	}
	if strings.HasPrefix(contentType, "text/") && looksLikeSVG(data) {
		return SVGContentType
	}
	return contentType
}

func looksLikeSVG(data []byte) bool {
	head := data
	if len(head) > 4096 {
		head = head[:4096]
	}
	return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
}
