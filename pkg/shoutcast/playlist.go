package shoutcast

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// maxPlaylistSize bounds how much of a non-stream response is read while
// looking for a playlist.
const maxPlaylistSize = 64 * 1024

var errNoStreamURL = errors.New("no stream URL found")

// parsePLS returns the first stream URL of a PLS playlist.
func parsePLS(content string) (string, error) {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "File") {
			continue
		}
		_, url, ok := strings.Cut(line, "=")
		if url = strings.TrimSpace(url); ok && url != "" {
			return url, nil
		}
	}
	return "", fmt.Errorf("PLS playlist: %w", errNoStreamURL)
}

// parseM3U returns the first stream URL of an M3U playlist.
func parseM3U(content string) (string, error) {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if isHTTP(line) {
			return line, nil
		}
	}
	return "", fmt.Errorf("M3U playlist: %w", errNoStreamURL)
}

func isHTTP(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func isPLS(url, contentType, content string) bool {
	return strings.Contains(contentType, "audio/x-scpls") ||
		strings.Contains(contentType, "application/pls+xml") ||
		strings.HasSuffix(url, ".pls") ||
		strings.Contains(content, "[playlist]") ||
		strings.Contains(content, "File1=")
}

func isM3U(url, contentType, content string) bool {
	return strings.Contains(contentType, "audio/mpegurl") ||
		strings.Contains(contentType, "audio/x-mpegurl") ||
		strings.Contains(contentType, "application/vnd.apple.mpegurl") ||
		strings.HasSuffix(url, ".m3u") ||
		strings.HasSuffix(url, ".m3u8") ||
		strings.Contains(content, "#EXTM3U") ||
		isHTTP(strings.TrimSpace(content))
}

// isStreamType reports whether contentType is an audio stream rather than a
// playlist.
func isStreamType(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	switch strings.TrimSpace(mediaType) {
	case "audio/mpeg", "audio/aac", "audio/aacp":
		return true
	}
	return false
}

// resolvePlaylistURL checks if the URL is a playlist file and resolves it to a stream URL
func resolvePlaylistURL(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := newRequest(ctx, url)
	if err != nil {
		return "", err
	}
	resp, err := newClient(10 * time.Second).Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")

	// Already a stream
	if resp.Header.Get("icy-metaint") != "" || isStreamType(contentType) {
		return url, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPlaylistSize))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	content := string(body)

	switch {
	case isPLS(url, contentType, content):
		return parsePLS(content)
	case isM3U(url, contentType, content):
		return parseM3U(content)
	}

	return "", fmt.Errorf("URL does not appear to be a stream or playlist (Content-Type: %s)", contentType)
}
