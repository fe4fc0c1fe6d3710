package pipeline

import (
	"context"
	"fmt"
	"io"
	urlpkg "net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	yt "github.com/kkdai/youtube/v2"
)

// AudioAsset is the local handle produced by the fetch stage. Path lives
// inside the per-run temp dir owned by the orchestrator.
type AudioAsset struct {
	Path     string
	MIMEType string
	VideoID  string
}

type YouTubeFetcher struct {
	client *yt.Client
}

func NewYouTubeFetcher() *YouTubeFetcher {
	return &YouTubeFetcher{client: &yt.Client{}}
}

const maxAudioBytes = 100 * 1024 * 1024 // 100MB safety cap

// Fetch downloads the best available audio-only stream into dir.
func (f *YouTubeFetcher) Fetch(ctx context.Context, sourceURL, dir string) (*AudioAsset, error) {
	videoID := ExtractVideoID(sourceURL)
	if videoID == "" {
		return nil, fmt.Errorf("unsupported video URL: %s", sourceURL)
	}

	video, err := f.client.GetVideoContext(ctx, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch video metadata: %w", err)
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return nil, fmt.Errorf("no audio formats available")
	}

	best := formats[0]
	for _, format := range formats {
		if format.Bitrate > best.Bitrate {
			best = format
		}
	}

	stream, _, err := f.client.GetStreamContext(ctx, video, &best)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio stream: %w", err)
	}
	defer stream.Close()

	path := filepath.Join(dir, "audio")
	out, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio file: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, io.LimitReader(stream, maxAudioBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read audio stream: %w", err)
	}
	if written > maxAudioBytes {
		return nil, fmt.Errorf("audio stream exceeds %d MB limit", maxAudioBytes/(1024*1024))
	}
	if written == 0 {
		return nil, fmt.Errorf("audio stream is empty")
	}

	mimeType := strings.TrimSpace(strings.Split(best.MimeType, ";")[0])
	if mimeType == "" {
		mimeType = "audio/mp4"
	}

	return &AudioAsset{Path: path, MIMEType: mimeType, VideoID: videoID}, nil
}

var videoIDPattern = regexp.MustCompile(`(?:v=|\/v\/|youtu\.be\/|embed\/|shorts\/)([a-zA-Z0-9_-]{11})`)

// ExtractVideoID resolves the 11-character video ID from the usual YouTube URL
// shapes. Empty string means the URL is not a supported host.
func ExtractVideoID(url string) string {
	parsed, err := urlpkg.Parse(url)
	if err == nil {
		host := strings.ToLower(parsed.Host)
		path := strings.Trim(parsed.Path, "/")

		// youtube.com/watch?v=VIDEO_ID
		if strings.Contains(host, "youtube.com") {
			if v := parsed.Query().Get("v"); len(v) == 11 {
				return v
			}

			parts := strings.Split(path, "/")
			if len(parts) >= 2 {
				switch parts[0] {
				case "shorts", "embed", "v":
					if len(parts[1]) == 11 {
						return parts[1]
					}
				}
			}
		}

		// youtu.be/VIDEO_ID
		if strings.Contains(host, "youtu.be") {
			candidate := strings.Split(path, "/")[0]
			if len(candidate) == 11 {
				return candidate
			}
		}
	}

	// Fallback for unusual URL forms
	if m := videoIDPattern.FindStringSubmatch(url); len(m) > 1 {
		return m[1]
	}

	return ""
}
