package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"

	ytapi "github.com/hightemp/youtube-transcript-api-go/api"
)

// AudioTranscriber turns a fetched audio asset into plain text. Published
// captions are tried first because they are far cheaper than speech-to-text;
// the downloaded audio goes through Gemini only when no caption track exists.
type AudioTranscriber struct {
	fetchCaptions func(videoID string) (string, error)
	gemini        *Gemini
}

func NewAudioTranscriber(gemini *Gemini) *AudioTranscriber {
	captions := ytapi.NewYouTubeTranscriptApi()
	return &AudioTranscriber{
		fetchCaptions: func(videoID string) (string, error) {
			return captionTranscript(captions, videoID)
		},
		gemini: gemini,
	}
}

func (t *AudioTranscriber) Transcribe(ctx context.Context, asset *AudioAsset) (string, error) {
	if asset.VideoID != "" {
		if text, err := t.captionsUnderContext(ctx, asset.VideoID); err == nil {
			return text, nil
		} else if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	audio, err := os.ReadFile(asset.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read audio asset: %w", err)
	}

	text, err := t.gemini.TranscribeAudio(ctx, audio, asset.MIMEType)
	if err != nil {
		return "", fmt.Errorf("speech-to-text failed: %w", err)
	}
	return text, nil
}

// captionsUnderContext races the caption fetch against ctx so the stage
// timeout bounds it; the underlying HTTP client takes no context.
func (t *AudioTranscriber) captionsUnderContext(ctx context.Context, videoID string) (string, error) {
	type result struct {
		text string
		err  error
	}

	ch := make(chan result, 1)
	go func() {
		text, err := t.fetchCaptions(videoID)
		ch <- result{text, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.text, r.err
	}
}

func captionTranscript(captions *ytapi.YouTubeTranscriptApi, videoID string) (string, error) {
	transcript, err := captions.GetTranscript(videoID, []string{"en", "en-US", "en-GB"})
	if err != nil {
		// Fallback: request any available language
		transcript, err = captions.GetTranscript(videoID, nil)
		if err != nil {
			return "", fmt.Errorf("no caption track available: %w", err)
		}
	}

	if len(transcript.Entries) == 0 {
		return "", fmt.Errorf("caption track is empty")
	}

	var fullText strings.Builder
	for _, entry := range transcript.Entries {
		text := strings.TrimSpace(entry.Text)
		if text == "" {
			continue
		}
		fullText.WriteString(text)
		fullText.WriteString(" ")
	}

	cleaned := strings.TrimSpace(fullText.String())
	if cleaned == "" {
		return "", fmt.Errorf("caption text resolved to empty content")
	}

	return cleaned, nil
}
