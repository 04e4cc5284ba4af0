// Package youtube fetches video transcripts so a generation request can use
// a lecture video as its context material.
package youtube

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const (
	videoIDPattern   = `(?:youtube\.com\/(?:[^\/]+\/.+\/|(?:v|e(?:mbed)?)\/|.*[?&]v=)|youtu\.be\/)([^"&?\/\s]{11})`
	transcriptXMLTag = `<text start="([^"]*)" dur="([^"]*)">([^<]*)<\/text>`
)

var (
	videoIDRegexp    = regexp.MustCompile(videoIDPattern)
	transcriptRegexp = regexp.MustCompile(transcriptXMLTag)
)

// Fetcher retrieves caption transcripts from YouTube's public watch pages.
type Fetcher struct {
	httpClient *http.Client
}

func New() *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Transcript returns the full caption text for a video URL or bare 11-char
// video ID, using the first available caption track.
func (f *Fetcher) Transcript(videoURL string) (string, error) {
	videoID, err := parseVideoID(videoURL)
	if err != nil {
		return "", err
	}

	trackURL, err := f.captionTrackURL(videoID)
	if err != nil {
		return "", err
	}

	resp, err := f.httpClient.Get(trackURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch transcript: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read transcript body: %w", err)
	}

	var text strings.Builder
	for _, match := range transcriptRegexp.FindAllStringSubmatch(string(body), -1) {
		text.WriteString(html.UnescapeString(match[3]))
		text.WriteString(" ")
	}

	if text.Len() == 0 {
		return "", fmt.Errorf("transcript for video %s was empty", videoID)
	}
	return text.String(), nil
}

// captionTrackURL scrapes the watch page for the first caption track URL.
func (f *Fetcher) captionTrackURL(videoID string) (string, error) {
	resp, err := f.httpClient.Get("https://www.youtube.com/watch?v=" + videoID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch video page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read video page: %w", err)
	}

	parts := strings.SplitN(string(body), `"captions":`, 2)
	if len(parts) < 2 {
		return "", fmt.Errorf("no captions available for video %s", videoID)
	}

	end := strings.Index(parts[1], `,"videoDetails`)
	if end < 0 {
		return "", fmt.Errorf("malformed captions block for video %s", videoID)
	}

	var captions struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []struct {
				BaseURL string `json:"baseUrl"`
			} `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	}
	if err := json.Unmarshal([]byte(parts[1][:end]), &captions); err != nil {
		return "", fmt.Errorf("failed to parse captions data: %w", err)
	}

	tracks := captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return "", fmt.Errorf("no transcripts available for video %s", videoID)
	}
	return tracks[0].BaseURL, nil
}

func parseVideoID(videoURL string) (string, error) {
	if len(videoURL) == 11 && !strings.Contains(videoURL, "/") {
		return videoURL, nil
	}
	if match := videoIDRegexp.FindStringSubmatch(videoURL); match != nil {
		return match[1], nil
	}
	return "", fmt.Errorf("invalid YouTube URL or video ID")
}
