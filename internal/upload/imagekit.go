// Package upload pushes resume files to an ImageKit-compatible media
// store and hands back the public URL embedded in the session.
package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"
)

const defaultEndpoint = "https://upload.imagekit.io/api/v1/files/upload"

// ErrNotConfigured is returned when no private key is set. Sessions can
// still be created from a pasted job description without a resume.
var ErrNotConfigured = errors.New("resume upload is not configured")

type Config struct {
	Endpoint   string
	PrivateKey string
	Folder     string
	Timeout    time.Duration
}

func NewConfig() *Config {
	endpoint := os.Getenv("IMAGEKIT_UPLOAD_ENDPOINT")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	folder := os.Getenv("IMAGEKIT_FOLDER")
	if folder == "" {
		folder = "/resumes"
	}
	return &Config{
		Endpoint:   endpoint,
		PrivateKey: os.Getenv("IMAGEKIT_PRIVATE_KEY"),
		Folder:     folder,
		Timeout:    30 * time.Second,
	}
}

type Client struct {
	config *Config
	http   *http.Client
}

func NewClient(config *Config) *Client {
	return &Client{
		config: config,
		http:   &http.Client{Timeout: config.Timeout},
	}
}

// Enabled reports whether uploads can be served.
func (c *Client) Enabled() bool {
	return c.config.PrivateKey != ""
}

type uploadResult struct {
	URL    string `json:"url"`
	FileID string `json:"fileId"`
	Name   string `json:"name"`
}

// UploadResume streams the file to the media store and returns its
// public URL.
func (c *Client) UploadResume(ctx context.Context, fileName string, file io.Reader) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		part, err := writer.CreateFormFile("file", fileName)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := writer.WriteField("fileName", fileName); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := writer.WriteField("folder", c.config.Folder); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, pr)
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	// ImageKit authenticates with the private key as basic auth user
	req.SetBasicAuth(c.config.PrivateKey, "")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("resume upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("resume upload rejected with status %d: %s", resp.StatusCode, string(body))
	}

	var result uploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if result.URL == "" {
		return "", errors.New("upload response missing file url")
	}
	return result.URL, nil
}
