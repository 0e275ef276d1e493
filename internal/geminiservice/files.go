package geminiservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// File states reported by the Files API.
const (
	FileStateProcessing = "PROCESSING"
	FileStateActive     = "ACTIVE"
	FileStateFailed     = "FAILED"
)

var ErrFileFailed = errors.New("gemini: file processing failed")

// File is an uploaded media file. Name has the form "files/<id>".
type File struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	MimeType    string `json:"mimeType"`
	SizeBytes   string `json:"sizeBytes,omitempty"`
	URI         string `json:"uri"`
	State       string `json:"state"`
}

// UploadFile stores data with the resumable upload protocol: a start request
// that returns the session URL, then a single upload-and-finalize request.
func (c *Client) UploadFile(ctx context.Context, data []byte, mimeType, displayName string) (File, error) {
	if c.cfg.APIKey == "" {
		return File{}, ErrNoAPIKey
	}
	meta, err := json.Marshal(map[string]any{"file": map[string]string{"display_name": displayName}})
	if err != nil {
		return File{}, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.cfg.BaseURL+"/upload/v1beta/files", bytes.NewReader(meta))
	if err != nil {
		return File{}, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Upload-Protocol", "resumable")
	req.Header.Set("X-Goog-Upload-Command", "start")
	req.Header.Set("X-Goog-Upload-Header-Content-Length", strconv.Itoa(len(data)))
	req.Header.Set("X-Goog-Upload-Header-Content-Type", mimeType)

	resp, err := c.http.Do(req)
	if err != nil {
		return File{}, fmt.Errorf("start upload: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return File{}, fmt.Errorf("start upload: %s", resp.Status)
	}
	session := resp.Header.Get("X-Goog-Upload-URL")
	if session == "" {
		return File{}, errors.New("start upload: missing X-Goog-Upload-URL header")
	}

	req, err = c.newRequest(ctx, http.MethodPost, session, bytes.NewReader(data))
	if err != nil {
		return File{}, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.ContentLength = int64(len(data))
	req.Header.Set("X-Goog-Upload-Offset", "0")
	req.Header.Set("X-Goog-Upload-Command", "upload, finalize")

	resp, err = c.http.Do(req)
	if err != nil {
		return File{}, fmt.Errorf("upload bytes: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return File{}, fmt.Errorf("upload bytes: %w", readAPIError(resp))
	}

	var out struct {
		File File `json:"file"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return File{}, fmt.Errorf("decode upload response: %w", err)
	}
	c.log.Info().Str("file", out.File.Name).Int("bytes", len(data)).Msg("Uploaded file")
	return out.File, nil
}

func (c *Client) GetFile(ctx context.Context, name string) (File, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.fileURL(name), nil)
	if err != nil {
		return File{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return File{}, fmt.Errorf("get file %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return File{}, fmt.Errorf("get file %s: %w", name, readAPIError(resp))
	}
	var f File
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		return File{}, fmt.Errorf("decode file %s: %w", name, err)
	}
	return f, nil
}

// WaitForFile polls until the file leaves PROCESSING. A FAILED file is ErrFileFailed.
func (c *Client) WaitForFile(ctx context.Context, name string) (File, error) {
	for {
		f, err := c.GetFile(ctx, name)
		if err != nil {
			return File{}, err
		}
		switch f.State {
		case FileStateFailed:
			return f, fmt.Errorf("%w: %s", ErrFileFailed, name)
		case FileStateProcessing:
			if err := sleep(ctx, c.cfg.PollInterval); err != nil {
				return File{}, err
			}
		default:
			return f, nil
		}
	}
}

func (c *Client) DeleteFile(ctx context.Context, name string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, c.fileURL(name), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("delete file %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("delete file %s: %w", name, readAPIError(resp))
	}
	return nil
}

func (c *Client) fileURL(name string) string {
	return c.cfg.BaseURL + "/v1beta/" + name
}

// deleteQuietly removes an uploaded file on a fresh context so cleanup survives cancellation.
func (c *Client) deleteQuietly(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.DeleteFile(ctx, name); err != nil {
		c.log.Error().Err(err).Str("file", name).Msg("Error deleting uploaded file")
		return
	}
	c.log.Info().Str("file", name).Msg("Deleted uploaded file")
}
