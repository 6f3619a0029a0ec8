package filestorage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"time"
)

// Client is the object-storage collaborator for profile images. Ownership of
// an uploaded object follows the member lifecycle: the lifecycle and profile
// paths delete superseded objects.
type Client interface {
	Upload(ctx context.Context, ownerKey, fileName, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

type httpClient struct {
	baseURL string
	client  *http.Client
}

type uploadResponse struct {
	URL string `json:"url"`
}

func NewHTTPClient(baseURL string, timeout time.Duration) Client {
	return &httpClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *httpClient) Upload(ctx context.Context, ownerKey, fileName, contentType string, data []byte) (string, error) {
	if ownerKey == "" {
		return "", fmt.Errorf("owner_key is required")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", path.Base(fileName))
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	_ = writer.WriteField("owner_key", ownerKey)
	if contentType != "" {
		_ = writer.WriteField("content_type", contentType)
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/files/upload", c.baseURL), body)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	res, err := c.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		data, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("filestorage error: status %d: %s", res.StatusCode, string(data))
	}

	var resp uploadResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", fmt.Errorf("filestorage response missing url")
	}
	return resp.URL, nil
}

func (c *httpClient) Delete(ctx context.Context, fileURL string) error {
	if fileURL == "" {
		return nil
	}
	endpoint := fmt.Sprintf("%s/files?url=%s", c.baseURL, url.QueryEscape(fileURL))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	res, err := c.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		data, _ := io.ReadAll(res.Body)
		return fmt.Errorf("filestorage error: status %d: %s", res.StatusCode, string(data))
	}
	return nil
}
