// Package cloudinary предоставляет клиент для загрузки изображений в Cloudinary.
package cloudinary

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const uploadFolder = "zoyabites"

// ErrNotConfigured возвращается, если учётные данные Cloudinary не заданы.
var ErrNotConfigured = errors.New("image hosting not configured")

// Client инкапсулирует подписанную загрузку изображений в Cloudinary.
type Client struct {
	cloudName  string
	apiKey     string
	apiSecret  string
	baseURL    string
	httpClient *retryablehttp.Client
	now        func() time.Time
}

// NewClient создаёт клиент Cloudinary для указанного облака.
func NewClient(cloudName, apiKey, apiSecret string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 1
	rc.HTTPClient.Timeout = 30 * time.Second
	rc.Logger = nil

	return &Client{
		cloudName:  cloudName,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		baseURL:    "https://api.cloudinary.com",
		httpClient: rc,
		now:        time.Now,
	}
}

// Configured сообщает, заданы ли учётные данные.
func (c *Client) Configured() bool {
	return c != nil && c.cloudName != "" && c.apiKey != "" && c.apiSecret != ""
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload загружает изображение и возвращает его публичный URL.
// Запрос подписывается SHA-1 от параметров и секрета по схеме Cloudinary.
func (c *Client) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	timestamp := strconv.FormatInt(c.now().Unix(), 10)
	paramsToSign := "folder=" + uploadFolder + "&timestamp=" + timestamp
	digest := sha1.Sum([]byte(paramsToSign + c.apiSecret))
	signature := hex.EncodeToString(digest[:])

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return "", fmt.Errorf("write file part: %w", err)
	}

	fields := map[string]string{
		"api_key":   c.apiKey,
		"timestamp": timestamp,
		"signature": signature,
		"folder":    uploadFolder,
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return "", fmt.Errorf("write field %s: %w", k, err)
		}
	}

	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	url := fmt.Sprintf("%s/v1_1/%s/image/upload", c.baseURL, c.cloudName)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var result uploadResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if result.Error.Message != "" {
			return "", fmt.Errorf("upload rejected: %s", result.Error.Message)
		}
		return "", fmt.Errorf("upload failed: status %d", resp.StatusCode)
	}

	return result.SecureURL, nil
}
