package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"comicshelf/pkg/models"
)

// errNoSuchPage is returned when the server rejects a page number.
var errNoSuchPage = errors.New("no such page")

type apiClient struct {
	baseURL string
	http    *http.Client
}

func (c *apiClient) listComics(ctx context.Context) ([]models.ComicRecord, error) {
	var out []models.ComicRecord
	if err := c.doJSON(ctx, http.MethodGet, "/api/comics", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *apiClient) getComic(ctx context.Context, id string) (models.ComicRecord, error) {
	var out models.ComicRecord
	err := c.doJSON(ctx, http.MethodGet, "/api/comics/"+url.PathEscape(id), &out)
	return out, err
}

// getPage returns the page bytes and the extension matching their content type.
func (c *apiClient) getPage(ctx context.Context, id string, n int) ([]byte, string, error) {
	endpoint := c.baseURL + "/api/comic/" + url.PathEscape(id) + "/page/" + strconv.Itoa(n)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode == http.StatusBadRequest {
		return nil, "", fmt.Errorf("%w: %d", errNoSuchPage, n)
	}
	if resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("GET %s failed: %s", endpoint, apiError(data))
	}

	return data, extensionFor(resp.Header.Get("Content-Type")), nil
}

func (c *apiClient) doJSON(ctx context.Context, method, path string, out any) error {
	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %s", method, endpoint, apiError(data))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// apiError pulls the message out of an {"error": "..."} body.
func apiError(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}

func extensionFor(contentType string) string {
	if m := mimetype.Lookup(strings.TrimSpace(strings.Split(contentType, ";")[0])); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return ".bin"
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}
