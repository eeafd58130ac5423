package client

import (
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// storedCookie is the on-disk form of a session cookie. The jar only hands
// back name/value pairs for a URL, which is all the gateway needs.
type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SaveCookies writes the jar's cookies for the client's base URL to path,
// creating parent directories as needed. The file is user-readable only.
func (c *Client) SaveCookies(path string) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}

	var stored []storedCookie
	for _, ck := range c.client.Jar.Cookies(u) {
		stored = append(stored, storedCookie{Name: ck.Name, Value: ck.Value})
	}
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// LoadCookies restores cookies saved by SaveCookies into the jar. A missing
// file is not an error: the client simply starts unauthenticated.
func (c *Client) LoadCookies(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return err
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, ck := range stored {
		cookies = append(cookies, &http.Cookie{Name: ck.Name, Value: ck.Value})
	}
	c.client.Jar.SetCookies(u, cookies)
	return nil
}
