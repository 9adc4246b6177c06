// services/identity_client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// IdentityService is the boundary to the hosted auth provider. The service
// never sees credentials storage or token internals — it only exchanges
// email/password for an identity id or a session.
type IdentityService interface {
	// SignUp registers a new identity and returns its id.
	SignUp(ctx context.Context, email, password string) (string, error)
	// SignInWithPassword validates credentials and returns a session.
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	// ResetPasswordForEmail triggers the out-of-band reset email.
	ResetPasswordForEmail(ctx context.Context, email string) error
	// UpdatePassword sets a new password for the session's identity.
	UpdatePassword(ctx context.Context, accessToken, newPassword string) error
	// SignOut revokes the session. Always succeeds from the caller's view.
	SignOut(ctx context.Context, accessToken string) error
	// GetUser resolves the identity id behind an access token.
	// Returns "" (and no error) when the token carries no identity.
	GetUser(ctx context.Context, accessToken string) (string, error)
}

type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// IdentityClient talks to a GoTrue-compatible auth endpoint.
type IdentityClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewIdentityClient() *IdentityClient {
	baseURL := os.Getenv("IDENTITY_SERVICE_URL")
	if baseURL == "" {
		log.Fatal("IDENTITY_SERVICE_URL environment variable not set")
	}
	apiKey := os.Getenv("IDENTITY_SERVICE_KEY")
	if apiKey == "" {
		log.Fatal("IDENTITY_SERVICE_KEY environment variable not set")
	}
	return &IdentityClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type identityErrorBody struct {
	Message          string `json:"msg"`
	ErrorDescription string `json:"error_description"`
}

func (b identityErrorBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	return b.ErrorDescription
}

func (c *IdentityClient) SignUp(ctx context.Context, email, password string) (string, error) {
	body, status, err := c.post(ctx, "/signup", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", c.apiError("signup", status, body)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode signup response: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("signup response missing identity id")
	}
	return out.ID, nil
}

func (c *IdentityClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body, status, err := c.post(ctx, "/token?grant_type=password", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, c.apiError("token", status, body)
	}

	var sess Session
	if err := json.Unmarshal(body, &sess); err != nil {
		return nil, fmt.Errorf("decode session response: %w", err)
	}
	return &sess, nil
}

func (c *IdentityClient) ResetPasswordForEmail(ctx context.Context, email string) error {
	body, status, err := c.post(ctx, "/recover", "", map[string]string{"email": email})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return c.apiError("recover", status, body)
	}
	return nil
}

func (c *IdentityClient) UpdatePassword(ctx context.Context, accessToken, newPassword string) error {
	payload, _ := json.Marshal(map[string]string{"password": newPassword})
	req, err := http.NewRequestWithContext(ctx, "PUT", c.BaseURL+"/user", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	c.setHeaders(req, accessToken)

	body, status, err := c.do(req)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return c.apiError("update user", status, body)
	}
	return nil
}

func (c *IdentityClient) SignOut(ctx context.Context, accessToken string) error {
	_, status, err := c.post(ctx, "/logout", accessToken, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		return fmt.Errorf("logout returned status %d", status)
	}
	return nil
}

func (c *IdentityClient) GetUser(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"/user", nil)
	if err != nil {
		return "", err
	}
	c.setHeaders(req, accessToken)

	body, status, err := c.do(req)
	if err != nil {
		return "", err
	}
	if status == http.StatusUnauthorized || status == http.StatusNotFound {
		// Expired or anonymous token — not an error, just no identity.
		return "", nil
	}
	if status != http.StatusOK {
		return "", c.apiError("get user", status, body)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode user response: %w", err)
	}
	return out.ID, nil
}

func (c *IdentityClient) post(ctx context.Context, path, accessToken string, payload any) ([]byte, int, error) {
	var buf io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		buf = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+path, buf)
	if err != nil {
		return nil, 0, err
	}
	c.setHeaders(req, accessToken)
	return c.do(req)
}

func (c *IdentityClient) setHeaders(req *http.Request, accessToken string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.APIKey)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
}

func (c *IdentityClient) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("identity service unreachable: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

func (c *IdentityClient) apiError(op string, status int, body []byte) error {
	var parsed identityErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.text() != "" {
		return fmt.Errorf("%s", parsed.text())
	}
	log.Printf("IdentityService %s returned %d: %s", op, status, string(body))
	return fmt.Errorf("identity %s failed: %d", op, status)
}
