// internal/gateway/client.go
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	appErrors "github.com/waveleap/broadcast-backend/internal/errors"
)

// Client talks to the messaging provider's HTTP API. Construct one per process
// and share it; the underlying http.Client pools connections.
type Client struct {
	BaseURL        string
	Token          string
	HTTP           *http.Client
	CreateTimeout  time.Duration
	StatusTimeout  time.Duration
	SendTimeout    time.Duration
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL:       baseURL,
		Token:         token,
		HTTP:          &http.Client{},
		CreateTimeout: 10 * time.Second,
		StatusTimeout: 10 * time.Second,
		SendTimeout:   15 * time.Second,
	}
}

type createTemplateRequest struct {
	Name     string `json:"name"`
	Body     string `json:"body"`
	MediaRef string `json:"media_ref,omitempty"`
}

type createTemplateResponse struct {
	TemplateID string `json:"template_id"`
	Error      string `json:"error,omitempty"`
}

func (c *Client) CreateTemplate(ctx context.Context, name, bodyText, mediaRef string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.CreateTimeout)
	defer cancel()

	var resp createTemplateResponse
	if err := c.post(ctx, "/v1/templates", createTemplateRequest{Name: name, Body: bodyText, MediaRef: mediaRef}, &resp); err != nil {
		return "", err
	}
	if resp.TemplateID == "" {
		return "", fmt.Errorf("gateway returned no template id: %s", resp.Error)
	}
	return resp.TemplateID, nil
}

type templateStatusResponse struct {
	Status string `json:"status"`
}

func (c *Client) GetTemplateStatus(ctx context.Context, templateID string) (TemplateState, error) {
	ctx, cancel := context.WithTimeout(ctx, c.StatusTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/templates/"+templateID, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)

	res, err := c.HTTP.Do(req)
	if err != nil {
		return "", appErrors.NewGatewayTransient("getTemplateStatus", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 500 {
		return "", appErrors.NewGatewayTransient("getTemplateStatus", fmt.Errorf("gateway returned %d", res.StatusCode))
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gateway returned %d for template %s", res.StatusCode, templateID)
	}

	var body templateStatusResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", appErrors.NewGatewayTransient("getTemplateStatus", err)
	}

	switch TemplateState(body.Status) {
	case StatePending, StateApproved, StateRejected:
		return TemplateState(body.Status), nil
	default:
		return "", fmt.Errorf("gateway returned unknown template status %q", body.Status)
	}
}

type sendMessageRequest struct {
	To           string            `json:"to"`
	TemplateName string            `json:"template_name"`
	Variables    map[string]string `json:"variables,omitempty"`
	MediaRef     string            `json:"media_ref,omitempty"`
}

type sendMessageResponse struct {
	MessageID string `json:"message_id"`
	Error     string `json:"error,omitempty"`
}

func (c *Client) SendTemplateMessage(ctx context.Context, address, templateName string, vars map[string]string, mediaRef string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.SendTimeout)
	defer cancel()

	var resp sendMessageResponse
	err := c.post(ctx, "/v1/messages", sendMessageRequest{
		To:           address,
		TemplateName: templateName,
		Variables:    vars,
		MediaRef:     mediaRef,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.MessageID == "" {
		return "", fmt.Errorf("gateway accepted send but returned no message id: %s", resp.Error)
	}
	return resp.MessageID, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	res, err := c.HTTP.Do(req)
	if err != nil {
		return appErrors.NewGatewayTransient(path, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 500 {
		return appErrors.NewGatewayTransient(path, fmt.Errorf("gateway returned %d", res.StatusCode))
	}
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("gateway returned %d: %s", res.StatusCode, string(msg))
	}

	return json.NewDecoder(res.Body).Decode(out)
}

var _ Gateway = (*Client)(nil)
