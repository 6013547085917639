package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	fiber "github.com/gofiber/fiber/v2"
)

// DefaultWebhookTimeout bounds outbound webhook calls.
const DefaultWebhookTimeout = 30 * time.Second

// File is a binary attachment for a follow-up message.
type File struct {
	Name    string
	Content []byte
}

// WebhookClient performs outbound calls against the interaction webhook
// surface: editing the deferred original response and posting follow-up
// messages, both keyed by the interaction's one-time token.
type WebhookClient struct {
	baseURL string
	timeout time.Duration
}

// NewWebhookClient creates a webhook client rooted at the given API base
// URL, e.g. https://discord.com/api/v10.
func NewWebhookClient(baseURL string, timeout time.Duration) (*WebhookClient, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if timeout <= 0 {
		timeout = DefaultWebhookTimeout
	}
	return &WebhookClient{baseURL: baseURL, timeout: timeout}, nil
}

// EditOriginal replaces the content and components of the deferred
// original response for the interaction the token belongs to.
func (c *WebhookClient) EditOriginal(ctx context.Context, appID, token string, data *ResponseData) error {
	endpoint := fmt.Sprintf("%s/webhooks/%s/%s/messages/@original", c.baseURL, appID, token)
	agent := fiber.Patch(endpoint)
	c.prepare(ctx, agent)
	agent.JSON(data)
	return drain(agent)
}

// CreateFollowup posts a new follow-up message. A non-nil file is
// attached as a multipart upload alongside the message metadata.
func (c *WebhookClient) CreateFollowup(ctx context.Context, appID, token string, data *ResponseData, file *File) error {
	endpoint := fmt.Sprintf("%s/webhooks/%s/%s", c.baseURL, appID, token)
	agent := fiber.Post(endpoint)
	c.prepare(ctx, agent)

	if file == nil {
		agent.JSON(data)
		return drain(agent)
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode payload_json: %w", err)
	}
	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	args.Set("payload_json", string(payload))
	agent.FileData(&fiber.FormFile{
		Fieldname: "files[0]",
		Name:      file.Name,
		Content:   file.Content,
	}).MultipartForm(args)
	return drain(agent)
}

// prepare applies the timeout, honoring a tighter context deadline.
func (c *WebhookClient) prepare(ctx context.Context, agent *fiber.Agent) {
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	} else {
		agent.Timeout(c.timeout)
	}
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
}

// drain executes the request and maps non-2xx statuses to errors.
func drain(agent *fiber.Agent) error {
	statusCode, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("error sending request: %w", errs[0])
	}
	if statusCode < 200 || statusCode >= 300 {
		return &fiber.Error{
			Code:    statusCode,
			Message: string(body),
		}
	}
	return nil
}
