package discord

import (
	"context"
	"encoding/json"
	"fmt"

	fiber "github.com/gofiber/fiber/v2"
)

// Application command names.
const (
	CommandMemberAnalysis = "member_analysis"
	CommandForgetKey      = "forget_key"
)

// Command is an application command definition for registration.
type Command struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Commands returns the application commands the bot declares.
func Commands() []Command {
	return []Command{
		{Name: CommandMemberAnalysis, Description: "Generate a member analysis report."},
		{Name: CommandForgetKey, Description: "Forget your stored API key immediately."},
	}
}

// RegisterCommands declares the bot's commands with the platform,
// replacing whatever set was registered before. A non-empty guildID
// scopes the registration to that guild, which propagates immediately
// and suits development; global registration can take up to an hour.
func (c *WebhookClient) RegisterCommands(ctx context.Context, appID, guildID, botToken string) ([]Command, error) {
	endpoint := fmt.Sprintf("%s/applications/%s/commands", c.baseURL, appID)
	if guildID != "" {
		endpoint = fmt.Sprintf("%s/applications/%s/guilds/%s/commands", c.baseURL, appID, guildID)
	}
	agent := fiber.Put(endpoint)
	c.prepare(ctx, agent)
	agent.Set(fiber.HeaderAuthorization, "Bot "+botToken)
	agent.JSON(Commands())

	statusCode, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("error sending request: %w", errs[0])
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, &fiber.Error{
			Code:    statusCode,
			Message: string(body),
		}
	}
	var registered []Command
	if err := json.Unmarshal(body, &registered); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}
	return registered, nil
}
