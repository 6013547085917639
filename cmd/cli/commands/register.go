package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/thc-edge/vetbot/config"
	"github.com/thc-edge/vetbot/internal/discord"
)

func init() {
	registerCmd.Flags().StringP(flagGuildID, "g", "", "Register against a single guild instead of globally (env: DISCORD_GUILD_ID)")
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register the bot's application commands",
	Long: `Register overwrites the application's command set with the bot's
commands. Guild-scoped registration propagates immediately; global
registration can take up to an hour.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		appID := config.GetEnv(config.EnvDiscordAppID, "")
		if appID == "" {
			return fmt.Errorf("%s must be set", config.EnvDiscordAppID)
		}
		botToken := config.GetEnv(config.EnvDiscordBotToken, "")
		if botToken == "" {
			return fmt.Errorf("%s must be set", config.EnvDiscordBotToken)
		}

		// Flag > env var for the guild scope.
		guildID, _ := cmd.Flags().GetString(flagGuildID)
		if !cmd.Flags().Changed(flagGuildID) {
			guildID = config.GetEnv(config.EnvDiscordGuildID, "")
		}

		client, err := discord.NewWebhookClient(config.GetEnv(config.EnvDiscordAPIBase, config.DefaultDiscordAPIBase), discord.DefaultWebhookTimeout)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		registered, err := client.RegisterCommands(ctx, appID, guildID, botToken)
		if err != nil {
			return fmt.Errorf("error registering commands: %w", err)
		}

		// Pretty print the response
		prettyJSON, err := json.MarshalIndent(registered, "", "  ")
		if err != nil {
			return fmt.Errorf("error formatting response: %w", err)
		}
		cmd.Println(string(prettyJSON))
		return nil
	},
}

// GetRegisterCmd returns the register command
func GetRegisterCmd() *cobra.Command {
	return registerCmd
}
