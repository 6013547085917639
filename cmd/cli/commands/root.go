package commands

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/thc-edge/vetbot/config"
	"github.com/thc-edge/vetbot/internal/db"
	"github.com/thc-edge/vetbot/internal/db/repos"
)

// flag names
const (
	flagGuildID = "guild"
	flagJobID   = "id"
	flagLimit   = "limit"
	flagStatus  = "status"
	flagOwnerID = "owner"
	flagPurge   = "purge"
)

func init() {
	RootCmd.AddCommand(GetRegisterCmd())
	RootCmd.AddCommand(GetJobsCmd())
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "vetbot-cli",
	Short: "Vetbot CLI - operations tooling for the member analysis bot",
	Long: `Vetbot CLI registers the bot's application commands with the platform
and inspects or removes analysis jobs directly in the job store.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// Best effort; the variables may already be in the environment.
		_ = godotenv.Load()
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

// openStore connects to the job store with the environment's database settings.
func openStore() (*repos.AnalysisJobRepository, error) {
	ssl := config.GetEnvBool(config.EnvDBSSLEnabled, false)
	database, err := db.New(db.Options{
		Host:       config.GetEnv(config.EnvDBHost, ""),
		User:       config.GetEnv(config.EnvDBUser, ""),
		Password:   config.GetEnv(config.EnvDBPassword, ""),
		DBName:     config.GetEnv(config.EnvDBName, ""),
		Port:       config.GetEnvInt(config.EnvDBPort, 0),
		SSLEnabled: &ssl,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the job store: %w", err)
	}
	return repos.NewAnalysisJobRepository(database), nil
}
