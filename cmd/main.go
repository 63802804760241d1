package main

import (
	"github.com/lshigami/wellrelay/config"
	"github.com/lshigami/wellrelay/internal/logger"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// @title Wellness Relay API
// @version 1.0
// @description Backend relay for the student wellness app: screening assessments with risk classification, AI summaries, journals and chat.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:5000
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

var (
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "wellrelay",
		Short: "Backend relay for the student wellness app",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.NewConfig()
			if err != nil {
				return err
			}
			logger.Init(cfg.Log.Level, cfg.Log.Format)
			return nil
		},
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.AddCommand(serveCmd, seedCmd, journalCmd)
}

func main() {
	logger.Init("info", "console")

	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}
