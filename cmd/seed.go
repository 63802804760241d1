package main

import (
	"fmt"

	"github.com/lshigami/wellrelay/database"
	"github.com/lshigami/wellrelay/internal/repository"
	"github.com/lshigami/wellrelay/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var seedMigrate bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the PHQ-9, GAD-7 and C-SSRS instruments if they are missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.NewDatabase(cfg)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		if seedMigrate && !cfg.Database.AutoMigrate {
			if err := database.AutoMigrate(db); err != nil {
				return err
			}
		}

		created, err := service.NewSeedService(repository.NewStore(db, cfg)).Seed(cmd.Context(), service.StandardInstruments)
		if err != nil {
			return err
		}
		log.Info().Strs("created", created).Msg("Seeding finished")
		fmt.Fprintf(cmd.OutOrStdout(), "created %d assessment(s)\n", len(created))
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedMigrate, "migrate", false, "create the tables before seeding")
}
