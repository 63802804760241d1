package main

import (
	"encoding/json"

	"github.com/lshigami/wellrelay/database"
	"github.com/lshigami/wellrelay/internal/repository"
	"github.com/lshigami/wellrelay/internal/service"
	"github.com/spf13/cobra"
)

var journalUserID string

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect stored journal entries",
}

var journalLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Print the newest journal entry and its AI analysis as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.NewDatabase(cfg)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		// Reading needs neither enrichment nor activity logging.
		journals := service.NewJournalService(repository.NewStore(db, cfg), nil, nil)
		journal, err := journals.Latest(cmd.Context(), journalUserID, "")
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(journal)
	},
}

func init() {
	journalLatestCmd.Flags().StringVar(&journalUserID, "user", "", "only entries of this user")
	journalCmd.AddCommand(journalLatestCmd)
}
