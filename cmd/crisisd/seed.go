package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/crisisd/internal/config"
	"github.com/fyrsmithlabs/crisisd/internal/mailstore"
	"github.com/fyrsmithlabs/crisisd/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo operational records into the store",
	Long: `Seed the mail record store with sample operational emails so the
dock monitor has data to scan. Intended for demos and local development.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(cmd.Context())
	},
}

func init() {
	seedCmd.Flags().StringVar(&configPath, "config", "", "path to YAML config file")
}

func runSeed(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	workflowStore, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer workflowStore.Close()

	mailStore, err := mailstore.NewSQLiteStore(workflowStore.DB())
	if err != nil {
		return fmt.Errorf("failed to open mail store: %w", err)
	}

	now := time.Now().UTC()
	records := []mailstore.Record{
		{
			Category:   mailstore.CategoryOperational,
			Sender:     "scheduler@helmstream.example",
			SenderRole: "Dock Scheduler",
			Subject:    "Dock allocation update",
			Body:       "dock 1 allocated to MV Meridian for hull inspection through end of week.",
			Vessel:     "MV Meridian",
			ReceivedAt: now.Add(-48 * time.Hour),
		},
		{
			Category:   mailstore.CategoryOperational,
			Sender:     "ops@helmstream.example",
			SenderRole: "Operations Manager",
			Subject:    "Crane failure at dock 2",
			Body:       "dock 2 unavailable until further notice due to main crane failure.",
			ReceivedAt: now.Add(-24 * time.Hour),
		},
		{
			Category:   mailstore.CategoryOperational,
			Sender:     "scheduler@helmstream.example",
			SenderRole: "Dock Scheduler",
			Subject:    "Weekly schedule",
			Body:       "No changes planned for the coming week. Standby crews assigned.",
			ReceivedAt: now.Add(-6 * time.Hour),
		},
	}

	for _, rec := range records {
		if err := mailStore.Append(ctx, rec); err != nil {
			return fmt.Errorf("failed to seed record %q: %w", rec.Subject, err)
		}
	}

	fmt.Printf("Seeded %d operational records into %s\n", len(records), cfg.Store.Path)
	return nil
}
