package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/saffron/internal/common"
	"github.com/Veraticus/saffron/internal/config"
	"github.com/Veraticus/saffron/internal/engine"
	"github.com/Veraticus/saffron/internal/history"
	"github.com/Veraticus/saffron/internal/model"
	"github.com/Veraticus/saffron/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// openEngine loads configuration, opens the configured store and constructs
// the engine. The returned cleanup closes the store.
func openEngine(ctx context.Context) (*engine.Engine, func(), error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, common.NewUserError("Configuration is invalid", err)
	}

	store, err := storage.Open(ctx, cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store at %s: %w", cfg.Storage.Backend, cfg.Storage.Path, err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			slog.Error("Failed to close store", "error", err)
		}
	}

	eng, err := engine.New(ctx, store, engine.WithConfig(engine.ConfigFrom(cfg.Engine)))
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to start engine: %w", err)
	}
	if eng.MemoryOnly() {
		slog.Warn("Saved state could not be read; changes in this session will not be saved")
	}
	return eng, cleanup, nil
}

// observationFlags are the flags describing a single transaction.
type observationFlags struct {
	merchant    string
	description string
	amount      string
	date        string
	location    string
	id          string
}

func (f *observationFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.merchant, "merchant", "m", "", "merchant name")
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "transaction description")
	cmd.Flags().StringVarP(&f.amount, "amount", "a", "", "amount, e.g. 42.50")
	cmd.Flags().StringVar(&f.date, "date", "", "transaction date (YYYY-MM-DD, optionally with HH:MM; default now)")
	cmd.Flags().StringVar(&f.location, "location", "", "merchant location")
	cmd.Flags().StringVar(&f.id, "id", "", "transaction ID")
}

func (f *observationFlags) observation(now time.Time) (model.Observation, error) {
	if f.merchant == "" && f.description == "" {
		return model.Observation{}, common.NewUserError("Provide --merchant or --description", common.ErrInvalidInput)
	}
	if f.amount == "" {
		return model.Observation{}, common.NewUserError("Provide --amount", common.ErrInvalidInput)
	}

	amount, err := history.ParseAmount(f.amount)
	if err != nil {
		return model.Observation{}, common.NewUserError("Invalid --amount", err)
	}

	date := now.UTC()
	if f.date != "" {
		if date, err = history.ParseDate(f.date); err != nil {
			return model.Observation{}, common.NewUserError("Invalid --date", err)
		}
	}

	return model.Observation{
		ID:          f.id,
		Date:        date,
		Amount:      amount,
		Merchant:    f.merchant,
		Description: f.description,
		Location:    f.location,
	}, nil
}

func parseCategoryFlag(value string) (model.Category, error) {
	cat, err := model.ParseCategory(value)
	if err != nil {
		return "", common.NewUserError(fmt.Sprintf("Unknown category %q", value), err)
	}
	return cat, nil
}
