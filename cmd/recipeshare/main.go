package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pageza/recipeshare/backend/config"
	"github.com/pageza/recipeshare/backend/internal/clock"
	"github.com/pageza/recipeshare/backend/internal/identity"
	"github.com/pageza/recipeshare/backend/internal/logger"
	"github.com/pageza/recipeshare/backend/internal/seed"
	"github.com/pageza/recipeshare/backend/internal/service"
	"github.com/pageza/recipeshare/backend/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// operator bundles what the commands need. The caller must defer op.Close().
type operator struct {
	cfg     *config.Config
	log     *zap.Logger
	store   storage.Store
	recipes *service.RecipeService
}

func newOperator(ctx context.Context) (*operator, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", Development: true})
	store, err := storage.Open(ctx, cfg, clock.Real{}, log)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return &operator{
		cfg:     cfg,
		log:     log,
		store:   store,
		recipes: service.NewRecipeService(store, clock.Real{}, nil, log),
	}, nil
}

func (o *operator) Close() {
	o.store.Close()
	_ = o.log.Sync()
}

var rootCmd = &cobra.Command{
	Use:   "recipeshare",
	Short: "Operator tasks for the recipeshare backend",
}

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create demo users and recipes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		op, err := newOperator(ctx)
		if err != nil {
			return err
		}
		defer op.Close()

		data, err := loadSeed(seedFile)
		if err != nil {
			return err
		}

		provider := identity.NewLocalProvider(op.store, op.store, identity.Options{
			Secret:  op.cfg.JWTSecret,
			Revoker: identity.NewMemoryRevoker(clock.Real{}),
			Logger:  op.log,
		})
		res, err := seed.New(provider, op.recipes, op.log).Run(ctx, data)
		if err != nil {
			return err
		}
		fmt.Printf("Users created: %d, already present: %d\n", res.UsersCreated, res.UsersExisting)
		fmt.Printf("Recipes created: %d\n", len(res.Recipes))
		for _, r := range res.Recipes {
			fmt.Printf("  %s  %s\n", r.ID, r.Title)
		}
		return nil
	},
}

func loadSeed(path string) (*seed.File, error) {
	if path == "" {
		return seed.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return seed.Read(f)
}

func featureCommand(use, short string, featured bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <recipe-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := newOperator(cmd.Context())
			if err != nil {
				return err
			}
			defer op.Close()

			r, err := op.recipes.SetFeatured(cmd.Context(), args[0], featured)
			if err != nil {
				return err
			}
			fmt.Printf("%s %q featured=%t\n", r.ID, r.Title, r.IsFeatured)
			return nil
		},
	}
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "TOML seed file (defaults to the bundled demo data)")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(featureCommand("feature", "Mark a recipe as featured", true))
	rootCmd.AddCommand(featureCommand("unfeature", "Remove a recipe from the featured list", false))
}
