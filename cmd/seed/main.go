// seed crea las taxonomías por defecto (status de squad, ciclo de planificación, escenario y
// tier de compromiso) para un tenant. Se puede ejecutar varias veces: lo existente se omite.
//
// Uso: go run ./cmd/seed --tenant <tenant_id> [--tenant <otro>] [--migrate]
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhoicas/taxonomia-api/internal/application/taxonomy"
	"github.com/jhoicas/taxonomia-api/internal/infrastructure/postgres"
	"github.com/jhoicas/taxonomia-api/pkg/config"
	"github.com/jhoicas/taxonomia-api/pkg/logger"
)

var (
	tenants []string
	migrate bool
	list    bool
)

var rootCmd = &cobra.Command{
	Use:           "seed",
	Short:         "Crea las taxonomías por defecto de uno o más tenants",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringSliceVarP(&tenants, "tenant", "t", nil, "tenant_id a poblar (repetible; por defecto SEED_TENANT_ID)")
	rootCmd.Flags().BoolVar(&migrate, "migrate", false, "aplicar el esquema antes de poblar")
	rootCmd.Flags().BoolVar(&list, "list", false, "solo mostrar las categorías por defecto")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	defaults := taxonomy.DefaultTaxonomies()
	if list {
		for _, d := range defaults {
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d ítems)\n", d.Slug, len(d.Items))
		}
		return nil
	}
	if len(tenants) == 0 {
		if env := strings.TrimSpace(os.Getenv("SEED_TENANT_ID")); env != "" {
			tenants = []string{env}
		}
	}
	if len(tenants) == 0 {
		return fmt.Errorf("indicar --tenant o SEED_TENANT_ID")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	defer pool.Close()

	if migrate || cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			return err
		}
	}

	categoryRepo := postgres.NewCategoryRepository(pool)
	itemRepo := postgres.NewItemRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	paging := taxonomy.Paging{DefaultPageSize: cfg.Catalog.DefaultPageSize, MaxPageSize: cfg.Catalog.MaxPageSize}
	seeder := taxonomy.NewSeeder(
		taxonomy.NewCategoryUseCase(categoryRepo, itemRepo, txRunner, log, paging),
		taxonomy.NewItemUseCase(categoryRepo, itemRepo, txRunner, log, paging),
		log,
	)
	for _, tenantID := range tenants {
		res, err := seeder.Seed(ctx, tenantID, defaults)
		if err != nil {
			return fmt.Errorf("tenant %s: %w", tenantID, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d categorías y %d ítems creados\n",
			tenantID, res.CategoriesCreated, res.ItemsCreated)
	}
	return nil
}
