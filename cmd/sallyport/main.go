// Binario principal del gateway: serve, keygen, hash-secret, migrate y version.
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/coaching2100/sallyport/internal/app"
	"github.com/coaching2100/sallyport/internal/config"
	sallyhttp "github.com/coaching2100/sallyport/internal/http"
	"github.com/coaching2100/sallyport/internal/observability/logger"
	"github.com/coaching2100/sallyport/internal/security/secrethash"
	"github.com/coaching2100/sallyport/internal/store/pg"
	migrations "github.com/coaching2100/sallyport/migrations/postgres"
)

// version se inyecta en build con -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env es opcional: en Cloud Run la config llega por variables reales.
	_ = godotenv.Load()

	var configPath string

	root := &cobra.Command{
		Use:   "sallyport",
		Short: "Gateway de autenticación multi-tenant OAuth2",
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("SALLYPORT_CONFIG"), "Ruta al YAML de configuración")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Arranca el servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}

	keygenCmd := &cobra.Command{
		Use:   "keygen",
		Short: "Genera una seed ed25519 para SALLYPORT_SIGNING_KEY",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, priv, err := ed25519.GenerateKey(rand.Reader)
			if err != nil {
				return err
			}
			fmt.Println(base64.StdEncoding.EncodeToString(priv.Seed()))
			return nil
		},
	}

	var hashPlain string
	hashCmd := &cobra.Command{
		Use:   "hash-secret",
		Short: "Hashea un client_secret (argon2id PHC) para el credential store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if hashPlain == "" {
				return fmt.Errorf("--secret es requerido")
			}
			phc, err := secrethash.Hash(secrethash.Default, hashPlain)
			if err != nil {
				return err
			}
			fmt.Println(phc)
			return nil
		},
	}
	hashCmd.Flags().StringVar(&hashPlain, "secret", "", "Secreto en claro a hashear")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones del credential store (postgres)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if cfg.Storage.Driver != "postgres" {
				return fmt.Errorf("migrate requiere storage.driver=postgres (actual: %s)", cfg.Storage.Driver)
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := pg.Migrate(ctx, cfg.Storage.DSN, migrations.FS, migrations.Dir); err != nil {
				return err
			}
			fmt.Println("migraciones aplicadas")
			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Imprime la versión del binario",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	root.AddCommand(serveCmd, keygenCmd, hashCmd, migrateCmd, versionCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.App.LogLevel,
		ServiceName: "sallyport",
	})
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := app.Build(ctx, cfg, version)
	if err != nil {
		return err
	}
	defer container.Close()

	logger.L().Info("gateway listo",
		logger.String("env", cfg.App.Env),
		logger.String("cache", cfg.Cache.Kind),
		logger.String("storage", cfg.Storage.Driver),
		logger.String("version", version),
	)

	return sallyhttp.Serve(ctx, sallyhttp.ServerConfig{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, container.Handler())
}
