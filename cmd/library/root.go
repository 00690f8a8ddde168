package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"lending-library/internal/infra/db"
	"lending-library/internal/infra/storage"
	"lending-library/internal/observability/logging"
	"lending-library/internal/usecase/library"
)

const (
	cfgKeyStore     = "store"
	cfgKeyDSN       = "dsn"
	cfgKeyLogLevel  = "log_level"
	cfgKeyJWTSecret = "jwt_secret"

	defaultStore = storage.SQLite
	defaultDSN   = "library.db"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	v       *viper.Viper
	stdout  io.Writer
	stderr  io.Writer
	cfgFile string
	backend *storage.Backend
	lib     *library.Service
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: viper.New(), stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "library",
		Short: "Lending library catalog and checkout tool",
		Long: `library adds books to the catalog, searches it and records
checkouts and returns. Requests are given as key=value pairs:

  library addBook isbn=123-456-789-0 title="Go" authors=[Kernighan, Donovan] \
      pages=380 year=2015 publisher=Addison-Wesley nCopies=2
  library findBooks search=go count=5
  library checkoutBook isbn=123-456-789-0 patronId=p1`,
		SilenceErrors:      true,
		SilenceUsage:       true,
		PersistentPreRunE:  a.open,
		PersistentPostRunE: func(*cobra.Command, []string) error { return a.close() },
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: ./library.yaml if present)")
	pf.String(cfgKeyStore, defaultStore, "store backend: postgres, sqlite or memory")
	pf.String(cfgKeyDSN, defaultDSN, "postgres URL or sqlite file path")
	pf.String("log-level", "warn", "log level: debug, info, warn or error")
	_ = a.v.BindPFlag(cfgKeyStore, pf.Lookup(cfgKeyStore))
	_ = a.v.BindPFlag(cfgKeyDSN, pf.Lookup(cfgKeyDSN))
	_ = a.v.BindPFlag(cfgKeyLogLevel, pf.Lookup("log-level"))

	a.v.SetEnvPrefix("LIBRARY")
	a.v.AutomaticEnv()

	root.AddCommand(
		a.addBookCmd(),
		a.findBooksCmd(),
		a.checkoutBookCmd(),
		a.returnBookCmd(),
		a.clearCmd(),
		a.loadPathsCmd(),
		a.tokenCmd(),
	)
	return root
}

// loadConfig reads the optional config file. A missing default file is not
// an error; a missing explicit --config is.
func (a *app) loadConfig() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.SetConfigName("library")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
	}
	if err := a.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && a.cfgFile == "" {
			return nil
		}
		return configError(fmt.Sprintf("read config: %v", err))
	}
	return nil
}

// open loads configuration and opens the store for commands that need one.
func (a *app) open(cmd *cobra.Command, _ []string) error {
	if err := a.loadConfig(); err != nil {
		return err
	}
	logger := logging.NewTextLogger(a.stderr, logging.ParseLevel(a.v.GetString(cfgKeyLogLevel)))
	slog.SetDefault(logger)

	if cmd.Annotations[annotationNoStore] == "true" {
		return nil
	}
	backend, err := storage.Open(context.Background(), a.v.GetString(cfgKeyStore), a.v.GetString(cfgKeyDSN), db.ConnectionConfigFromEnv())
	if errors.Is(err, storage.ErrUnknownBackend) {
		return configError(fmt.Sprintf("%v (want sqlite, postgres or memory)", err))
	}
	if err != nil {
		return dbError(err)
	}
	a.backend = backend
	a.lib = library.NewWithStore(backend.Store)
	return nil
}

func (a *app) close() error {
	if a.backend == nil {
		return nil
	}
	err := a.backend.Close()
	a.backend = nil
	if err != nil {
		return dbError(err)
	}
	return nil
}
