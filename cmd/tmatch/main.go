// tmatch is a translation memory matching engine for gettext PO files.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/localizers/tmatch/internal/config"
	"github.com/localizers/tmatch/internal/engine"
	"github.com/localizers/tmatch/internal/mcpserver"
	"github.com/localizers/tmatch/internal/tmstore"
	"github.com/localizers/tmatch/pkg/tm"
)

// Version information (set via -ldflags during build)
var (
	version   = "dev"
	buildTime = "unknown"
)

var configPath string

func main() {
	// Stdout is reserved for command output and the MCP protocol
	log.SetOutput(os.Stderr)

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tmatch",
		Short: "Translation memory matching for gettext PO files",
		Long: `tmatch queries translation memory backends (the open document,
a remote tmserver, the Open-Tran aggregator) for a source text and
returns ranked match candidates.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "configuration file")

	root.AddCommand(newServeCmd())
	root.AddCommand(newQueryCmd())
	root.AddCommand(newPushCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tmatch.toml"
	}
	return filepath.Join(home, ".config", "tmatch", "tmatch.toml")
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, fmt.Errorf("loading %s: %w", configPath, err)
	}
	return cfg, nil
}

// ---------------------------------------------------------------------------
// serve
// ---------------------------------------------------------------------------

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			log.Printf("tmatch MCP server v%s starting (driver: %s)", version, tmstore.DriverName)

			srv, err := mcpserver.NewServer(cfg)
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			errChan := make(chan error, 1)
			go func() {
				log.Println("MCP server ready, listening on stdio...")
				errChan <- srv.Serve(ctx)
			}()

			select {
			case sig := <-sigChan:
				log.Printf("Received signal %v, shutting down...", sig)
				cancel()
				return nil
			case err := <-errChan:
				return err
			}
		},
	}
}

// ---------------------------------------------------------------------------
// query
// ---------------------------------------------------------------------------

func newQueryCmd() *cobra.Command {
	var (
		docPath    string
		sourceLang string
		targetLang string
	)

	cmd := &cobra.Command{
		Use:   "query TEXT",
		Short: "Query the translation memory backends for one source text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			eng, err := engine.New(cfg, nil)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			if docPath != "" {
				if err := eng.OnDocumentLoaded(docPath); err != nil {
					return err
				}
			}

			matches, err := eng.Lookup(cmd.Context(), tm.Query{
				Source:     args[0],
				SourceLang: sourceLang,
				TargetLang: targetLang,
			})
			if err != nil {
				return err
			}

			if len(matches) == 0 {
				fmt.Println("no matches")
				return nil
			}
			for _, m := range matches {
				quality := "--"
				if m.Quality != nil {
					quality = fmt.Sprintf("%3d", *m.Quality)
				}
				fmt.Printf("%s%%  %-40q  %q\n", quality, m.Target, m.Source)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&docPath, "document", "d", "", "PO file to index as the local backend")
	cmd.Flags().StringVar(&sourceLang, "source-lang", "", "source language code")
	cmd.Flags().StringVar(&targetLang, "target-lang", "", "target language code")
	return cmd
}

// ---------------------------------------------------------------------------
// push
// ---------------------------------------------------------------------------

func newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push FILE",
		Short: "Upload a PO file's translated units to the remote TM server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.Remote.Enabled {
				return fmt.Errorf("remote backend is disabled in %s", configPath)
			}

			eng, err := engine.New(cfg, nil)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			if err := eng.OnDocumentLoaded(args[0]); err != nil {
				return err
			}
			if err := eng.Push(cmd.Context()); err != nil {
				return err
			}

			fmt.Printf("pushed translated units from %s\n", filepath.Base(args[0]))
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tmatch %s\n", version)
			fmt.Printf("Build Time: %s\n", buildTime)
			fmt.Printf("SQLite Driver: %s\n", tmstore.DriverName)
		},
	}
}
