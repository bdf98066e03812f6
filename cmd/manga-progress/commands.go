package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"manga-progress/cmd/manga-progress/utils"
	"manga-progress/internal/catalog"
)

// cli carries state shared by the subcommands
type cli struct {
	configPath string
	app        *AppContext
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "manga-progress",
		Short:         "Reading progress tracker for a local manga library",
		Long:          "Scan a manga library into progress.json and serve reading progress, bookmarks and the bookshelf UI",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd)
		},
		// Without a subcommand the server is started
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.serve(cmd.Context())
		},
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "manga-progress.yaml", "configuration file (optional)")

	root.AddCommand(c.newServeCmd())
	root.AddCommand(c.newScanCmd())
	root.AddCommand(c.newListCmd())
	return root
}

func (c *cli) init(cmd *cobra.Command) error {
	config, err := utils.LoadConfig(c.configPath)
	if err != nil {
		return err
	}

	if port, _ := cmd.Flags().GetString("port"); port != "" {
		config.Port = port
	}
	if root, _ := cmd.Flags().GetString("root"); root != "" {
		config.ScanRoot = root
	}

	logger, err := utils.NewLogger(config.LogLevel, config.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	c.app, err = NewAppContext(config, logger)
	return err
}

func (c *cli) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve reading progress, bookmarks and the bookshelf UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.serve(cmd.Context())
		},
	}
	cmd.Flags().StringP("port", "p", "", "port to listen on (overrides PORT)")
	return cmd
}

func (c *cli) serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := c.app
	server := &http.Server{
		Addr:              app.Config.Addr(),
		Handler:           NewRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.Logger.Info("starting server",
			"addr", server.Addr,
			"manga_root", app.Config.MangaRoot,
			"data_dir", app.Config.DataDir,
		)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		app.Logger.Error("server failed", "error", err)
		return err
	case <-ctx.Done():
	}

	app.Logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}

func (c *cli) newScanCmd() *cobra.Command {
	var noPatch bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Rebuild progress.json and series_order.json from the library",
		Long: "Walk the library, keep the reading position of known volumes, add new volumes, " +
			"drop removed ones and add the progress script to every reader page",
		RunE: func(cmd *cobra.Command, args []string) error {
			ix := c.app.Indexer
			if noPatch {
				ix.ScriptTag = ""
			}

			report, err := ix.Run()
			if report != nil {
				fmt.Fprintln(cmd.OutOrStdout(), renderScanReport(report))
				for _, failure := range report.Failures {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", failure)
				}
			}
			return err
		},
	}
	cmd.Flags().StringP("root", "r", "", "library root to scan (overrides MANGA_PROGRESS_SCAN_ROOT)")
	cmd.Flags().BoolVar(&noPatch, "no-patch", false, "do not modify reader pages")
	return cmd
}

func (c *cli) newListCmd() *cobra.Command {
	var series string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the reading progress of every volume",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := c.app.Progress.Load()
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range filterSeries(entries, series) {
				rows = append(rows, []string{
					e.Series,
					e.Volume,
					strconv.Itoa(e.PageIdx + 1),
					strconv.Itoa(e.LastPageIdx + 1),
					e.CoverPage,
				})
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No volumes in catalog.")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Series", "Volume", "Page", "Last page", "Cover"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().StringVarP(&series, "series", "s", "", "only show volumes of this series")
	return cmd
}

func filterSeries(entries []catalog.Entry, series string) []catalog.Entry {
	if series == "" {
		return entries
	}
	var filtered []catalog.Entry
	for _, e := range entries {
		if e.Series == series {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
