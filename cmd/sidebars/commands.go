package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/enclava/sidebars/pkg/loader"
	"github.com/enclava/sidebars/pkg/logger"
	"github.com/enclava/sidebars/pkg/metric"
	"github.com/enclava/sidebars/pkg/schema"
	"github.com/enclava/sidebars/pkg/server"
	"github.com/enclava/sidebars/pkg/sidebar"
	"github.com/enclava/sidebars/pkg/site"
)

const moduleName = "sidebars"

type rootOptions struct {
	file     string
	logLevel string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           moduleName,
		Short:         "Define, validate and export documentation sidebars",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if opts.logLevel != "" {
				logger.SetDefaultLoggerWithLevel(moduleName, version, opts.logLevel)
			} else {
				logger.SetDefaultLogger(moduleName, version)
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.file, "file", "f", "", "Sidebar file (.json, .yaml, .yml, .toml); defaults to the built-in site sidebars")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to $LOG_LEVEL")

	cmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} {{.Version}}\n  Commit:    %s\n  Built:     %s\n", commit, date))

	cmd.AddCommand(
		newExportCommand(opts),
		newValidateCommand(opts),
		newDocsCommand(opts),
		newSchemaCommand(),
		newServeCommand(opts),
	)

	return cmd
}

// registry returns the sidebars from --file, or the built-in ones.
func (o *rootOptions) registry() (*sidebar.Registry, error) {
	if o.file == "" {
		r := site.Registry()
		if err := sidebar.Validate(r); err != nil {
			return nil, err
		}
		return r, nil
	}
	return loader.Load(o.file)
}

func newExportCommand(root *rootOptions) *cobra.Command {
	var format, name string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the sidebars in the site framework's format",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := root.registry()
			if err != nil {
				return err
			}

			var value any = r
			if name != "" {
				entries, ok := r.Sidebar(name)
				if !ok {
					return fmt.Errorf("sidebar %q: %w", name, sidebar.ErrNotFound)
				}
				value = entries
			}

			return write(cmd.OutOrStdout(), format, value)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", "json", "Output format (json, yaml)")
	cmd.Flags().StringVarP(&name, "sidebar", "s", "", "Export a single sidebar")

	return cmd
}

func write(w io.Writer, format string, value any) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func newValidateCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the sidebars for structural errors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := root.registry()
			if err != nil {
				return err
			}

			for _, d := range sidebar.Duplicates(r) {
				slog.Warn("duplicate category label among siblings",
					"sidebar", d.Sidebar,
					"path", strings.Join(d.Path, " > "),
					"label", d.Label)
			}

			for _, name := range r.Names() {
				entries, _ := r.Sidebar(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d documents\n", name, len(sidebar.DocIDs(entries)))
			}
			return nil
		},
	}
}

func newDocsCommand(root *rootOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "List document ids in reading order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := root.registry()
			if err != nil {
				return err
			}

			names := r.Names()
			if name != "" {
				names = []string{name}
			}

			for _, n := range names {
				entries, ok := r.Sidebar(n)
				if !ok {
					return fmt.Errorf("sidebar %q: %w", n, sidebar.ErrNotFound)
				}
				for _, id := range sidebar.DocIDs(entries) {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "sidebar", "s", "", "Only list this sidebar")

	return cmd
}

func newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for sidebar files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write(schema.Schema())
			return err
		},
	}
}

func newServeCommand(root *rootOptions) *cobra.Command {
	var (
		port    int
		watch   bool
		metrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the sidebars as JSON over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			slog.Info("starting sidebars", "commit", commit, "date", date)

			opts := []server.Option{
				server.WithPort(port),
				server.WithSimpleHealth(),
				server.WithErrorLog(logger.NewLogLogger(slog.LevelError)),
			}
			if metrics {
				opts = append(opts, server.WithMetrics())
			}

			if !watch {
				r, err := root.registry()
				if err != nil {
					return err
				}
				return r.Run(ctx, opts...)
			}

			if root.file == "" {
				return fmt.Errorf("--watch requires --file")
			}

			reg := prometheus.NewRegistry()
			w, err := loader.NewWatcher(root.file,
				loader.WithReloadCounter(metric.NewCounterWithRegistry(reg, "reloads_total",
					"Sidebar file reloads by result.", "result")),
				loader.WithDocumentGauge(sidebar.NewDocumentGauge(reg)),
			)
			if err != nil {
				return err
			}
			opts = append(opts, server.WithReadinessCheck(w))

			g, gCtx := errgroup.WithContext(ctx)
			g.Go(func() error { return w.Run(gCtx) })
			g.Go(func() error { return sidebar.Serve(gCtx, w, reg, opts...) })
			return g.Wait()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", server.DefaultPort, "Port to run the server on")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload --file when it changes")
	cmd.Flags().BoolVar(&metrics, "metrics", true, "Expose Prometheus metrics at /metrics")

	return cmd
}
