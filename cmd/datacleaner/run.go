package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/datacleaner/internal/config"
	"github.com/JonMunkholm/datacleaner/internal/core"
	"github.com/JonMunkholm/datacleaner/internal/csvio"
	"github.com/JonMunkholm/datacleaner/internal/recipe"
	"github.com/JonMunkholm/datacleaner/internal/service"
	"github.com/JonMunkholm/datacleaner/internal/sink"
)

type runOptions struct {
	recipePath string
	output     string
	delimiter  string
	preview    int
	strict     bool
	pgTable    string
	pgTruncate bool
}

func newRunCmd(cfg *config.Config) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run -f recipe.yaml",
		Short: "Consolidate and clean the sources listed in a recipe",
		Long: `Run parses every source of the recipe, maps their headers onto the
recipe's fields, applies the cleaning rules and writes the result as CSV.
Without columnRules in the recipe the default rules for the fields are used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecipe(cmd.Context(), cfg, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.recipePath, "file", "f", "", "recipe file (YAML)")
	f.StringVarP(&opts.output, "output", "o", "", `output CSV, "-" for stdout (default: the recipe's export path)`)
	f.StringVar(&opts.delimiter, "delimiter", "", "output delimiter: a character or comma, semicolon, tab, pipe")
	f.IntVar(&opts.preview, "preview", 10, "rows to preview, 0 to disable")
	f.BoolVar(&opts.strict, "strict", false, "reject unknown rule names")
	f.StringVar(&opts.pgTable, "pg-table", "", "also COPY the result into this PostgreSQL table (needs DATABASE_URL)")
	f.BoolVar(&opts.pgTruncate, "pg-truncate", false, "empty the PostgreSQL table before copying")
	cmd.MarkFlagRequired("file")

	return cmd
}

func runRecipe(ctx context.Context, cfg *config.Config, opts runOptions, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	r, err := recipe.Load(opts.recipePath, opts.strict)
	if err != nil {
		return err
	}

	svc := service.NewService(cfg)

	files := make([]inputFile, len(r.Sources))
	for i, s := range r.Sources {
		files[i] = inputFile{ID: s.ID, Name: s.Name, Path: s.Path, Encoding: s.Encoding}
	}
	parsed, err := parseFiles(ctx, svc, files, cfg.Upload.MaxConcurrent)
	if err != nil {
		return err
	}

	sources := make([]core.Source, len(parsed))
	tmpl := core.TemplateSchema{
		Fields:   service.NormalizeConcepts(r.Fields),
		Mappings: make(map[string]core.FieldMapping, len(parsed)),
	}
	for i, p := range parsed {
		sources[i] = p.Source
		tmpl.Mappings[p.Source.ID] = r.MappingFor(r.Sources[i], p.Source.Headers)
	}

	res, err := svc.Run(ctx, sources, tmpl, r.Rules())
	if err != nil {
		return err
	}

	// Keep stdout clean when the CSV goes there.
	report := stdout
	output := opts.output
	if output == "" {
		output = r.Export.Path
	}
	if output == "" || output == "-" {
		output = "-"
		report = stderr
	}

	fmt.Fprintf(report, "%d fuentes, %d filas consolidadas, %d columnas limpiadas\n",
		res.Consolidation.TotalSources, res.Consolidation.TotalRows, len(res.Cleaning.ColumnsProcessed))
	for _, sc := range res.Consolidation.RowsPerSource {
		fmt.Fprintf(report, "  %s: %d filas\n", sc.Name, sc.RowCount)
	}
	if len(res.UnknownRules) > 0 {
		fmt.Fprintf(report, "reglas desconocidas (aplicadas como trim): %v\n", res.UnknownRules)
	}

	if opts.preview > 0 {
		pv := service.Preview(res, opts.preview)
		if err := renderTable(report, pv.Fields, pv.Rows); err != nil {
			return err
		}
		fmt.Fprintln(report, pv.Message)
	}

	delimiter := opts.delimiter
	if delimiter == "" {
		delimiter = r.Export.Delimiter
	}
	if delimiter == "" {
		delimiter = cfg.Export.Delimiter
	}
	d, err := csvio.ParseDelimiter(delimiter)
	if err != nil {
		return err
	}

	if err := writeResult(output, stdout, res, csvio.ExportOptions{Delimiter: d}); err != nil {
		return err
	}
	if output != "-" {
		fmt.Fprintf(report, "resultado escrito en %s\n", output)
	}

	if opts.pgTable != "" {
		n, err := copyToPostgres(ctx, cfg.Database, opts.pgTable, res, opts.pgTruncate)
		if err != nil {
			return err
		}
		fmt.Fprintf(report, "%d filas copiadas a %s\n", n, opts.pgTable)
	}
	return nil
}

func writeResult(path string, stdout io.Writer, res *service.RunResult, opts csvio.ExportOptions) error {
	if path == "-" {
		return csvio.Export(stdout, res.Fields, res.Rows, opts)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := csvio.Export(f, res.Fields, res.Rows, opts); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func copyToPostgres(ctx context.Context, dbCfg config.DatabaseConfig, table string, res *service.RunResult, truncate bool) (int64, error) {
	if dbCfg.URL == "" {
		return 0, fmt.Errorf("--pg-table needs DATABASE_URL")
	}

	poolConfig, err := pgxpool.ParseConfig(dbCfg.URL)
	if err != nil {
		return 0, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(dbCfg.MaxConns)
	poolConfig.ConnConfig.ConnectTimeout = dbCfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return 0, fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	pingCtx, cancel := context.WithTimeout(ctx, dbCfg.ConnectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		return 0, fmt.Errorf("ping database: %w", err)
	}

	copyCtx, cancelCopy := context.WithTimeout(ctx, dbCfg.CopyTimeout)
	defer cancelCopy()

	n, err := sink.CopyTable(copyCtx, pool, table, res.Fields, res.Rows, sink.Options{Truncate: truncate})
	if err != nil {
		return 0, err
	}
	slog.Info("copied to postgres", "table", table, "rows", n)
	return n, nil
}
