package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/datacleaner/internal/config"
	"github.com/JonMunkholm/datacleaner/internal/core"
	"github.com/JonMunkholm/datacleaner/internal/recipe"
	"github.com/JonMunkholm/datacleaner/internal/service"
)

type inspectOptions struct {
	fields     []string
	encoding   string
	emitRecipe bool
}

func newInspectCmd(cfg *config.Config) *cobra.Command {
	var opts inspectOptions

	cmd := &cobra.Command{
		Use:   "inspect file.csv...",
		Short: "Show headers, row counts and the suggested mapping of CSV files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]inputFile, len(args))
			for i, path := range args {
				files[i] = inputFile{Name: filepath.Base(path), Path: path, Encoding: opts.encoding}
			}

			svc := service.NewService(cfg)
			parsed, err := parseFiles(cmd.Context(), svc, files, cfg.Upload.MaxConcurrent)
			if err != nil {
				return err
			}

			fields := service.NormalizeConcepts(opts.fields)
			if opts.emitRecipe {
				return emitRecipe(cmd.OutOrStdout(), fields, args, parsed)
			}
			printInspection(cmd.OutOrStdout(), fields, parsed)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&opts.fields, "fields", service.DefaultConcepts, "target fields to match headers against")
	f.StringVar(&opts.encoding, "encoding", "", "file encoding: utf-8 or windows-1252 (default: UPLOAD_ENCODING)")
	f.BoolVar(&opts.emitRecipe, "emit-recipe", false, "print a recipe for the files instead of a report")

	return cmd
}

func printInspection(w io.Writer, fields []string, parsed []parsedFile) {
	for i, p := range parsed {
		if i > 0 {
			fmt.Fprintln(w)
		}
		src := p.Source
		fmt.Fprintf(w, "%s: %d filas, delimitador %q, coincidencia %.0f%%\n",
			src.Name, len(src.Rows), p.Delimiter, 100*service.MatchScore(src.Headers, fields))

		mapping := service.SuggestMapping(src.Headers, fields)
		rows := make([]core.Row, len(src.Headers))
		for j, h := range src.Headers {
			target := mapping[h]
			if target == core.IgnoreColumn {
				target = "(ignorar)"
			}
			rows[j] = core.Row{"columna": h, "campo": target}
		}
		renderTable(w, []string{"columna", "campo"}, rows)
	}
}

// emitRecipe prints a recipe that maps each file with its suggested mapping.
func emitRecipe(w io.Writer, fields, paths []string, parsed []parsedFile) error {
	r := recipe.Recipe{Fields: fields}
	for i, p := range parsed {
		mapping := service.SuggestMapping(p.Source.Headers, fields)
		for h, f := range mapping {
			if f == core.IgnoreColumn {
				delete(mapping, h)
			}
		}
		id := strings.TrimSuffix(filepath.Base(paths[i]), filepath.Ext(paths[i]))
		r.Sources = append(r.Sources, recipe.Source{
			ID:      id,
			Path:    paths[i],
			Mapping: mapping,
		})
	}
	r.ColumnRules = service.DefaultColumnRules(fields).ColumnRules

	data, err := r.Marshal()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
