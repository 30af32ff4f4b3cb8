package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/datacleaner/internal/core"
	"github.com/JonMunkholm/datacleaner/internal/service"
)

// inputFile is a CSV file to parse.
type inputFile struct {
	ID       string // empty keeps the generated id
	Name     string
	Path     string
	Encoding string
}

// parsedFile is an input with its parsed source.
type parsedFile struct {
	Source    core.Source
	Delimiter rune
}

// parseFiles parses files concurrently, at most limit at a time, and
// returns them in input order. The first failure cancels the rest.
func parseFiles(ctx context.Context, svc *service.Service, files []inputFile, limit int) ([]parsedFile, error) {
	out := make([]parsedFile, len(files))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, f := range files {
		g.Go(func() error {
			fh, err := os.Open(f.Path)
			if err != nil {
				return fmt.Errorf("open %s: %w", f.Path, err)
			}
			defer fh.Close()

			var size int64 = -1
			if st, err := fh.Stat(); err == nil {
				size = st.Size()
			}

			name := f.Name
			if name == "" {
				name = f.Path
			}
			src, delim, err := svc.ParseSource(gctx, service.Upload{
				Name:     name,
				Reader:   fh,
				Size:     size,
				Encoding: f.Encoding,
			})
			if err != nil {
				return err
			}
			if f.ID != "" {
				src.ID = f.ID
			}
			out[i] = parsedFile{Source: src, Delimiter: delim}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
