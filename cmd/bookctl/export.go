package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gosimple/slug"
	"github.com/spf13/cobra"

	"picturebook-server/internal/annotation"
	"picturebook-server/internal/domain"
	"picturebook-server/internal/render"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		outDir string
		mode   string
	)
	cmd := &cobra.Command{
		Use:   "export <book-id>",
		Short: "Export a book as a standalone HTML page with ruby annotations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			displayMode, err := render.ParseDisplayMode(mode)
			if err != nil {
				return err
			}
			ctrl := a.controller(cmd.Context(), false)
			if err := ctrl.OpenBookshelf(); err != nil {
				return err
			}
			book, err := ctrl.Select(args[0])
			if err != nil {
				return err
			}

			doc, err := render.BookHTML(book, displayMode)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output dir %s: %w", outDir, err)
			}
			path := filepath.Join(outDir, exportFileName(book))
			if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().StringVarP(&mode, "mode", "m", string(render.ModeBoth), "display mode for bilingual books: both, native or foreign")
	return cmd
}

// exportFileName имя файла из заголовка без фуриганы. Если транслитерация пуста, используется id.
func exportFileName(book domain.Book) string {
	name := slug.Make(annotation.Strip(book.Title))
	if name == "" {
		name = book.ID
	}
	return name + ".html"
}
