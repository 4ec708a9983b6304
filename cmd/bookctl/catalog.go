package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"picturebook-server/internal/catalog"
)

func newCatalogCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List animals, themes and languages the server offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := a.generator().Catalog(cmd.Context())
			if err != nil {
				a.logger.Warn("Catalog unavailable, showing built-in options", zap.Error(err))
				cat = catalog.Default()
			}
			printCatalog(cmd.OutOrStdout(), cat)
			return nil
		},
	}
}

func printCatalog(w io.Writer, cat *catalog.Catalog) {
	sections := []struct {
		title   string
		options []catalog.Option
	}{
		{"animals (--animal)", cat.Animals},
		{"themes (--theme)", cat.Themes},
		{"languages (--language)", cat.Languages},
		{"genders (--gender)", cat.Genders},
	}
	for i, s := range sections {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, s.title)
		for _, o := range s.options {
			fmt.Fprintf(w, "  %-10s %s\n", o.ID, o.Label())
		}
	}
}
