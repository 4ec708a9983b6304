package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"picturebook-server/internal/annotation"
	"picturebook-server/internal/config"
	"picturebook-server/internal/domain"
	"picturebook-server/internal/shelf"
)

func newShelfCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shelf",
		Short: "Manage the bookshelf",
	}
	cmd.AddCommand(newShelfListCmd(a), newShelfDeleteCmd(a), newShelfMigrateCmd(a))
	return cmd
}

func newShelfListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List books on the bookshelf",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl := a.controller(cmd.Context(), false)
			return printShelf(cmd.OutOrStdout(), ctrl.Shelf())
		},
	}
}

func printShelf(w io.Writer, books []domain.Book) error {
	if len(books) == 0 {
		fmt.Fprintln(w, "ほんだなは からっぽです。")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tLANGUAGE\tPAGES\tCREATED")
	for _, b := range books {
		created := "-"
		if !b.CreatedAt.IsZero() {
			created = b.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", b.ID, annotation.Strip(b.Title), b.Language, len(b.Pages), created)
	}
	return tw.Flush()
}

func newShelfDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <book-id>...",
		Aliases: []string{"rm"},
		Short:   "Remove books from the bookshelf",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctrl := a.controller(ctx, false)
			if err := ctrl.OpenBookshelf(); err != nil {
				return err
			}
			for _, id := range args {
				removed, err := ctrl.Delete(ctx, id)
				if err != nil {
					return err
				}
				if removed {
					fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
				} else {
					fmt.Fprintf(cmd.ErrOrStderr(), "not on the bookshelf: %s\n", id)
				}
			}
			return nil
		},
	}
}

func newShelfMigrateCmd(a *app) *cobra.Command {
	var down bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Show or roll back the Postgres bookshelf schema",
		Long:  "Opening a postgres bookshelf applies migrations automatically. migrate prints the schema version, --down drops the schema and all bookshelves.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if a.cfg.ShelfBackend != config.ShelfBackendPostgres {
				return errors.New("migrate requires the postgres shelf backend")
			}
			if err := a.shelf.Err(); err != nil {
				return err
			}
			pool, ok := a.shelf.Postgres()
			if !ok {
				return shelf.ErrUnavailable
			}
			if down {
				if err := shelf.Rollback(ctx, pool); err != nil {
					return err
				}
			}
			version, dirty, err := shelf.SchemaVersion(ctx, pool)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%t)\n", version, dirty)
			return nil
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll back all bookshelf migrations")
	return cmd
}
