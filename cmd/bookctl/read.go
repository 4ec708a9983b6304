package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"picturebook-server/internal/domain"
	"picturebook-server/internal/narration"
	"picturebook-server/internal/render"
)

func newReadCmd(a *app) *cobra.Command {
	var (
		page    int
		mode    string
		narrate bool
	)
	cmd := &cobra.Command{
		Use:   "read <book-id>",
		Short: "Read a book from the bookshelf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			displayMode, err := render.ParseDisplayMode(mode)
			if err != nil {
				return err
			}

			ctrl := a.controller(ctx, false)
			if err := ctrl.OpenBookshelf(); err != nil {
				return err
			}
			book, err := ctrl.Select(args[0])
			if err != nil {
				return err
			}

			pages, err := pageSelection(book, page)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if page == 0 {
				printBook(out, book, displayMode)
			} else {
				printPage(out, book, page-1, displayMode)
			}

			if narrate {
				synth, err := narration.NewCommandSynthesizer(a.cfg.VoiceCommand)
				if err != nil {
					a.logger.Warn("Narration disabled", zap.Error(err))
					return nil
				}
				narrateBook(ctx, narration.NewNarrator(synth, narration.DefaultRate, a.logger), book, pages, cmd.InOrStdin(), cmd.ErrOrStderr())
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVarP(&page, "page", "p", 0, "page number starting at 1, 0 prints the whole book")
	f.StringVarP(&mode, "mode", "m", string(render.ModeBoth), "display mode for bilingual books: both, native or foreign")
	f.BoolVar(&narrate, "narrate", false, "read the selected pages aloud")
	return cmd
}

// pageSelection индексы страниц для показа. page считается с 1, 0 означает все.
func pageSelection(book domain.Book, page int) ([]int, error) {
	if page < 0 || page > len(book.Pages) {
		return nil, fmt.Errorf("page %d out of range 1..%d", page, len(book.Pages))
	}
	if page > 0 {
		return []int{page - 1}, nil
	}
	all := make([]int, len(book.Pages))
	for i := range all {
		all[i] = i
	}
	return all, nil
}
