package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"picturebook-server/internal/domain"
	"picturebook-server/internal/narration"
	"picturebook-server/internal/render"
)

type createOptions struct {
	name     string
	gender   string
	animals  []string
	theme    string
	language string
	mode     string
	noShelve bool
	narrate  bool
}

func newCreateCmd(a *app) *cobra.Command {
	var opts createOptions
	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a new picture book",
		Example: "  bookctl create --name はると --gender boy --animal lion --animal rabbit --theme adventure --language bilingual",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCreate(cmd, a, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.name, "name", "n", "", "hero name")
	f.StringVarP(&opts.gender, "gender", "g", string(domain.GenderBoy), "hero gender: boy or girl")
	f.StringSliceVarP(&opts.animals, "animal", "a", nil, "favorite animal id, repeatable (see `bookctl catalog`)")
	f.StringVarP(&opts.theme, "theme", "t", "adventure", "story theme id")
	f.StringVarP(&opts.language, "language", "l", string(domain.LanguageBilingual), "japanese, english or bilingual")
	f.StringVarP(&opts.mode, "mode", "m", string(render.ModeBoth), "display mode for bilingual books: both, native or foreign")
	f.BoolVar(&opts.noShelve, "no-shelve", false, "do not put the new book on the bookshelf")
	f.BoolVar(&opts.narrate, "narrate", false, "read the book aloud after printing")
	return cmd
}

func runCreate(cmd *cobra.Command, a *app, opts createOptions) error {
	ctx := cmd.Context()
	mode, err := render.ParseDisplayMode(opts.mode)
	if err != nil {
		return err
	}

	params := domain.CreationParams{
		Name:     opts.name,
		Gender:   domain.Gender(opts.gender),
		Animals:  opts.animals,
		Theme:    opts.theme,
		Language: domain.Language(opts.language),
	}

	ctrl := a.controller(ctx, a.cfg.AutoShelve && !opts.noShelve)
	fmt.Fprintln(cmd.ErrOrStderr(), "えほんを つくっています…")
	book, err := ctrl.Submit(ctx, params)
	if err != nil {
		if msg := ctrl.LastError(); msg != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), msg)
		}
		return err
	}

	out := cmd.OutOrStdout()
	printBook(out, book, mode)
	fmt.Fprintf(out, "\nbook id: %s\n", book.ID)

	if opts.narrate {
		synth, err := narration.NewCommandSynthesizer(a.cfg.VoiceCommand)
		if err != nil {
			a.logger.Warn("Narration disabled", zap.Error(err))
			return nil
		}
		pages, _ := pageSelection(book, 0)
		narrateBook(ctx, narration.NewNarrator(synth, narration.DefaultRate, a.logger), book, pages, cmd.InOrStdin(), cmd.ErrOrStderr())
	}
	return nil
}
