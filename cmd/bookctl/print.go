package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"picturebook-server/internal/annotation"
	"picturebook-server/internal/domain"
	"picturebook-server/internal/narration"
	"picturebook-server/internal/render"
)

// describeImage короткое описание картинки: data: URI не печатаются целиком.
func describeImage(ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "data:") {
		mime, _, _ := strings.Cut(strings.TrimPrefix(ref, "data:"), ";")
		return fmt.Sprintf("[image: embedded %s, %d bytes]", mime, len(ref))
	}
	return "[image: " + ref + "]"
}

func printPage(w io.Writer, book domain.Book, index int, mode render.DisplayMode) {
	page := book.Pages[index]
	rp := render.Render(page, render.EffectiveMode(book.Language, mode))

	fmt.Fprintf(w, "--- %d/%d ---\n", index+1, len(book.Pages))
	if img := describeImage(rp.ImageReference); img != "" {
		fmt.Fprintln(w, img)
	}
	if text := render.Terminal(rp); text != "" {
		fmt.Fprintln(w, text)
	}
}

func printBook(w io.Writer, book domain.Book, mode render.DisplayMode) {
	fmt.Fprintf(w, "=== %s ===\n", annotation.Strip(book.Title))
	for i := range book.Pages {
		printPage(w, book, i, mode)
	}
}

// narrationKeys подсказка для управления озвучкой со стандартного ввода.
const narrationKeys = "[enter] next  [p] back  [r] again  [m] mute  [q] quit"

// pageNarration озвучка одной страницы в фоне: слои по очереди, для двуязычной книги сначала японский.
type pageNarration struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func startPageNarration(ctx context.Context, n *narration.Narrator, page domain.Page, lang domain.Language) *pageNarration {
	pageCtx, cancel := context.WithCancel(ctx)
	pn := &pageNarration{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(pn.done)
		for _, layer := range narrationLayers(lang) {
			if pageCtx.Err() != nil {
				return
			}
			n.SpeakPage(pageCtx, page, layer)
			n.Wait()
		}
	}()
	return pn
}

func (pn *pageNarration) stop(n *narration.Narrator) {
	pn.cancel()
	n.Cancel()
	<-pn.done
}

// narrateBook читает страницы и принимает команды со стандартного ввода.
// Смена страницы обрывает текущую фразу, m выключает и включает звук.
// Когда ввод заканчивается, оставшиеся страницы читаются подряд.
func narrateBook(ctx context.Context, n *narration.Narrator, book domain.Book, pages []int, in io.Reader, out io.Writer) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer n.Cancel()

	commands := make(chan string)
	go func() {
		defer close(commands)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case commands <- strings.ToLower(strings.TrimSpace(scanner.Text())):
			case <-ctx.Done():
				return
			}
		}
	}()

	pos := 0
	current := startPageNarration(ctx, n, book.Pages[pages[pos]], book.Language)
	fmt.Fprintf(out, "♪ %d/%d  %s\n", pages[pos]+1, len(book.Pages), narrationKeys)
	for {
		var (
			cmd string
			ok  bool
		)
		select {
		case <-ctx.Done():
			current.stop(n)
			return
		case cmd, ok = <-commands:
		}

		if !ok {
			<-current.done
			for pos++; pos < len(pages) && ctx.Err() == nil; pos++ {
				current = startPageNarration(ctx, n, book.Pages[pages[pos]], book.Language)
				<-current.done
			}
			return
		}

		next := pos
		switch cmd {
		case "", "n":
			next = pos + 1
		case "p":
			if pos > 0 {
				next = pos - 1
			}
		case "r":
		case "m":
			if n.ToggleMute() {
				fmt.Fprintln(out, "muted")
				continue
			}
			fmt.Fprintln(out, "sound on")
		case "q":
			current.stop(n)
			return
		default:
			fmt.Fprintln(out, narrationKeys)
			continue
		}

		current.stop(n)
		if next >= len(pages) {
			return
		}
		pos = next
		current = startPageNarration(ctx, n, book.Pages[pages[pos]], book.Language)
		fmt.Fprintf(out, "♪ %d/%d\n", pages[pos]+1, len(book.Pages))
	}
}

func narrationLayers(lang domain.Language) []domain.Language {
	switch lang {
	case domain.LanguageJapanese:
		return []domain.Language{domain.LanguageJapanese}
	case domain.LanguageEnglish:
		return []domain.Language{domain.LanguageEnglish}
	}
	return []domain.Language{domain.LanguageJapanese, domain.LanguageEnglish}
}
