package render

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"picturebook-server/internal/annotation"
	"picturebook-server/internal/domain"
)

const bookStyle = `body{font-family:"Hiragino Maru Gothic ProN","Noto Sans JP",sans-serif;background:#fff8e7;margin:0;padding:2rem}
section.page{max-width:720px;margin:0 auto 3rem;background:#fff;border-radius:24px;padding:1.5rem;box-shadow:0 4px 16px rgba(0,0,0,.08)}
section.page img{width:100%;border-radius:16px}
p.native{font-size:1.6rem;line-height:2.6}
p.foreign{font-size:1.2rem;color:#555}
rt{font-size:.55em;color:#e4572e}`

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// nativeParagraph строит <p class="native"> с <ruby> для аннотированных сегментов.
func nativeParagraph(segments []annotation.Segment) *html.Node {
	p := element(atom.P, attr("class", "native"))
	for _, seg := range segments {
		if seg.Kind == annotation.KindPlain {
			p.AppendChild(textNode(seg.Text))
			continue
		}
		ruby := element(atom.Ruby)
		ruby.AppendChild(textNode(seg.Text))
		rt := element(atom.Rt)
		rt.AppendChild(textNode(seg.Reading))
		ruby.AppendChild(rt)
		p.AppendChild(ruby)
	}
	return p
}

func pageNode(rp RenderedPage, alt string) *html.Node {
	section := element(atom.Section, attr("class", "page"), attr("data-mode", string(rp.Mode)))
	if rp.ImageReference != "" {
		section.AppendChild(element(atom.Img, attr("src", rp.ImageReference), attr("alt", alt)))
	}
	if rp.ShowNative {
		section.AppendChild(nativeParagraph(rp.Native))
	}
	if rp.ShowForeign {
		p := element(atom.P, attr("class", "foreign"), attr("lang", "en"))
		p.AppendChild(textNode(rp.Foreign))
		section.AppendChild(p)
	}
	return section
}

func renderNode(n *html.Node) (string, error) {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return "", fmt.Errorf("failed to render html: %w", err)
	}
	return b.String(), nil
}

// HTML возвращает фрагмент разметки одной страницы.
func HTML(rp RenderedPage) (string, error) {
	return renderNode(pageNode(rp, ""))
}

// documentLang код языка для <html lang>: английская книга "en", остальные "ja".
func documentLang(lang domain.Language) string {
	if lang == domain.LanguageEnglish {
		return "en"
	}
	return "ja"
}

// BookHTML собирает всю книгу в один HTML-документ для экспорта.
func BookHTML(book domain.Book, mode DisplayMode) (string, error) {
	mode = EffectiveMode(book.Language, mode)

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html, attr("lang", documentLang(book.Language)))
	doc.AppendChild(root)

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, attr("charset", "utf-8")))
	title := element(atom.Title)
	title.AppendChild(textNode(annotation.Strip(book.Title)))
	head.AppendChild(title)
	style := element(atom.Style)
	style.AppendChild(textNode(bookStyle))
	head.AppendChild(style)
	root.AppendChild(head)

	body := element(atom.Body)
	h1 := element(atom.H1)
	h1.AppendChild(textNode(annotation.Strip(book.Title)))
	body.AppendChild(h1)
	for i, page := range book.Pages {
		alt := fmt.Sprintf("%s %d", annotation.Strip(book.Title), i+1)
		body.AppendChild(pageNode(Render(page, mode), alt))
	}
	root.AppendChild(body)

	return renderNode(doc)
}
