package render

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"picturebook-server/internal/annotation"
	"picturebook-server/internal/domain"
)

var samplePage = domain.Page{
	NativeText:     "森(もり)でライオンに会(あ)いました。",
	ForeignText:    "I met a lion in the forest.",
	ImageReference: "https://example.com/lion.png",
}

func TestRender_Modes(t *testing.T) {
	native := Render(samplePage, ModeNative)
	assert.True(t, native.ShowNative)
	assert.False(t, native.ShowForeign)
	assert.Empty(t, native.Foreign)
	assert.Equal(t, annotation.Parse(samplePage.NativeText), native.Native)

	foreign := Render(samplePage, ModeForeign)
	assert.False(t, foreign.ShowNative)
	assert.Nil(t, foreign.Native)
	assert.Equal(t, samplePage.ForeignText, foreign.Foreign)

	both := Render(samplePage, ModeBoth)
	assert.True(t, both.ShowNative)
	assert.True(t, both.ShowForeign)
	assert.Equal(t, samplePage.ImageReference, both.ImageReference)
}

func TestRender_DoesNotMutatePage(t *testing.T) {
	page := samplePage
	Render(page, ModeBoth)
	assert.Equal(t, samplePage, page)
}

func TestDisplayMode_NextAndParse(t *testing.T) {
	assert.Equal(t, ModeNative, ModeBoth.Next())
	assert.Equal(t, ModeForeign, ModeNative.Next())
	assert.Equal(t, ModeBoth, ModeForeign.Next())

	m, err := ParseDisplayMode("ja")
	require.NoError(t, err)
	assert.Equal(t, ModeNative, m)
	m, err = ParseDisplayMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeBoth, m)
	_, err = ParseDisplayMode("klingon")
	assert.Error(t, err)
}

func TestEffectiveMode(t *testing.T) {
	assert.Equal(t, ModeNative, EffectiveMode(domain.LanguageJapanese, ModeForeign))
	assert.Equal(t, ModeForeign, EffectiveMode(domain.LanguageEnglish, ModeBoth))
	assert.Equal(t, ModeNative, EffectiveMode(domain.LanguageBilingual, ModeNative))
	assert.Equal(t, ModeBoth, EffectiveMode(domain.LanguageBilingual, ""))
}

func TestHTML_RubyMarkup(t *testing.T) {
	out, err := HTML(Render(samplePage, ModeBoth))
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)

	rubies := doc.Find("p.native ruby")
	require.Equal(t, 2, rubies.Length())
	assert.Equal(t, "もり", rubies.First().Find("rt").Text())
	assert.Equal(t, "あ", rubies.Last().Find("rt").Text())
	assert.Equal(t, samplePage.ForeignText, doc.Find("p.foreign").Text())
	src, ok := doc.Find("img").Attr("src")
	assert.True(t, ok)
	assert.Equal(t, samplePage.ImageReference, src)
}

func TestHTML_EscapesText(t *testing.T) {
	out, err := HTML(Render(domain.Page{ForeignText: "<script>alert(1)</script>"}, ModeForeign))
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestBookHTML(t *testing.T) {
	book := domain.Book{
		ID:       "b1",
		Title:    "森(もり)のぼうけん",
		Language: domain.LanguageJapanese,
		Pages:    []domain.Page{samplePage, {NativeText: "おしまい"}},
	}
	out, err := BookHTML(book, ModeBoth)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "森のぼうけん", doc.Find("title").Text())
	assert.Equal(t, 2, doc.Find("section.page").Length())
	// японская книга не показывает английский слой
	assert.Equal(t, 0, doc.Find("p.foreign").Length())
	lang, _ := doc.Find("html").Attr("lang")
	assert.Equal(t, "ja", lang)
}

func TestBookHTML_DocumentLanguage(t *testing.T) {
	tests := map[string]struct {
		language domain.Language
		want     string
	}{
		"english":   {language: domain.LanguageEnglish, want: "en"},
		"japanese":  {language: domain.LanguageJapanese, want: "ja"},
		"bilingual": {language: domain.LanguageBilingual, want: "ja"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			book := domain.Book{ID: "b1", Title: "Forest", Language: tt.language, Pages: []domain.Page{samplePage}}
			out, err := BookHTML(book, ModeBoth)
			require.NoError(t, err)

			doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
			require.NoError(t, err)
			lang, ok := doc.Find("html").Attr("lang")
			require.True(t, ok)
			assert.Equal(t, tt.want, lang)
			if tt.language.HasForeign() {
				foreignLang, _ := doc.Find("p.foreign").Attr("lang")
				assert.Equal(t, "en", foreignLang)
			}
		})
	}
}

func TestTerminalAndNarration(t *testing.T) {
	assert.Equal(t, "森《もり》でライオンに会《あ》いました。\nI met a lion in the forest.", Terminal(Render(samplePage, ModeBoth)))
	assert.Equal(t, "森でライオンに会いました。", NarrationText(samplePage, domain.LanguageJapanese))
	assert.Equal(t, "I met a lion in the forest.", NarrationText(samplePage, domain.LanguageEnglish))
}
