// Package render проецирует страницу книги в дерево отображения для выбранного режима.
package render

import (
	"fmt"
	"strings"

	"picturebook-server/internal/annotation"
	"picturebook-server/internal/domain"
)

// DisplayMode какие слои текста показываются на странице.
type DisplayMode string

const (
	ModeNative  DisplayMode = "native"
	ModeForeign DisplayMode = "foreign"
	ModeBoth    DisplayMode = "both"
)

// ParseDisplayMode разбирает режим. Пустая строка означает ModeBoth.
// Принимаются также короткие формы ja/en.
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both":
		return ModeBoth, nil
	case "native", "ja", "japanese":
		return ModeNative, nil
	case "foreign", "en", "english":
		return ModeForeign, nil
	}
	return "", fmt.Errorf("unknown display mode %q", s)
}

// Next переключает режим по кругу: both -> native -> foreign -> both.
func (m DisplayMode) Next() DisplayMode {
	switch m {
	case ModeBoth:
		return ModeNative
	case ModeNative:
		return ModeForeign
	default:
		return ModeBoth
	}
}

func (m DisplayMode) showsNative() bool  { return m == ModeNative || m == ModeBoth }
func (m DisplayMode) showsForeign() bool { return m == ModeForeign || m == ModeBoth }

// EffectiveMode учитывает язык книги: японская книга всегда native,
// английская всегда foreign, двуязычная использует запрошенный режим.
func EffectiveMode(lang domain.Language, requested DisplayMode) DisplayMode {
	switch lang {
	case domain.LanguageJapanese:
		return ModeNative
	case domain.LanguageEnglish:
		return ModeForeign
	}
	if requested == "" {
		return ModeBoth
	}
	return requested
}

// RenderedPage результат проекции. Native заполнен только если слой виден.
type RenderedPage struct {
	Mode           DisplayMode          `json:"mode"`
	ImageReference string               `json:"imageReference"`
	ShowNative     bool                 `json:"showNative"`
	ShowForeign    bool                 `json:"showForeign"`
	Native         []annotation.Segment `json:"native,omitempty"`
	Foreign        string               `json:"foreign,omitempty"`
}

// Render чистая функция: страница не изменяется.
func Render(page domain.Page, mode DisplayMode) RenderedPage {
	rp := RenderedPage{
		Mode:           mode,
		ImageReference: page.ImageReference,
	}
	if mode.showsNative() {
		rp.ShowNative = true
		rp.Native = annotation.Parse(page.NativeText)
	}
	if mode.showsForeign() {
		rp.ShowForeign = true
		rp.Foreign = page.ForeignText
	}
	return rp
}

// Terminal печатает страницу для терминала, чтения идут в 《》 после базы.
func Terminal(rp RenderedPage) string {
	var b strings.Builder
	if rp.ShowNative {
		for _, seg := range rp.Native {
			b.WriteString(seg.Text)
			if seg.Kind == annotation.KindAnnotated && seg.Reading != "" {
				b.WriteString("《" + seg.Reading + "》")
			}
		}
	}
	if rp.ShowForeign && rp.Foreign != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(rp.Foreign)
	}
	return b.String()
}

// NarrationText текст для озвучки на выбранном языке, без чтений фуриганы.
func NarrationText(page domain.Page, lang domain.Language) string {
	if lang == domain.LanguageEnglish {
		return strings.TrimSpace(page.ForeignText)
	}
	return strings.TrimSpace(annotation.Strip(page.NativeText))
}
