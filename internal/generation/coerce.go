package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"picturebook-server/internal/domain"
)

// rawPage страница в том виде, как ее возвращает модель.
// Кроме основных имен принимаются старые text/textEn/image и japanese/english.
type rawPage struct {
	NativeText     string `json:"nativeText"`
	ForeignText    string `json:"foreignText"`
	ImageReference string `json:"imageReference"`
	ImagePrompt    string `json:"imagePrompt"`

	Text     string `json:"text"`
	TextEn   string `json:"textEn"`
	Image    string `json:"image"`
	Japanese string `json:"japanese"`
	English  string `json:"english"`
}

type rawBook struct {
	Title string    `json:"title"`
	Pages []rawPage `json:"pages"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// extractJSON убирает markdown-ограждение ``` и вырезает внешний JSON-объект.
func extractJSON(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if nl := strings.Index(s, "\n"); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// ParseBook приводит ответ модели к GeneratedBook и проверяет его для режима языка.
// Возвращает также подсказки для иллюстраций по страницам (могут быть пустыми).
// Любое несоответствие считается ошибкой апстрима.
func ParseBook(raw string, lang domain.Language) (domain.GeneratedBook, []string, error) {
	body, ok := extractJSON(raw)
	if !ok {
		return domain.GeneratedBook{}, nil, fmt.Errorf("%w: no JSON object in response", domain.ErrInvalidUpstreamResponse)
	}

	var rb rawBook
	if err := json.Unmarshal([]byte(body), &rb); err != nil {
		return domain.GeneratedBook{}, nil, fmt.Errorf("%w: %v", domain.ErrInvalidUpstreamResponse, err)
	}

	book := domain.GeneratedBook{
		Title: rb.Title,
		Pages: make([]domain.Page, 0, len(rb.Pages)),
	}
	prompts := make([]string, 0, len(rb.Pages))
	for _, p := range rb.Pages {
		page := domain.Page{
			NativeText:     firstNonEmpty(p.NativeText, p.Text, p.Japanese),
			ForeignText:    firstNonEmpty(p.ForeignText, p.TextEn, p.English),
			ImageReference: firstNonEmpty(p.ImageReference, p.Image),
		}
		// слои, которых нет в режиме языка, не храним
		if !lang.HasNative() {
			page.NativeText = ""
		}
		if !lang.HasForeign() {
			page.ForeignText = ""
		}
		book.Pages = append(book.Pages, page)
		prompts = append(prompts, strings.TrimSpace(p.ImagePrompt))
	}

	if err := book.Validate(lang); err != nil {
		return domain.GeneratedBook{}, nil, err
	}
	return book, prompts, nil
}
