package narration

import (
	"strings"

	"golang.org/x/text/language"

	"picturebook-server/internal/domain"
)

// Voice голос синтезатора речи.
type Voice struct {
	Name    string
	Lang    string // BCP 47, например ja-JP
	Default bool
}

// Мягкие женские голоса, известные по качеству, в порядке предпочтения.
var (
	japaneseVoicePriority = []string{"O-ren", "Kyoko", "Ayumi", "Haruka", "Google 日本語"}
	englishVoicePriority  = []string{"Neural", "Samantha", "Zira", "Allison", "Google US English"}
)

// TagFor язык озвучки для слоя книги.
func TagFor(lang domain.Language) language.Tag {
	if lang == domain.LanguageEnglish {
		return language.AmericanEnglish
	}
	return language.Japanese
}

// SelectVoice выбирает голос для языка: сначала по списку приоритетов,
// для английского затем голос по умолчанию en-US, иначе первый подходящий.
func SelectVoice(voices []Voice, tag language.Tag) (Voice, bool) {
	base, _ := tag.Base()

	var candidates []Voice
	for _, v := range voices {
		vt, err := language.Parse(v.Lang)
		if err != nil {
			continue
		}
		if vb, _ := vt.Base(); vb == base {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return Voice{}, false
	}

	var priority []string
	switch base.String() {
	case "ja":
		priority = japaneseVoicePriority
	case "en":
		priority = englishVoicePriority
	}
	for _, keyword := range priority {
		for _, v := range candidates {
			if strings.Contains(v.Name, keyword) {
				return v, true
			}
		}
	}

	if base.String() == "en" {
		for _, v := range candidates {
			vt, _ := language.Parse(v.Lang)
			if v.Default && vt.String() == language.AmericanEnglish.String() {
				return v, true
			}
		}
	}
	return candidates[0], true
}
