package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Gender пол главного героя.
type Gender string

const (
	GenderBoy  Gender = "boy"
	GenderGirl Gender = "girl"
)

// Значения из старой версии формы.
var legacyGenders = map[string]Gender{
	"おとこのこ": GenderBoy,
	"おんなのこ": GenderGirl,
}

// ParseGender принимает как "boy"/"girl", так и японские значения формы.
func ParseGender(s string) (Gender, error) {
	v := strings.TrimSpace(s)
	switch Gender(strings.ToLower(v)) {
	case GenderBoy:
		return GenderBoy, nil
	case GenderGirl:
		return GenderGirl, nil
	}
	if g, ok := legacyGenders[v]; ok {
		return g, nil
	}
	return "", fmt.Errorf("%w: unknown gender %q", ErrInvalidParams, s)
}

// UnmarshalJSON нормализует пол при декодировании.
func (g *Gender) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: gender must be a string", ErrInvalidParams)
	}
	if raw == "" {
		*g = ""
		return nil
	}
	parsed, err := ParseGender(raw)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// Japanese возвращает слово, которое используется в промте.
func (g Gender) Japanese() string {
	if g == GenderGirl {
		return "おんなのこ"
	}
	return "おとこのこ"
}

// Language режим языка книги.
type Language string

const (
	LanguageJapanese  Language = "japanese"
	LanguageEnglish   Language = "english"
	LanguageBilingual Language = "bilingual"
)

// ParseLanguage проверяет режим языка.
func ParseLanguage(s string) (Language, error) {
	switch l := Language(strings.ToLower(strings.TrimSpace(s))); l {
	case LanguageJapanese, LanguageEnglish, LanguageBilingual:
		return l, nil
	}
	return "", fmt.Errorf("%w: unknown language %q", ErrInvalidParams, s)
}

// HasNative показывает, нужен ли японский текст на страницах.
func (l Language) HasNative() bool { return l == LanguageJapanese || l == LanguageBilingual }

// HasForeign показывает, нужен ли английский текст на страницах.
func (l Language) HasForeign() bool { return l == LanguageEnglish || l == LanguageBilingual }

// CreationParams параметры, которые ребенок выбирает в форме.
type CreationParams struct {
	Name     string   `json:"name"`
	Gender   Gender   `json:"gender"`
	Animals  []string `json:"animals"`
	Theme    string   `json:"theme"`
	Language Language `json:"language"`
}

// Validate проверяет параметры и нормализует их на месте:
// имя обрезается, повторяющиеся животные схлопываются с сохранением порядка.
func (p *CreationParams) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidParams)
	}

	g, err := ParseGender(string(p.Gender))
	if err != nil {
		return err
	}
	p.Gender = g

	seen := make(map[string]struct{}, len(p.Animals))
	animals := make([]string, 0, len(p.Animals))
	for _, a := range p.Animals {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		animals = append(animals, a)
	}
	if len(animals) == 0 {
		return fmt.Errorf("%w: at least one animal is required", ErrInvalidParams)
	}
	p.Animals = animals

	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		return fmt.Errorf("%w: theme is required", ErrInvalidParams)
	}

	lang, err := ParseLanguage(string(p.Language))
	if err != nil {
		return err
	}
	p.Language = lang
	return nil
}
