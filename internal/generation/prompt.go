package generation

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"picturebook-server/internal/catalog"
	"picturebook-server/internal/domain"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var promptTemplates = template.Must(
	template.New("prompts").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(promptFS, "prompts/*.tmpl"),
)

// DefaultPageCount количество страниц в книге.
const DefaultPageCount = 6

type promptData struct {
	Name      string
	Gender    string
	GenderEn  string
	Animals   []string
	AnimalIDs []string
	Theme     string
	ThemeID   string
	Language  domain.Language
	PageCount int
}

// BuildPrompt собирает системный и пользовательский промты из параметров.
func BuildPrompt(params domain.CreationParams, cat *catalog.Catalog, pageCount int) (string, string, error) {
	if pageCount <= 0 {
		pageCount = DefaultPageCount
	}
	data := promptData{
		Name:      params.Name,
		Gender:    params.Gender.Japanese(),
		GenderEn:  string(params.Gender),
		Animals:   cat.AnimalNames(params.Animals),
		AnimalIDs: params.Animals,
		Theme:     cat.ThemeName(params.Theme),
		ThemeID:   params.Theme,
		Language:  params.Language,
		PageCount: pageCount,
	}

	var system, user bytes.Buffer
	if err := promptTemplates.ExecuteTemplate(&system, "system.tmpl", data); err != nil {
		return "", "", fmt.Errorf("failed to render system prompt: %w", err)
	}
	if err := promptTemplates.ExecuteTemplate(&user, "user.tmpl", data); err != nil {
		return "", "", fmt.Errorf("failed to render user prompt: %w", err)
	}
	return system.String(), user.String(), nil
}
