// Package catalog содержит варианты, которые предлагаются в форме создания книги.
package catalog

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Option один вариант выбора.
type Option struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Emoji string `yaml:"emoji" json:"emoji"`
}

// Label имя вместе с эмодзи, как на кнопках формы.
func (o Option) Label() string {
	if o.Emoji == "" {
		return o.Name
	}
	return o.Name + o.Emoji
}

// Catalog полный набор вариантов.
type Catalog struct {
	Animals   []Option `yaml:"animals" json:"animals"`
	Themes    []Option `yaml:"themes" json:"themes"`
	Languages []Option `yaml:"languages" json:"languages"`
	Genders   []Option `yaml:"genders" json:"genders"`
}

// Default встроенный каталог.
func Default() *Catalog {
	return &Catalog{
		Animals: []Option{
			{ID: "lion", Name: "ライオン", Emoji: "🦁"},
			{ID: "rabbit", Name: "うさぎ", Emoji: "🐰"},
			{ID: "panda", Name: "パンダ", Emoji: "🐼"},
			{ID: "elephant", Name: "ぞう", Emoji: "🐘"},
			{ID: "giraffe", Name: "きりん", Emoji: "🦒"},
			{ID: "penguin", Name: "ペンギン", Emoji: "🐧"},
		},
		Themes: []Option{
			{ID: "adventure", Name: "わくわくする冒険", Emoji: "🗺️"},
			{ID: "dream", Name: "ふしぎな夢", Emoji: "🌙"},
			{ID: "gentle", Name: "やさしい気持ち", Emoji: "💖"},
			{ID: "silly", Name: "おかしな一日", Emoji: "🤪"},
		},
		Languages: []Option{
			{ID: "japanese", Name: "にほんごだけ"},
			{ID: "english", Name: "えいごだけ"},
			{ID: "bilingual", Name: "にほんごとえいご"},
		},
		Genders: []Option{
			{ID: "boy", Name: "おとこのこ"},
			{ID: "girl", Name: "おんなのこ"},
		},
	}
}

// Load читает каталог из файла (yaml/json/toml по расширению).
// Пустой путь или пустые разделы файла заменяются встроенными значениями.
func Load(path string) (*Catalog, error) {
	def := Default()
	if path == "" {
		return def, nil
	}

	var c Catalog
	if err := cleanenv.ReadConfig(path, &c); err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	if len(c.Animals) == 0 {
		c.Animals = def.Animals
	}
	if len(c.Themes) == 0 {
		c.Themes = def.Themes
	}
	if len(c.Languages) == 0 {
		c.Languages = def.Languages
	}
	if len(c.Genders) == 0 {
		c.Genders = def.Genders
	}
	return &c, nil
}

func lookup(opts []Option, id string) (Option, bool) {
	for _, o := range opts {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// Animal ищет животное по ID.
func (c *Catalog) Animal(id string) (Option, bool) { return lookup(c.Animals, id) }

// Theme ищет тему по ID.
func (c *Catalog) Theme(id string) (Option, bool) { return lookup(c.Themes, id) }

// AnimalNames переводит ID в японские имена. Неизвестные значения
// (например, свободный ввод) передаются как есть.
func (c *Catalog) AnimalNames(ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if a, ok := c.Animal(id); ok {
			names = append(names, a.Name)
			continue
		}
		names = append(names, id)
	}
	return names
}

// ThemeName имя темы или сам ID, если тема не из каталога.
func (c *Catalog) ThemeName(id string) string {
	if t, ok := c.Theme(id); ok {
		return t.Name
	}
	return id
}
