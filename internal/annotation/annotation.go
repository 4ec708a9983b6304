// Package annotation разбирает японский текст с фуриганой в виде base(reading).
package annotation

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind тип сегмента.
type Kind int

const (
	KindPlain Kind = iota
	KindAnnotated
)

func (k Kind) String() string {
	if k == KindAnnotated {
		return "annotated"
	}
	return "plain"
}

// MarshalText нужен для JSON-ответа /api/render.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText обратная операция для клиента.
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "plain":
		*k = KindPlain
	case "annotated":
		*k = KindAnnotated
	default:
		return fmt.Errorf("unknown segment kind %q", string(b))
	}
	return nil
}

// Segment кусок текста. Для KindPlain заполнен только Text,
// для KindAnnotated Text содержит базу (кандзи), Reading чтение.
type Segment struct {
	Kind    Kind   `json:"kind"`
	Text    string `json:"text"`
	Reading string `json:"reading,omitempty"`
}

// Plain создает простой сегмент.
func Plain(v string) Segment { return Segment{Kind: KindPlain, Text: v} }

// Annotated создает сегмент с чтением.
func Annotated(base, reading string) Segment {
	return Segment{Kind: KindAnnotated, Text: base, Reading: reading}
}

// База: непрерывная последовательность иероглифов CJK (U+4E00..U+9FAF) и знак повтора 々.
// Чтение: любые символы кроме ')', может быть пустым.
var rubyPattern = regexp.MustCompile(`([一-龯々]+)\(([^)]*)\)`)

// Parse разбивает строку на сегменты в исходном порядке.
// Некорректная разметка остается обычным текстом, пустая строка дает пустой результат.
func Parse(s string) []Segment {
	if s == "" {
		return nil
	}

	matches := rubyPattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return []Segment{Plain(s)}
	}

	segments := make([]Segment, 0, len(matches)*2+1)
	last := 0
	for _, m := range matches {
		if m[0] > last {
			segments = append(segments, Plain(s[last:m[0]]))
		}
		segments = append(segments, Annotated(s[m[2]:m[3]], s[m[4]:m[5]]))
		last = m[1]
	}
	if last < len(s) {
		segments = append(segments, Plain(s[last:]))
	}
	return segments
}

// PlainString склеивает сегменты без чтений.
func PlainString(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(seg.Text)
	}
	return b.String()
}

// Strip убирает разметку фуриганы, оставляя только базовый текст.
func Strip(s string) string {
	return PlainString(Parse(s))
}
