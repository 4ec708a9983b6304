package annotation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Segment
	}{
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "plain only",
			input: "むかしむかし、あるところに",
			want:  []Segment{Plain("むかしむかし、あるところに")},
		},
		{
			name:  "single annotation",
			input: "東京(とうきょう)",
			want:  []Segment{Annotated("東京", "とうきょう")},
		},
		{
			name:  "annotations with text around",
			input: "きょうは森(もり)へ行(い)きました。",
			want: []Segment{
				Plain("きょうは"),
				Annotated("森", "もり"),
				Plain("へ"),
				Annotated("行", "い"),
				Plain("きました。"),
			},
		},
		{
			name:  "adjacent annotations",
			input: "大(おお)森(もり)",
			want:  []Segment{Annotated("大", "おお"), Annotated("森", "もり")},
		},
		{
			name:  "unterminated annotation stays plain",
			input: "東京(とうきょう",
			want:  []Segment{Plain("東京(とうきょう")},
		},
		{
			name:  "parenthesis without base stays plain",
			input: "ねこ(cat)が",
			want:  []Segment{Plain("ねこ(cat)が")},
		},
		{
			name:  "empty reading is annotated with empty gloss",
			input: "空()",
			want:  []Segment{Annotated("空", "")},
		},
		{
			name:  "iteration mark belongs to base",
			input: "人々(ひとびと)",
			want:  []Segment{Annotated("人々", "ひとびと")},
		},
		{
			name:  "base is the run right before the parenthesis",
			input: "ぼくの友達(ともだち)",
			want:  []Segment{Plain("ぼくの"), Annotated("友達", "ともだち")},
		},
		{
			name:  "annotation followed by text",
			input: "東京(とうきょう)に行く",
			want:  []Segment{Annotated("東京", "とうきょう"), Plain("に行く")},
		},
		{
			name:  "unterminated single kanji",
			input: "底(abc",
			want:  []Segment{Plain("底(abc")},
		},
		{
			name:  "english text passes through",
			input: "Hello (world)",
			want:  []Segment{Plain("Hello (world)")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.input))
		})
	}
}

func TestParse_NoAdjacentPlainSegments(t *testing.T) {
	inputs := []string{
		"あ(い)う",
		"森(もり)(はやし)",
		"((()))",
		"山(やま)と川(かわ)と海(うみ)",
	}
	for _, in := range inputs {
		segs := Parse(in)
		for i := 1; i < len(segs); i++ {
			assert.False(t, segs[i-1].Kind == KindPlain && segs[i].Kind == KindPlain, "input %q", in)
		}
	}
}

// reconstruct возвращает разметку обратно: после каждой базы снова ставится (reading).
func reconstruct(segs []Segment) string {
	var b strings.Builder
	for _, seg := range segs {
		b.WriteString(seg.Text)
		if seg.Kind == KindAnnotated {
			b.WriteString("(" + seg.Reading + ")")
		}
	}
	return b.String()
}

func TestParse_PreservesBaseText(t *testing.T) {
	in := "むかし、山(やま)に大(おお)きな木(き)がありました。"
	assert.Equal(t, "むかし、山に大きな木がありました。", Strip(in))
	assert.Equal(t, in, reconstruct(Parse(in)))
}

func FuzzParse(f *testing.F) {
	for _, seed := range []string{
		"",
		"東京(とうきょう)に行く",
		"底(abc",
		"人々(ひとびと)と空()",
		"ねこ(cat)が森(もり)(はやし)",
		"((()))",
		"Hello (world)",
		"\xff森(\xfe)",
	} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, in string) {
		segs := Parse(in)
		if in == "" {
			assert.Empty(t, segs)
			return
		}
		assert.Equal(t, in, reconstruct(segs))
		for i, seg := range segs {
			if seg.Kind == KindPlain {
				assert.NotEmpty(t, seg.Text, "empty plain segment for %q", in)
			} else {
				assert.NotEmpty(t, seg.Text, "annotated segment without base for %q", in)
				assert.NotContains(t, seg.Reading, ")")
			}
			if i > 0 {
				assert.False(t, segs[i-1].Kind == KindPlain && seg.Kind == KindPlain, "adjacent plain segments for %q", in)
			}
		}
	})
}

func TestSegment_JSON(t *testing.T) {
	data, err := json.Marshal(Parse("森(もり)へ"))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"kind":"annotated","text":"森","reading":"もり"},{"kind":"plain","text":"へ"}]`, string(data))

	var back []Segment
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, Parse("森(もり)へ"), back)
}
