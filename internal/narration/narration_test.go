package narration

import (
	"context"
	"errors"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"picturebook-server/internal/domain"
)

// fakeSynth блокирует Speak до отмены или release и считает одновременные фразы.
type fakeSynth struct {
	mu        sync.Mutex
	voices    []Voice
	voicesErr error
	spoken    []Utterance
	active    int
	maxActive int
	started   chan struct{}
	release   chan struct{}
}

func newFakeSynth() *fakeSynth {
	return &fakeSynth{started: make(chan struct{}, 16), release: make(chan struct{})}
}

func (f *fakeSynth) Voices(context.Context) ([]Voice, error) {
	return f.voices, f.voicesErr
}

func (f *fakeSynth) Speak(ctx context.Context, u Utterance) error {
	f.mu.Lock()
	f.spoken = append(f.spoken, u)
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	f.started <- struct{}{}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-f.release:
		return nil
	}
}

func (f *fakeSynth) utterances() []Utterance {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Utterance(nil), f.spoken...)
}

func TestNarrator_SingleUtterance(t *testing.T) {
	synth := newFakeSynth()
	n := NewNarrator(synth, 0, zap.NewNop())
	ctx := context.Background()

	n.Speak(ctx, "いちばん", language.Japanese)
	<-synth.started
	assert.True(t, n.IsSpeaking())

	n.Speak(ctx, "second", language.AmericanEnglish)
	<-synth.started
	n.Speak(ctx, "さんばん", language.Japanese)
	<-synth.started

	synth.mu.Lock()
	assert.Equal(t, 1, synth.maxActive)
	synth.mu.Unlock()

	close(synth.release)
	n.Wait()
	assert.False(t, n.IsSpeaking())

	spoken := synth.utterances()
	require.Len(t, spoken, 3)
	assert.Equal(t, "さんばん", spoken[2].Text)
	assert.InDelta(t, DefaultRate, spoken[0].Rate, 1e-9)
}

func TestNarrator_CancelAndMute(t *testing.T) {
	synth := newFakeSynth()
	n := NewNarrator(synth, 1, zap.NewNop())
	ctx := context.Background()

	n.Speak(ctx, "hello", language.AmericanEnglish)
	<-synth.started
	n.Cancel()
	assert.False(t, n.IsSpeaking())

	n.Speak(ctx, "again", language.AmericanEnglish)
	<-synth.started
	assert.True(t, n.ToggleMute())
	assert.False(t, n.IsSpeaking(), "muting stops the current utterance")

	n.Speak(ctx, "while muted", language.AmericanEnglish)
	assert.False(t, n.IsSpeaking())
	assert.Len(t, synth.utterances(), 2)

	assert.False(t, n.ToggleMute())
	assert.False(t, n.IsMuted())
}

func TestNarrator_EmptyTextIsIgnored(t *testing.T) {
	synth := newFakeSynth()
	n := NewNarrator(synth, 0, zap.NewNop())
	n.Speak(context.Background(), "   ", language.Japanese)
	assert.False(t, n.IsSpeaking())
	assert.Empty(t, synth.utterances())
}

func TestNarrator_SpeakPageStripsReadings(t *testing.T) {
	synth := newFakeSynth()
	synth.voices = []Voice{
		{Name: "Kyoko", Lang: "ja-JP"},
		{Name: "Samantha", Lang: "en-US"},
	}
	close(synth.release)
	n := NewNarrator(synth, 0, zap.NewNop())
	page := domain.Page{NativeText: "森(もり)で 遊(あそ)ぶ", ForeignText: "Play in the forest"}

	n.SpeakPage(context.Background(), page, domain.LanguageJapanese)
	n.Wait()
	n.SpeakPage(context.Background(), page, domain.LanguageEnglish)
	n.Wait()

	spoken := synth.utterances()
	require.Len(t, spoken, 2)
	assert.Equal(t, "森で 遊ぶ", spoken[0].Text)
	assert.Equal(t, "Kyoko", spoken[0].Voice.Name)
	assert.Equal(t, language.Japanese, spoken[0].Lang)
	assert.Equal(t, "Play in the forest", spoken[1].Text)
	assert.Equal(t, "Samantha", spoken[1].Voice.Name)
}

func TestNarrator_VoiceListFailureUsesDefault(t *testing.T) {
	synth := newFakeSynth()
	synth.voicesErr = errors.New("no voices")
	close(synth.release)
	n := NewNarrator(synth, 0, zap.NewNop())

	n.Speak(context.Background(), "hello", language.AmericanEnglish)
	n.Wait()
	spoken := synth.utterances()
	require.Len(t, spoken, 1)
	assert.Empty(t, spoken[0].Voice.Name)
}

func TestSelectVoice(t *testing.T) {
	voices := []Voice{
		{Name: "Alex", Lang: "en-GB"},
		{Name: "Fred", Lang: "en-US", Default: true},
		{Name: "Otoya", Lang: "ja-JP"},
		{Name: "Kyoko", Lang: "ja_JP"},
		{Name: "Microsoft Zira Desktop", Lang: "en-US"},
		{Name: "Thomas", Lang: "fr-FR"},
	}

	tests := []struct {
		name   string
		voices []Voice
		tag    language.Tag
		want   string
		found  bool
	}{
		{name: "japanese priority", voices: voices, tag: language.Japanese, want: "Kyoko", found: true},
		{name: "english priority", voices: voices, tag: language.AmericanEnglish, want: "Microsoft Zira Desktop", found: true},
		{name: "english default en-US", voices: voices[:3], tag: language.English, want: "Fred", found: true},
		{name: "first available", voices: []Voice{{Name: "Otoya", Lang: "ja-JP"}}, tag: language.Japanese, want: "Otoya", found: true},
		{name: "none for language", voices: voices[5:], tag: language.Japanese, found: false},
		{name: "unparseable lang skipped", voices: []Voice{{Name: "x", Lang: "!!"}}, tag: language.English, found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectVoice(tt.voices, tt.tag)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestTagFor(t *testing.T) {
	assert.Equal(t, language.Japanese, TagFor(domain.LanguageJapanese))
	assert.Equal(t, language.Japanese, TagFor(domain.LanguageBilingual))
	assert.Equal(t, language.AmericanEnglish, TagFor(domain.LanguageEnglish))
}

func TestSpeakArgs(t *testing.T) {
	u := Utterance{Text: "こんにちは", Lang: language.Japanese, Voice: Voice{Name: "Kyoko", Lang: "ja-JP"}, Rate: DefaultRate}
	assert.Equal(t, []string{"-v", "Kyoko", "-r", "149", "こんにちは"}, speakArgs("say", u))
	assert.Equal(t, []string{"-v", "ja-JP", "-s", "149", "こんにちは"}, speakArgs("espeak", u))

	u.Voice = Voice{}
	u.Rate = 0
	assert.Equal(t, []string{"-r", "175", "こんにちは"}, speakArgs("say", u))
	assert.Equal(t, []string{"-v", "ja", "-s", "175", "こんにちは"}, speakArgs("espeak", u))
}

func TestParseVoices(t *testing.T) {
	say := []byte("Kyoko               ja_JP    # こんにちは！\nGood News           en_US    # Hello!\n\n")
	assert.Equal(t, []Voice{
		{Name: "Kyoko", Lang: "ja-JP"},
		{Name: "Good News", Lang: "en-US"},
	}, parseSayVoices(say))

	espeak := []byte("Pty Language       Age/Gender VoiceName          File                 Other Languages\n" +
		" 5  ja              --/M      Japanese           jpx/ja\n" +
		" 2  en-us           --/M      English_(America)  gmw/en-US            (en 3)\n")
	assert.Equal(t, []Voice{
		{Name: "Japanese", Lang: "ja"},
		{Name: "English_(America)", Lang: "en-us"},
	}, parseEspeakVoices(espeak))
}

func TestCommandSynthesizer_SpeakCancel(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}
	s := &CommandSynthesizer{
		path:   "sleep",
		flavor: "say",
		command: func(ctx context.Context, _ string, _ ...string) *exec.Cmd {
			return exec.CommandContext(ctx, "sleep", "10")
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Speak(ctx, Utterance{Text: "x"}) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("speech command was not killed")
	}
}

func TestNewCommandSynthesizer_Unknown(t *testing.T) {
	_, err := NewCommandSynthesizer("definitely-not-a-tts-binary")
	assert.ErrorIs(t, err, ErrNoSynthesizer)
}
