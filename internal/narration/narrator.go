// Package narration озвучивает страницы книги. Одновременно звучит не больше
// одной фразы: новая фраза сначала отменяет предыдущую и дожидается ее завершения.
package narration

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"picturebook-server/internal/domain"
	"picturebook-server/internal/render"
)

// DefaultRate медленнее обычного, чтобы детям было понятнее.
const DefaultRate = 0.85

// Utterance одна фраза для синтезатора.
type Utterance struct {
	Text  string
	Lang  language.Tag
	Voice Voice // пустое имя означает голос по умолчанию
	Rate  float64
}

// Synthesizer источник голосов и речи. Speak блокируется до конца фразы
// или отмены контекста.
type Synthesizer interface {
	Voices(ctx context.Context) ([]Voice, error)
	Speak(ctx context.Context, u Utterance) error
}

// Narrator следит, чтобы звучала только одна фраза.
type Narrator struct {
	synth  Synthesizer
	rate   float64
	logger *zap.Logger

	mu           sync.Mutex
	muted        bool
	cancel       context.CancelFunc
	done         chan struct{}
	voices       map[language.Tag]Voice
	voicesLoaded bool
}

// NewNarrator создает диктора. rate <= 0 заменяется на DefaultRate.
func NewNarrator(synth Synthesizer, rate float64, logger *zap.Logger) *Narrator {
	if rate <= 0 {
		rate = DefaultRate
	}
	return &Narrator{
		synth:  synth,
		rate:   rate,
		logger: logger.Named("Narrator"),
		voices: make(map[language.Tag]Voice),
	}
}

// Speak отменяет текущую фразу, ждет ее завершения и запускает новую в фоне.
// Пустой текст и выключенный звук ничего не запускают.
func (n *Narrator) Speak(ctx context.Context, text string, lang language.Tag) {
	text = strings.TrimSpace(text)

	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopLocked()
	if n.muted || text == "" {
		return
	}

	u := Utterance{
		Text:  text,
		Lang:  lang,
		Voice: n.voiceLocked(ctx, lang),
		Rate:  n.rate,
	}

	speakCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	n.cancel = cancel
	n.done = done

	go func() {
		defer close(done)
		defer cancel()
		if err := n.synth.Speak(speakCtx, u); err != nil && !errors.Is(err, context.Canceled) {
			n.logger.Warn("Narration failed", zap.String("lang", lang.String()), zap.Error(err))
		}
	}()
}

// SpeakPage читает слой страницы без чтений фуриганы.
func (n *Narrator) SpeakPage(ctx context.Context, page domain.Page, lang domain.Language) {
	n.Speak(ctx, render.NarrationText(page, lang), TagFor(lang))
}

// Cancel останавливает текущую фразу и ждет ее завершения.
func (n *Narrator) Cancel() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopLocked()
}

// Wait ждет окончания текущей фразы.
func (n *Narrator) Wait() {
	n.mu.Lock()
	done := n.done
	n.mu.Unlock()
	if done != nil {
		<-done
	}
}

// ToggleMute переключает звук. Выключение звука обрывает текущую фразу.
// Возвращает новое состояние.
func (n *Narrator) ToggleMute() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.muted = !n.muted
	if n.muted {
		n.stopLocked()
	}
	return n.muted
}

// IsMuted выключен ли звук.
func (n *Narrator) IsMuted() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.muted
}

// IsSpeaking звучит ли сейчас фраза.
func (n *Narrator) IsSpeaking() bool {
	n.mu.Lock()
	done := n.done
	n.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

func (n *Narrator) stopLocked() {
	if n.cancel == nil {
		return
	}
	n.cancel()
	<-n.done
	n.cancel = nil
	n.done = nil
}

// voiceLocked выбирает голос один раз на язык. Ошибка списка голосов не мешает речи.
func (n *Narrator) voiceLocked(ctx context.Context, lang language.Tag) Voice {
	if v, ok := n.voices[lang]; ok {
		return v
	}
	if n.voicesLoaded {
		return Voice{}
	}
	available, err := n.synth.Voices(ctx)
	if err != nil {
		n.logger.Debug("Voice list unavailable, using default voice", zap.Error(err))
		n.voicesLoaded = true
		return Voice{}
	}
	for _, tag := range []language.Tag{language.Japanese, language.AmericanEnglish} {
		if v, ok := SelectVoice(available, tag); ok {
			n.voices[tag] = v
		}
	}
	n.voicesLoaded = true
	if v, ok := n.voices[lang]; ok {
		return v
	}
	return Voice{}
}
