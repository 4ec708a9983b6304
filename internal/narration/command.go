package narration

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// ErrNoSynthesizer в системе не найдена программа синтеза речи.
var ErrNoSynthesizer = errors.New("no speech synthesizer found")

// Скорость речи по умолчанию у say и espeak, слов в минуту.
const baseWordsPerMinute = 175

// Поддерживаемые программы в порядке автоопределения.
var knownCommands = []string{"say", "espeak-ng", "espeak"}

// CommandSynthesizer говорит через системную программу (say на macOS, espeak на Linux).
type CommandSynthesizer struct {
	path    string
	flavor  string // say или espeak
	command func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewCommandSynthesizer находит программу. Пустое имя означает автоопределение.
func NewCommandSynthesizer(name string) (*CommandSynthesizer, error) {
	candidates := knownCommands
	if name != "" {
		candidates = []string{name}
	}
	for _, c := range candidates {
		path, err := exec.LookPath(c)
		if err != nil {
			continue
		}
		return &CommandSynthesizer{
			path:    path,
			flavor:  flavorOf(c),
			command: exec.CommandContext,
		}, nil
	}
	return nil, fmt.Errorf("%w: tried %s", ErrNoSynthesizer, strings.Join(candidates, ", "))
}

func flavorOf(name string) string {
	if strings.Contains(name, "espeak") {
		return "espeak"
	}
	return "say"
}

// Voices реализует Synthesizer.
func (s *CommandSynthesizer) Voices(ctx context.Context) ([]Voice, error) {
	var args []string
	if s.flavor == "espeak" {
		args = []string{"--voices"}
	} else {
		args = []string{"-v", "?"}
	}
	out, err := s.command(ctx, s.path, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("failed to list voices: %w", err)
	}
	if s.flavor == "espeak" {
		return parseEspeakVoices(out), nil
	}
	return parseSayVoices(out), nil
}

// Speak реализует Synthesizer. Отмена контекста убивает процесс.
func (s *CommandSynthesizer) Speak(ctx context.Context, u Utterance) error {
	cmd := s.command(ctx, s.path, speakArgs(s.flavor, u)...)
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("speech command failed: %w", err)
	}
	return nil
}

func speakArgs(flavor string, u Utterance) []string {
	rate := u.Rate
	if rate <= 0 {
		rate = 1
	}
	wpm := strconv.Itoa(int(math.Round(baseWordsPerMinute * rate)))

	var args []string
	if flavor == "espeak" {
		voice := u.Voice.Lang
		if voice == "" {
			base, _ := u.Lang.Base()
			voice = base.String()
		}
		args = append(args, "-v", voice, "-s", wpm)
	} else {
		if u.Voice.Name != "" {
			args = append(args, "-v", u.Voice.Name)
		}
		args = append(args, "-r", wpm)
	}
	return append(args, u.Text)
}

// parseSayVoices разбирает вывод `say -v ?`:
//
//	Kyoko               ja_JP    # こんにちは！
func parseSayVoices(out []byte) []Voice {
	var voices []Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		left, _, _ := strings.Cut(sc.Text(), "#")
		fields := strings.Fields(left)
		if len(fields) < 2 {
			continue
		}
		voices = append(voices, Voice{
			Name: strings.Join(fields[:len(fields)-1], " "),
			Lang: strings.ReplaceAll(fields[len(fields)-1], "_", "-"),
		})
	}
	return voices
}

// parseEspeakVoices разбирает вывод `espeak --voices`:
//
//	Pty Language       Age/Gender VoiceName          File                 Other Languages
//	 5  ja              --/M      Japanese           jpx/ja
func parseEspeakVoices(out []byte) []Voice {
	var voices []Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	first := true
	for sc.Scan() {
		if first {
			first = false
			continue
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 {
			continue
		}
		voices = append(voices, Voice{Name: fields[3], Lang: fields[1]})
	}
	return voices
}
