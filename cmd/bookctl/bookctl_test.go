package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"picturebook-server/internal/catalog"
	"picturebook-server/internal/domain"
	"picturebook-server/internal/handler"
	"picturebook-server/internal/mocks"
	"picturebook-server/internal/narration"
	"picturebook-server/internal/shelf"
)

type cli struct {
	t         *testing.T
	serverURL string
	shelfFile string
}

func newCLI(t *testing.T, gen handler.BookGenerator) *cli {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler.NewAPIHandler(gen, catalog.Default(), zap.NewNop()).RegisterRoutes(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	t.Setenv("BOOKCTL_SHELF_BACKEND", "file")
	t.Setenv("BOOKCTL_AUTO_SHELVE", "true")
	return &cli{
		t:         t,
		serverURL: srv.URL,
		shelfFile: filepath.Join(t.TempDir(), "bookshelf.json"),
	}
}

func (c *cli) run(args ...string) (string, string, error) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{
		"--env-file", "",
		"--api-url", c.serverURL,
		"--shelf-file", c.shelfFile,
		"--log-level", "error",
	}, args...))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func (c *cli) books() []domain.Book {
	c.t.Helper()
	books, err := shelf.NewFileStore(c.shelfFile, zap.NewNop()).Load(context.Background())
	require.NoError(c.t, err)
	return books
}

func storyBook() domain.GeneratedBook {
	return domain.GeneratedBook{
		Title: "Haruto and the Lion",
		Pages: []domain.Page{
			{NativeText: "森(もり)へ いこう", ForeignText: "Let's go to the forest", ImageReference: "https://img.example/1.png"},
			{NativeText: "空(そら)を とぶ", ForeignText: "Flying in the sky", ImageReference: "data:image/png;base64,AAAA"},
		},
	}
}

func TestCreateReadExportDelete(t *testing.T) {
	gen := mocks.NewMockBookGenerator(t)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(p domain.CreationParams) bool {
		return p.Name == "はると" && p.Gender == domain.GenderBoy && len(p.Animals) == 2
	})).Return(storyBook(), nil).Once()
	c := newCLI(t, gen)

	out, _, err := c.run("create", "--name", "はると", "--animal", "lion", "--animal", "rabbit", "--theme", "adventure")
	require.NoError(t, err)
	assert.Contains(t, out, "=== Haruto and the Lion ===")
	assert.Contains(t, out, "森《もり》へ いこう\nLet's go to the forest")
	assert.Contains(t, out, "[image: embedded image/png")

	books := c.books()
	require.Len(t, books, 1)
	id := books[0].ID
	assert.Contains(t, out, "book id: "+id)

	out, _, err = c.run("shelf", "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "bilingual")

	out, _, err = c.run("read", id, "--page", "2", "--mode", "foreign")
	require.NoError(t, err)
	assert.Contains(t, out, "--- 2/2 ---")
	assert.Contains(t, out, "Flying in the sky")
	assert.NotContains(t, out, "空")

	_, _, err = c.run("read", id, "--page", "3")
	assert.Error(t, err)

	outDir := t.TempDir()
	out, _, err = c.run("export", id, "--out", outDir)
	require.NoError(t, err)
	path := strings.TrimSpace(out)
	assert.Equal(t, filepath.Join(outDir, "haruto-and-the-lion.html"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Find("section.page").Length())
	assert.Equal(t, "もり", doc.Find("ruby rt").First().Text())

	out, stderr, err := c.run("shelf", "delete", id, "missing-id")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted "+id)
	assert.Contains(t, stderr, "not on the bookshelf: missing-id")
	assert.Empty(t, c.books())

	_, _, err = c.run("read", id)
	assert.ErrorIs(t, err, domain.ErrBookNotFound)
}

func TestCreate_NoShelve(t *testing.T) {
	gen := mocks.NewMockBookGenerator(t)
	gen.On("Generate", mock.Anything, mock.Anything).Return(storyBook(), nil).Once()
	c := newCLI(t, gen)

	_, _, err := c.run("create", "-n", "ゆい", "-g", "girl", "-a", "panda", "--no-shelve")
	require.NoError(t, err)
	assert.Empty(t, c.books())
}

func TestCreate_FailuresShowChildFriendlyMessage(t *testing.T) {
	gen := mocks.NewMockBookGenerator(t)
	gen.On("Generate", mock.Anything, mock.Anything).Return(domain.GeneratedBook{}, domain.ErrUpstreamFailed).Once()
	c := newCLI(t, gen)

	_, stderr, err := c.run("create", "--name", "はると", "--animal", "lion")
	require.Error(t, err)
	assert.Contains(t, stderr, "えほんを つくれませんでした")
	assert.Empty(t, c.books())

	_, stderr, err = c.run("create", "--animal", "lion")
	assert.ErrorIs(t, err, domain.ErrInvalidParams)
	assert.Contains(t, stderr, "なまえを いれて")
}

func TestCreate_UnreachableShelfStillMakesBook(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis retry test in short mode")
	}
	gen := mocks.NewMockBookGenerator(t)
	gen.On("Generate", mock.Anything, mock.Anything).Return(storyBook(), nil).Once()
	c := newCLI(t, gen)
	t.Setenv("BOOKCTL_REDIS_ADDR", "127.0.0.1:1")

	out, _, err := c.run("--shelf", "redis", "create", "--name", "はると", "--animal", "lion")
	require.NoError(t, err)
	assert.Contains(t, out, "=== Haruto and the Lion ===")
	assert.Contains(t, out, "book id: ")

	out, _, err = c.run("--shelf", "redis", "shelf", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "からっぽ")

	_, _, err = c.run("--shelf", "redis", "shelf", "migrate")
	assert.ErrorContains(t, err, "postgres")
}

func TestCatalogCmd(t *testing.T) {
	c := newCLI(t, mocks.NewMockBookGenerator(t))
	out, _, err := c.run("catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "animals (--animal)")
	assert.Contains(t, out, "lion")
	assert.Contains(t, out, "ライオン🦁")
}

func TestShelfMigrate_RequiresPostgres(t *testing.T) {
	c := newCLI(t, mocks.NewMockBookGenerator(t))
	_, _, err := c.run("shelf", "migrate")
	assert.ErrorContains(t, err, "postgres")
}

func TestShelfList_Empty(t *testing.T) {
	c := newCLI(t, mocks.NewMockBookGenerator(t))
	out, _, err := c.run("shelf", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "からっぽ")
}

type recordingSynth struct {
	mu     sync.Mutex
	spoken []string
}

func (s *recordingSynth) Voices(context.Context) ([]narration.Voice, error) { return nil, nil }

func (s *recordingSynth) Speak(_ context.Context, u narration.Utterance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spoken = append(s.spoken, u.Text)
	return nil
}

func (s *recordingSynth) texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.spoken...)
}

func TestNarrateBook(t *testing.T) {
	book := domain.Book{ID: "b", Title: "t", Language: domain.LanguageBilingual, Pages: storyBook().Pages}

	t.Run("reads every page when input ends", func(t *testing.T) {
		synth := &recordingSynth{}
		var out bytes.Buffer
		narrateBook(context.Background(), narration.NewNarrator(synth, 0, zap.NewNop()), book, []int{0, 1}, strings.NewReader(""), &out)
		assert.Equal(t, []string{"森へ いこう", "Let's go to the forest", "空を とぶ", "Flying in the sky"}, synth.texts())
		assert.Contains(t, out.String(), "♪ 1/2")
	})

	t.Run("mute silences the remaining pages", func(t *testing.T) {
		synth := &recordingSynth{}
		n := narration.NewNarrator(synth, 0, zap.NewNop())
		var out bytes.Buffer
		narrateBook(context.Background(), n, book, []int{0, 1}, strings.NewReader("m\n"), &out)
		assert.True(t, n.IsMuted())
		assert.Contains(t, out.String(), "muted")
		assert.NotContains(t, synth.texts(), "Flying in the sky")
	})

	t.Run("unmute reads again", func(t *testing.T) {
		synth := &recordingSynth{}
		n := narration.NewNarrator(synth, 0, zap.NewNop())
		var out bytes.Buffer
		narrateBook(context.Background(), n, book, []int{0, 1}, strings.NewReader("m\nm\n"), &out)
		assert.False(t, n.IsMuted())
		assert.Contains(t, out.String(), "sound on")
		assert.Contains(t, synth.texts(), "Flying in the sky")
	})

	t.Run("quit stops before the next page", func(t *testing.T) {
		synth := &recordingSynth{}
		var out bytes.Buffer
		narrateBook(context.Background(), narration.NewNarrator(synth, 0, zap.NewNop()), book, []int{0, 1}, strings.NewReader("q\nn\n"), &out)
		assert.NotContains(t, synth.texts(), "空を とぶ")
	})
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "", describeImage(""))
	assert.Equal(t, "[image: https://x/y.png]", describeImage("https://x/y.png"))
	assert.Equal(t, "[image: embedded image/jpeg, 27 bytes]", describeImage("data:image/jpeg;base64,AAAA"))

	assert.Equal(t, "book-1.html", exportFileName(domain.Book{ID: "book-1"}))
	assert.Equal(t, "moon-trip.html", exportFileName(domain.Book{ID: "x", Title: "Moon Trip"}))

	assert.Equal(t, []domain.Language{domain.LanguageJapanese, domain.LanguageEnglish}, narrationLayers(domain.LanguageBilingual))
	assert.Equal(t, []domain.Language{domain.LanguageEnglish}, narrationLayers(domain.LanguageEnglish))

	pages, err := pageSelection(domain.Book{Pages: make([]domain.Page, 3)}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, pages)
	_, err = pageSelection(domain.Book{Pages: make([]domain.Page, 3)}, -1)
	assert.Error(t, err)
}
