package studio

import (
	"context"
	"errors"
	stdimage "image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dmorgan81/dallestudio/internal/image"
	"github.com/dmorgan81/dallestudio/internal/prompt"
	"github.com/dmorgan81/dallestudio/internal/session"
	"github.com/dmorgan81/dallestudio/internal/store"
	"github.com/dmorgan81/dallestudio/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	reqs    []worker.Request
	fail    string
	revised string
}

func (f *fakeRunner) Run(_ context.Context, req worker.Request) worker.Result {
	f.reqs = append(f.reqs, req)
	if f.fail != "" {
		return worker.Failed{Message: f.fail}
	}
	return worker.Succeeded{Entry: session.Entry{
		ID:             "0123456789abcdef",
		FullPrompt:     req.FullPrompt,
		OriginalPrompt: req.OriginalPrompt,
		RevisedPrompt:  f.revised,
		Size:           string(req.Size),
		Quality:        string(req.Quality),
		Thumbnail:      stdimage.NewRGBA(stdimage.Rect(0, 0, 4, 4)),
		Raw:            []byte("raw:" + req.FullPrompt),
	}}
}

type fakeSaver struct {
	params []store.UploadParams
	err    error
}

func (f *fakeSaver) Upload(_ context.Context, p store.UploadParams) error {
	f.params = append(f.params, p)
	return f.err
}

func newTestModel(runner Runner, saver store.Uploader) *Model {
	return NewModel(context.Background(), runner, prompt.StylesOf("pixel art", "watercolor"), saver)
}

func fill(m *Model, apiKey, style, userPrompt string) {
	m.apiKey.SetValue(apiKey)
	m.style.SetValue(style)
	m.prompt.SetValue(userPrompt)
}

func press(m *Model, k tea.KeyMsg) tea.Cmd {
	_, cmd := m.Update(k)
	return cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// deliver runs cmd once and feeds worker and save results back into m.
func deliver(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	var msgs []tea.Msg
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			if c != nil {
				msgs = append(msgs, c())
			}
		}
	default:
		msgs = append(msgs, msg)
	}
	for _, msg := range msgs {
		switch msg.(type) {
		case worker.Succeeded, worker.Failed, savedMsg:
			m.Update(msg)
		}
	}
}

func generate(t *testing.T, m *Model, style, userPrompt string) {
	t.Helper()
	fill(m, "sk-test", style, userPrompt)
	deliver(t, m, m.submitGeneration())
}

func TestSubmitGeneration(t *testing.T) {
	t.Run("style prefix example", func(t *testing.T) {
		runner := &fakeRunner{}
		m := newTestModel(runner, &fakeSaver{})
		fill(m, "sk-test", "pixel art", "a red fox")

		deliver(t, m, press(m, tea.KeyMsg{Type: tea.KeyCtrlG}))

		require.Len(t, runner.reqs, 1)
		req := runner.reqs[0]
		assert.Equal(t, "sk-test", req.APIKey)
		assert.Equal(t, "pixel art a red fox", req.FullPrompt)
		assert.Equal(t, "a red fox", req.OriginalPrompt)
		assert.Equal(t, image.SizeSquare, req.Size)
		assert.Equal(t, image.QualityStandard, req.Quality)

		assert.Equal(t, 1, m.history.Len())
		assert.Equal(t, []string{"[0] a red fox..."}, m.labels)
		require.NotNil(t, m.current)
		assert.Equal(t, "pixel art a red fox", m.current.FullPrompt)
		assert.Contains(t, m.detail.View(), "pixel art a red fox")
		assert.False(t, m.generating)
	})

	t.Run("trims prompt and key", func(t *testing.T) {
		runner := &fakeRunner{}
		m := newTestModel(runner, &fakeSaver{})
		fill(m, "  sk-test ", "", "  a red fox \n")
		deliver(t, m, m.submitGeneration())

		require.Len(t, runner.reqs, 1)
		assert.Equal(t, "sk-test", runner.reqs[0].APIKey)
		assert.Equal(t, "a red fox", runner.reqs[0].FullPrompt)
	})

	for _, tt := range []struct{ name, key, prompt string }{
		{"empty key", "", "a red fox"},
		{"blank key", "   ", "a red fox"},
		{"empty prompt", "sk-test", ""},
		{"blank prompt", "sk-test", " \n "},
	} {
		t.Run("silent no-op on "+tt.name, func(t *testing.T) {
			runner := &fakeRunner{}
			m := newTestModel(runner, &fakeSaver{})
			fill(m, tt.key, "pixel art", tt.prompt)

			assert.Nil(t, press(m, tea.KeyMsg{Type: tea.KeyCtrlG}))
			assert.Empty(t, runner.reqs)
			assert.Equal(t, 0, m.history.Len())
			assert.False(t, m.generating)
			assert.Equal(t, modalNone, m.modal)
		})
	}

	t.Run("at most one generation in flight", func(t *testing.T) {
		runner := &fakeRunner{}
		m := newTestModel(runner, &fakeSaver{})
		fill(m, "sk-test", "", "a red fox")

		first := m.submitGeneration()
		require.NotNil(t, first)
		assert.True(t, m.generating)
		assert.Nil(t, m.submitGeneration())

		deliver(t, m, first)
		assert.False(t, m.generating)
		assert.NotNil(t, m.submitGeneration())
	})
}

func TestGenerationSucceeded(t *testing.T) {
	m := newTestModel(&fakeRunner{}, &fakeSaver{})

	fifty := strings.Repeat("0123456789", 5)
	generate(t, m, "watercolor", "a lighthouse at dusk")
	generate(t, m, "watercolor", fifty)

	assert.Equal(t, 2, m.history.Len())
	assert.Equal(t, []string{"[1] " + fifty[:35] + "...", "[0] a lighthouse at dusk..."}, m.labels)

	newest, ok := m.history.At(0)
	require.True(t, ok)
	assert.Equal(t, "watercolor "+fifty, newest.FullPrompt)
	assert.Equal(t, 0, m.cursor)
	assert.Equal(t, newest.FullPrompt, m.current.FullPrompt)
}

func TestRevisedPromptGoesToStatus(t *testing.T) {
	runner := &fakeRunner{revised: "A watercolor painting of a lighthouse\nstanding at dusk"}
	m := newTestModel(runner, &fakeSaver{})
	generate(t, m, "watercolor", "a lighthouse")

	assert.Contains(t, m.detail.View(), "watercolor a lighthouse")
	assert.NotContains(t, m.detail.View(), "painting")
	assert.Equal(t, "Revised: A watercolor painting of a lighthouse standing at dusk", m.status)

	runner.revised = "watercolor a red fox"
	generate(t, m, "watercolor", "a red fox")
	assert.Empty(t, m.status, "an unchanged prompt is not repeated")

	m.selectHistoryEntry(1)
	assert.Contains(t, m.status, "painting")
}

func TestGenerationFailed(t *testing.T) {
	runner := &fakeRunner{fail: "generate image: network timeout"}
	m := newTestModel(runner, &fakeSaver{})
	generate(t, m, "", "a red fox")

	assert.Equal(t, 0, m.history.Len())
	assert.Empty(t, m.labels)
	assert.False(t, m.generating)
	assert.Equal(t, modalError, m.modal)
	assert.Equal(t, "generate image: network timeout", m.errMsg)

	m.resize(120, 40)
	assert.Contains(t, m.View(), "network timeout")

	// the modal blocks everything but dismissal
	assert.Nil(t, press(m, tea.KeyMsg{Type: tea.KeyCtrlG}))
	assert.Len(t, runner.reqs, 1)

	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, modalNone, m.modal)

	runner.fail = ""
	generate(t, m, "", "a red fox")
	assert.Equal(t, 1, m.history.Len())
}

func TestStrayResultIsIgnored(t *testing.T) {
	m := newTestModel(&fakeRunner{}, &fakeSaver{})
	m.Update(worker.Succeeded{Entry: session.Entry{OriginalPrompt: "ghost"}})
	m.Update(worker.Failed{Message: "ghost"})

	assert.Equal(t, 0, m.history.Len())
	assert.Equal(t, modalNone, m.modal)
}

func TestSelectHistoryEntry(t *testing.T) {
	m := newTestModel(&fakeRunner{}, &fakeSaver{})
	generate(t, m, "", "first")
	generate(t, m, "", "second")

	m.selectHistoryEntry(1)
	assert.Equal(t, 1, m.cursor)
	assert.Equal(t, "first", m.current.FullPrompt)

	m.selectHistoryEntry(5)
	m.selectHistoryEntry(-1)
	assert.Equal(t, 1, m.cursor)
	assert.Equal(t, "first", m.current.FullPrompt)

	m.setFocus(focusHistory)
	press(m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.cursor)
	assert.Equal(t, "second", m.current.FullPrompt)
	press(m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.cursor)
	press(m, runes("j"))
	assert.Equal(t, "first", m.current.FullPrompt)
}

func TestCopySelectedPromptToInput(t *testing.T) {
	runner := &fakeRunner{}
	m := newTestModel(runner, &fakeSaver{})

	m.copySelectedPromptToInput()
	assert.Empty(t, m.prompt.Value(), "no-op without a displayed entry")

	generate(t, m, "pixel art", "a red fox")
	m.prompt.SetValue("something else")
	m.style.SetValue("watercolor")

	press(m, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, "pixel art a red fox", m.prompt.Value())
	assert.Empty(t, m.style.Value())

	deliver(t, m, m.submitGeneration())
	require.Len(t, runner.reqs, 2)
	assert.Equal(t, runner.reqs[0].FullPrompt, runner.reqs[1].FullPrompt)
}

func TestClearHistory(t *testing.T) {
	setup := func(t *testing.T) *Model {
		m := newTestModel(&fakeRunner{}, &fakeSaver{})
		generate(t, m, "", "a red fox")
		generate(t, m, "", "a blue fox")
		press(m, tea.KeyMsg{Type: tea.KeyCtrlX})
		require.Equal(t, modalConfirmClear, m.modal)
		return m
	}

	for _, k := range []tea.KeyMsg{runes("n"), {Type: tea.KeyEnter}, {Type: tea.KeyEsc}} {
		t.Run("declined with "+k.String(), func(t *testing.T) {
			m := setup(t)
			press(m, k)

			assert.Equal(t, modalNone, m.modal)
			assert.Equal(t, 2, m.history.Len())
			assert.Len(t, m.labels, 2)
			require.NotNil(t, m.current)
			assert.Equal(t, "a blue fox", m.current.FullPrompt)
		})
	}

	t.Run("other keys keep asking", func(t *testing.T) {
		m := setup(t)
		press(m, runes("x"))
		assert.Equal(t, modalConfirmClear, m.modal)
	})

	t.Run("confirmed", func(t *testing.T) {
		m := setup(t)
		press(m, runes("y"))

		assert.Equal(t, modalNone, m.modal)
		assert.Equal(t, 0, m.history.Len())
		assert.Empty(t, m.labels)
		assert.Nil(t, m.current)
		assert.Empty(t, strings.TrimSpace(m.detail.View()))
		assert.Equal(t, "History cleared", m.status)

		m.selectHistoryEntry(0)
		assert.Nil(t, m.current)
		assert.Nil(t, m.saveCurrentImage())
		assert.Equal(t, modalNone, m.modal)
	})
}

func TestSaveCurrentImage(t *testing.T) {
	t.Run("no-op without a displayed entry", func(t *testing.T) {
		saver := &fakeSaver{}
		m := newTestModel(&fakeRunner{}, saver)
		assert.Nil(t, press(m, tea.KeyMsg{Type: tea.KeyCtrlS}))
		assert.Equal(t, modalNone, m.modal)
	})

	t.Run("writes raw bytes with default extension", func(t *testing.T) {
		m := newTestModel(&fakeRunner{}, &store.FileUploader{})
		generate(t, m, "pixel art", "a red fox")

		press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
		require.Equal(t, modalSave, m.modal)
		assert.Equal(t, "01234567.png", m.path.Value())

		dest := filepath.Join(t.TempDir(), "fox")
		m.path.SetValue(dest)
		deliver(t, m, press(m, tea.KeyMsg{Type: tea.KeyEnter}))

		got, err := os.ReadFile(dest + ".png")
		require.NoError(t, err)
		assert.Equal(t, []byte("raw:pixel art a red fox"), got)
		assert.Equal(t, modalNone, m.modal)
		assert.Equal(t, "Saved "+dest+".png", m.status)
	})

	t.Run("saves the displayed entry, not the newest", func(t *testing.T) {
		saver := &fakeSaver{}
		m := newTestModel(&fakeRunner{}, saver)
		generate(t, m, "", "first")
		generate(t, m, "", "second")
		m.selectHistoryEntry(1)

		m.saveCurrentImage()
		m.path.SetValue("first.jpg")
		deliver(t, m, m.commitSave())

		require.Len(t, saver.params, 1)
		assert.Equal(t, "first.jpg", saver.params[0].Name)
		assert.Equal(t, []byte("raw:first"), saver.params[0].Data)
	})

	t.Run("cancel", func(t *testing.T) {
		saver := &fakeSaver{}
		m := newTestModel(&fakeRunner{}, saver)
		generate(t, m, "", "a red fox")

		m.saveCurrentImage()
		press(m, tea.KeyMsg{Type: tea.KeyEsc})
		assert.Equal(t, modalNone, m.modal)

		m.saveCurrentImage()
		m.path.SetValue("  ")
		assert.Nil(t, m.commitSave())
		assert.Empty(t, saver.params)
	})

	t.Run("failure is reported", func(t *testing.T) {
		saver := &fakeSaver{err: errors.New("permission denied")}
		m := newTestModel(&fakeRunner{}, saver)
		generate(t, m, "", "a red fox")

		m.saveCurrentImage()
		deliver(t, m, m.commitSave())
		assert.Equal(t, modalError, m.modal)
		assert.Contains(t, m.errMsg, "permission denied")
		assert.Equal(t, 1, m.history.Len())
	})
}

func TestCycleOptions(t *testing.T) {
	runner := &fakeRunner{}
	m := newTestModel(runner, &fakeSaver{})

	press(m, tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Equal(t, image.SizePortrait, m.size)
	press(m, tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Equal(t, image.SizeLandscape, m.size)
	press(m, tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Equal(t, image.SizeSquare, m.size)

	press(m, tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.Equal(t, image.QualityHD, m.quality)

	press(m, tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Equal(t, "pixel art", m.style.Value())
	press(m, tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Equal(t, "watercolor", m.style.Value())

	m.size = image.SizeLandscape
	generate(t, m, "watercolor", "a red fox")
	require.Len(t, runner.reqs, 1)
	assert.Equal(t, image.SizeLandscape, runner.reqs[0].Size)
	assert.Equal(t, image.QualityHD, runner.reqs[0].Quality)
}

func TestFocusCycle(t *testing.T) {
	m := newTestModel(&fakeRunner{}, &fakeSaver{})
	assert.Equal(t, focusKey, m.focus)

	press(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusStyle, m.focus)
	press(m, runes("noir"))
	assert.Equal(t, "noir", m.style.Value())

	press(m, tea.KeyMsg{Type: tea.KeyTab})
	press(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusHistory, m.focus)
	press(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusKey, m.focus)
	press(m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, focusHistory, m.focus)
}

func TestView(t *testing.T) {
	m := newTestModel(&fakeRunner{}, &fakeSaver{})
	assert.Equal(t, "Initializing...", m.View())

	m.Update(tea.WindowSizeMsg{Width: 140, Height: 45})
	generate(t, m, "pixel art", "a red fox")

	view := m.View()
	assert.Contains(t, view, "Session History")
	assert.Contains(t, view, "[0] a red fox...")
	assert.Contains(t, view, "pixel art a red fox")
	assert.Contains(t, view, "▀")

	press(m, tea.KeyMsg{Type: tea.KeyCtrlX})
	assert.Contains(t, m.View(), "Delete all generated images in this session?")
}

func TestQuit(t *testing.T) {
	m := newTestModel(&fakeRunner{}, &fakeSaver{})
	cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
