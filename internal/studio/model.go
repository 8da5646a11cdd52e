package studio

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dmorgan81/dallestudio/internal/image"
	"github.com/dmorgan81/dallestudio/internal/log"
	"github.com/dmorgan81/dallestudio/internal/prompt"
	"github.com/dmorgan81/dallestudio/internal/session"
	"github.com/dmorgan81/dallestudio/internal/store"
	"github.com/dmorgan81/dallestudio/internal/worker"
	"github.com/samber/lo"
	"golang.org/x/sync/semaphore"
)

type focus int

const (
	focusKey focus = iota
	focusStyle
	focusPrompt
	focusHistory
	focusCount
)

type modal int

const (
	modalNone modal = iota
	modalError
	modalConfirmClear
	modalSave
)

// Runner performs one generation. It is called off the event loop.
type Runner interface {
	Run(context.Context, worker.Request) worker.Result
}

type savedMsg struct {
	name string
	err  error
}

// Model owns every piece of session state. It is only touched from the
// bubbletea event loop; the worker reports back through messages.
type Model struct {
	ctx    context.Context
	runner Runner
	styles *prompt.Styles
	saver  store.Uploader
	slot   *semaphore.Weighted

	keys    keyMap
	apiKey  textinput.Model
	style   textinput.Model
	prompt  textarea.Model
	path    textinput.Model
	spinner spinner.Model
	detail  viewport.Model
	help    help.Model

	size    image.Size
	quality image.Quality

	history    session.History
	labels     []string
	cursor     int
	current    *session.Entry
	generating bool

	focus  focus
	modal  modal
	errMsg string
	status string

	width, height int
	picture       pictureCache
}

func NewModel(ctx context.Context, runner Runner, styles *prompt.Styles, saver store.Uploader) *Model {
	apiKey := textinput.New()
	apiKey.Placeholder = "sk-..."
	apiKey.EchoMode = textinput.EchoPassword
	apiKey.EchoCharacter = '*'
	apiKey.CharLimit = 256
	apiKey.Focus()

	style := textinput.New()
	style.Placeholder = "e.g. pixel art"
	style.CharLimit = 500

	p := textarea.New()
	p.Placeholder = "Describe the image"
	p.ShowLineNumbers = false
	p.CharLimit = 4000
	p.SetHeight(4)

	path := textinput.New()
	path.CharLimit = 1024

	return &Model{
		ctx:     ctx,
		runner:  runner,
		styles:  styles,
		saver:   saver,
		slot:    semaphore.NewWeighted(1),
		keys:    defaultKeyMap(),
		apiKey:  apiKey,
		style:   style,
		prompt:  p,
		path:    path,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		detail:  viewport.New(40, 6),
		help:    help.New(),
		size:    image.SizeSquare,
		quality: image.QualityStandard,
	}
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.modal != modalNone {
			return m, m.updateModal(msg)
		}
		return m, m.updateKey(msg)
	case worker.Succeeded:
		m.onGenerationSucceeded(msg.Entry)
		return m, nil
	case worker.Failed:
		m.onGenerationFailed(msg.Message)
		return m, nil
	case savedMsg:
		m.onSaved(msg)
		return m, nil
	case spinner.TickMsg:
		if !m.generating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, m.updateInputs(msg)
}

func (m *Model) updateKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Generate):
		cmd := m.submitGeneration()
		if cmd == nil {
			return nil
		}
		return tea.Batch(cmd, m.spinner.Tick)
	case key.Matches(msg, m.keys.Save):
		return m.saveCurrentImage()
	case key.Matches(msg, m.keys.Copy):
		m.copySelectedPromptToInput()
		return nil
	case key.Matches(msg, m.keys.Clear):
		m.clearHistory()
		return nil
	case key.Matches(msg, m.keys.Size):
		m.cycleSize()
		return nil
	case key.Matches(msg, m.keys.Quality):
		m.cycleQuality()
		return nil
	case key.Matches(msg, m.keys.Style):
		m.cycleStyle()
		return nil
	case key.Matches(msg, m.keys.NextFocus):
		return m.setFocus((m.focus + 1) % focusCount)
	case key.Matches(msg, m.keys.PrevFocus):
		return m.setFocus((m.focus + focusCount - 1) % focusCount)
	}

	if m.focus == focusHistory {
		switch {
		case key.Matches(msg, m.keys.Up):
			m.selectHistoryEntry(m.cursor - 1)
		case key.Matches(msg, m.keys.Down):
			m.selectHistoryEntry(m.cursor + 1)
		}
		return nil
	}
	return m.updateInputs(msg)
}

func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case focusKey:
		m.apiKey, cmd = m.apiKey.Update(msg)
	case focusStyle:
		m.style, cmd = m.style.Update(msg)
	case focusPrompt:
		m.prompt, cmd = m.prompt.Update(msg)
	}
	return cmd
}

func (m *Model) updateModal(msg tea.KeyMsg) tea.Cmd {
	switch m.modal {
	case modalError:
		switch msg.String() {
		case "enter", "esc", " ":
			m.modal, m.errMsg = modalNone, ""
		}
	case modalConfirmClear:
		switch msg.String() {
		case "y", "Y":
			m.confirmClear(true)
		case "n", "N", "esc", "enter":
			m.confirmClear(false)
		}
	case modalSave:
		switch msg.String() {
		case "enter":
			return m.commitSave()
		case "esc":
			m.modal = modalNone
			m.path.Blur()
		default:
			var cmd tea.Cmd
			m.path, cmd = m.path.Update(msg)
			return cmd
		}
	}
	return nil
}

func (m *Model) setFocus(f focus) tea.Cmd {
	m.focus = f
	m.apiKey.Blur()
	m.style.Blur()
	m.prompt.Blur()
	switch f {
	case focusKey:
		return m.apiKey.Focus()
	case focusStyle:
		return m.style.Focus()
	case focusPrompt:
		return m.prompt.Focus()
	}
	return nil
}

// submitGeneration validates the inputs and returns the command that runs the
// worker. Missing key or prompt is silently ignored, as is a submit while a
// generation is in flight.
func (m *Model) submitGeneration() tea.Cmd {
	apiKey := strings.TrimSpace(m.apiKey.Value())
	userPrompt := strings.TrimSpace(m.prompt.Value())
	if apiKey == "" || userPrompt == "" {
		return nil
	}
	if m.generating || !m.slot.TryAcquire(1) {
		return nil
	}
	m.generating = true
	m.status = ""

	req := worker.Request{
		APIKey:         apiKey,
		FullPrompt:     prompt.Compose(m.style.Value(), userPrompt),
		OriginalPrompt: userPrompt,
		Size:           m.size,
		Quality:        m.quality,
	}
	log.FromContextOrDiscard(m.ctx).WithGroup("studio").Info("submitting generation",
		"prompt", req.FullPrompt, "size", req.Size, "quality", req.Quality)

	ctx, runner := m.ctx, m.runner
	return func() tea.Msg {
		return runner.Run(ctx, req)
	}
}

func (m *Model) finishGeneration() bool {
	if !m.generating {
		return false
	}
	m.generating = false
	m.slot.Release(1)
	return true
}

func (m *Model) onGenerationSucceeded(entry session.Entry) {
	if !m.finishGeneration() {
		return
	}
	m.labels = append([]string{prompt.Label(m.history.Len(), entry.OriginalPrompt)}, m.labels...)
	m.history.Prepend(entry)
	m.cursor = 0
	m.display(entry)
}

func (m *Model) onGenerationFailed(message string) {
	if !m.finishGeneration() {
		return
	}
	m.modal = modalError
	m.errMsg = message
}

func (m *Model) selectHistoryEntry(index int) {
	entry, ok := m.history.At(index)
	if !ok {
		return
	}
	m.cursor = index
	m.display(entry)
}

// display shows entry. The detail pane holds the full prompt exactly as
// sent; a prompt rewritten by the API goes to the status line.
func (m *Model) display(entry session.Entry) {
	m.current = &entry
	m.status = ""
	if r := entry.RevisedPrompt; r != "" && r != entry.FullPrompt {
		m.status = "Revised: " + strings.Join(strings.Fields(r), " ")
	}
	m.setDetail()
}

func (m *Model) setDetail() {
	if m.current == nil {
		m.detail.SetContent("")
		return
	}
	m.detail.SetContent(wrap(m.current.FullPrompt, m.detail.Width))
	m.detail.GotoTop()
}

// copySelectedPromptToInput puts the displayed entry's full prompt back into
// the prompt field and clears the style so it is not applied twice.
func (m *Model) copySelectedPromptToInput() {
	if m.current == nil {
		return
	}
	m.prompt.SetValue(m.current.FullPrompt)
	m.style.SetValue("")
}

func (m *Model) clearHistory() {
	m.modal = modalConfirmClear
}

func (m *Model) confirmClear(yes bool) {
	m.modal = modalNone
	if !yes {
		return
	}
	m.history.Clear()
	m.labels = nil
	m.cursor = 0
	m.current = nil
	m.setDetail()
	m.status = "History cleared"
	log.FromContextOrDiscard(m.ctx).WithGroup("studio").Info("history cleared")
}

func (m *Model) saveCurrentImage() tea.Cmd {
	if m.current == nil {
		return nil
	}
	m.modal = modalSave
	m.path.SetValue(lo.Substring(m.current.ID, 0, 8) + store.DefaultExtension)
	m.path.CursorEnd()
	return m.path.Focus()
}

func (m *Model) commitSave() tea.Cmd {
	m.modal = modalNone
	m.path.Blur()
	dest := strings.TrimSpace(m.path.Value())
	if dest == "" || m.current == nil {
		return nil
	}

	params := store.NewUploadParams(dest, m.current.Raw, map[string]string{
		"id":      m.current.ID,
		"model":   string(image.Model),
		"size":    m.current.Size,
		"quality": m.current.Quality,
	})
	ctx, saver := m.ctx, m.saver
	return func() tea.Msg {
		return savedMsg{name: params.Name, err: saver.Upload(ctx, params)}
	}
}

func (m *Model) onSaved(msg savedMsg) {
	log := log.FromContextOrDiscard(m.ctx).WithGroup("studio").With("name", msg.name)
	if msg.err != nil {
		log.Error("saving image failed", "error", msg.err)
		m.modal = modalError
		m.errMsg = "Save failed: " + msg.err.Error()
		return
	}
	log.Info("saved image")
	m.status = "Saved " + msg.name
}

func (m *Model) cycleSize() {
	idx := lo.IndexOf(image.Sizes, m.size)
	m.size = image.Sizes[(idx+1)%len(image.Sizes)]
}

func (m *Model) cycleQuality() {
	idx := lo.IndexOf(image.Qualities, m.quality)
	m.quality = image.Qualities[(idx+1)%len(image.Qualities)]
}

func (m *Model) cycleStyle() {
	if m.styles == nil || m.styles.Len() == 0 {
		return
	}
	m.style.SetValue(m.styles.Next(m.ctx, m.style.Value()))
	m.style.CursorEnd()
}
