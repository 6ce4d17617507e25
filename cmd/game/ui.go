package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/DanJbk/tilequest/internal/services"
	"github.com/DanJbk/tilequest/internal/storage"
	"github.com/DanJbk/tilequest/pkg/entity"
	"github.com/DanJbk/tilequest/pkg/prompts"
	"github.com/DanJbk/tilequest/pkg/resolver"
	"github.com/DanJbk/tilequest/pkg/world"
)

const placeholderText = "look, pick up <item>, or describe what you do..."

var titleCaser = cases.Title(language.English)

// GameUI is the BubbleTea model that runs the game.
// https://github.com/charmbracelet/bubbletea
type GameUI struct {
	world     *world.World
	resolver  *resolver.Resolver
	store     storage.Storage
	sessionID uuid.UUID

	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	loading      bool
	progressTick int

	// Targeting state. verb and target form the turn tag sent with each
	// command, e.g. "trade -> Trader Ghila".
	verb      string
	target    string
	targetIdx int

	history []chatEntry
	stream  <-chan services.StreamChunk
	status  string

	showQuitModal bool
}

type chatEntry struct {
	speaker string // "" for the narrator
	text    string
}

type resolutionMsg struct {
	res *resolver.Resolution
	err error
}

type streamChunkMsg struct {
	chunk services.StreamChunk
	ok    bool
}

type sessionSavedMsg struct{ err error }

type sessionLoadedMsg struct {
	snap *world.Snapshot
	err  error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	playerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	npcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")) // purple

	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")) // gold

	wallStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	floorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("236"))

	targetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

func NewGameUI(w *world.World, r *resolver.Resolver, store storage.Storage, sessionID uuid.UUID) GameUI {
	ta := textarea.New()
	ta.Placeholder = placeholderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(2)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 14)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(24, 20)

	return GameUI{
		world:        w,
		resolver:     r,
		store:        store,
		sessionID:    sessionID,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
		verb:         "interact",
		history: []chatEntry{
			{text: "You come to on a quiet tile of the overworld. Type look to get your bearings."},
		},
	}
}

func (m GameUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m GameUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		m.writeChatContent()
		m.writeMetadata()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil

		case tea.KeyTab:
			m.cycleTarget()
			m.writeMetadata()
			return m, nil

		case tea.KeyEnter:
			return m.submit()
		}

		switch msg.String() {
		case "shift+up":
			return m.move(0, -1)
		case "shift+down":
			return m.move(0, 1)
		case "shift+left":
			return m.move(-1, 0)
		case "shift+right":
			return m.move(1, 0)
		case "ctrl+g":
			if m.verb == "interact" {
				m.verb = "trade"
			} else {
				m.verb = "interact"
			}
			m.writeMetadata()
			return m, nil
		case "ctrl+s":
			return m, m.saveSession()
		case "ctrl+l":
			return m, m.loadSession()
		case "ctrl+y":
			m.copyTranscript()
			return m, nil
		}

	case resolutionMsg:
		return m.handleResolution(msg)

	case streamChunkMsg:
		return m.handleStreamChunk(msg)

	case sessionSavedMsg:
		if msg.err != nil {
			m.status = "save failed: " + msg.err.Error()
		} else {
			m.status = "session saved"
		}
		m.writeMetadata()
		return m, nil

	case sessionLoadedMsg:
		switch {
		case msg.err != nil:
			m.status = "load failed: " + msg.err.Error()
		case msg.snap == nil:
			m.status = "no saved session"
		default:
			m.world.RestoreSnapshot(msg.snap)
			m.target = ""
			m.status = "session restored"
		}
		m.writeMetadata()
		m.writeChatContent()
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTickCmd()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m *GameUI) layout() {
	chatWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - chatWidth - 6

	gridHeight := m.world.Height() + 2
	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - gridHeight - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

// submit dispatches the typed command through the resolver.
func (m GameUI) submit() (tea.Model, tea.Cmd) {
	if m.loading {
		m.status = "still resolving the last action"
		m.writeMetadata()
		return m, nil
	}

	input := strings.TrimSpace(m.textarea.Value())
	if input == "" {
		return m, nil
	}

	m.textarea.Reset()
	m.loading = true
	m.progressTick = 0
	m.status = ""

	m.history = append(m.history, chatEntry{speaker: "You", text: input})
	m.writeChatContent()

	return m, tea.Batch(m.dispatch(m.turnTag(), input), progressTickCmd())
}

// turnTag renders the targeting tag for the current verb and target.
func (m GameUI) turnTag() string {
	if m.target == "" {
		return ""
	}
	return m.verb + " -> " + m.target
}

func (m GameUI) dispatch(turn, text string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.resolver.Resolve(context.Background(), turn, text)
		return resolutionMsg{res: res, err: err}
	}
}

func (m GameUI) handleResolution(msg resolutionMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.loading = false
		switch {
		case errors.Is(msg.err, resolver.ErrResolutionActive):
			m.status = "still resolving the last action"
		case errors.Is(msg.err, prompts.ErrTargetNotFound):
			m.history = append(m.history, chatEntry{text: "There is nobody like that within reach."})
		default:
			m.history = append(m.history, chatEntry{speaker: "!", text: msg.err.Error()})
		}
		m.writeChatContent()
		m.writeMetadata()
		return m, nil
	}

	if msg.res.Stream != nil {
		// Streamed narration: open an empty entry and pull one fragment at
		// a time.
		m.history = append(m.history, chatEntry{})
		m.stream = msg.res.Stream
		return m, waitForChunk(m.stream)
	}

	m.loading = false
	m.history = append(m.history, chatEntry{text: msg.res.Text})
	m.writeChatContent()
	m.writeMetadata()
	return m, nil
}

func (m GameUI) handleStreamChunk(msg streamChunkMsg) (tea.Model, tea.Cmd) {
	if !msg.ok {
		m.loading = false
		m.stream = nil
		m.writeChatContent()
		return m, nil
	}

	if msg.chunk.Err != nil {
		m.loading = false
		m.stream = nil
		m.history = append(m.history, chatEntry{speaker: "!", text: msg.chunk.Err.Error()})
		m.writeChatContent()
		return m, nil
	}

	if len(m.history) > 0 {
		m.history[len(m.history)-1].text += msg.chunk.Text
	}
	m.writeChatContent()
	return m, waitForChunk(m.stream)
}

func waitForChunk(ch <-chan services.StreamChunk) tea.Cmd {
	return func() tea.Msg {
		chunk, ok := <-ch
		return streamChunkMsg{chunk: chunk, ok: ok}
	}
}

func (m GameUI) move(dx, dy int) (tea.Model, tea.Cmd) {
	m.world.StepPlayer(dx, dy)
	m.writeMetadata()
	return m, nil
}

// cycleTarget advances the targeting tag through the entities in reach.
func (m *GameUI) cycleTarget() {
	nearby := m.world.Nearby(m.world.Player, entity.ReachDistance)
	if len(nearby) == 0 {
		m.target = ""
		m.status = "nobody within reach"
		return
	}

	m.targetIdx = (m.targetIdx + 1) % (len(nearby) + 1)
	if m.targetIdx == len(nearby) {
		m.target = ""
		m.status = ""
		return
	}
	m.target = nearby[m.targetIdx].Name()
	m.status = ""
}

func (m GameUI) saveSession() tea.Cmd {
	if m.store == nil {
		return func() tea.Msg {
			return sessionSavedMsg{err: errors.New("storage not configured")}
		}
	}
	snap := m.world.TakeSnapshot()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return sessionSavedMsg{err: m.store.SaveSession(ctx, m.sessionID, snap)}
	}
}

func (m GameUI) loadSession() tea.Cmd {
	if m.store == nil {
		return func() tea.Msg {
			return sessionLoadedMsg{err: errors.New("storage not configured")}
		}
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		snap, err := m.store.LoadSession(ctx, m.sessionID)
		return sessionLoadedMsg{snap: snap, err: err}
	}
}

func (m *GameUI) copyTranscript() {
	var sb strings.Builder
	for _, e := range m.history {
		if e.speaker != "" {
			sb.WriteString(e.speaker + ": ")
		}
		sb.WriteString(e.text + "\n\n")
	}
	if err := clipboard.WriteAll(sb.String()); err != nil {
		m.status = "clipboard unavailable"
	} else {
		m.status = "transcript copied"
	}
	m.writeMetadata()
}

// entityGlyph is the map character for an entity: its upper-cased first rune,
// or "?" for a nameless metadata object.
func entityGlyph(name string) string {
	for _, r := range name {
		return strings.ToUpper(string(r))
	}
	return "?"
}

// renderGrid draws the tile map: player, entities, walls and open floor.
func (m GameUI) renderGrid() string {
	blocked := m.world.BlockedCells()
	px := int(m.world.Player.Pos.X)
	py := int(m.world.Player.Pos.Y)

	var rows []string
	for y := 0; y < m.world.Height(); y++ {
		var row strings.Builder
		for x := 0; x < m.world.Width(); x++ {
			cell := world.Cell{X: x, Y: y}
			switch {
			case x == px && y == py:
				row.WriteString(playerStyle.Render("@ "))
			case m.world.EntityAt(cell) != nil:
				e := m.world.EntityAt(cell)
				glyph := entityGlyph(e.Name()) + " "
				switch {
				case e.Name() == m.target:
					row.WriteString(targetStyle.Render(glyph))
				case e.IsNPC():
					row.WriteString(npcStyle.Render(glyph))
				default:
					row.WriteString(itemStyle.Render(glyph))
				}
			case blocked[cell]:
				row.WriteString(wallStyle.Render("# "))
			default:
				row.WriteString(floorStyle.Render(". "))
			}
		}
		rows = append(rows, row.String())
	}
	return strings.Join(rows, "\n")
}

func (m *GameUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 4
	if chatWidth < 10 {
		chatWidth = 10
	}

	var content strings.Builder
	for _, e := range m.history {
		switch e.speaker {
		case "You":
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(e.text, chatWidth-5) + "\n\n")
		case "!":
			content.WriteString(errorStyle.Render("Error: "+e.text) + "\n\n")
		default:
			content.WriteString(narratorStyle.Render(wordwrap.String(e.text, chatWidth)) + "\n\n")
		}
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m *GameUI) writeMetadata() {
	var content strings.Builder
	content.WriteString(titleStyle.Render("TILEQUEST") + "\n\n")

	content.WriteString("Session:\n")
	content.WriteString(m.sessionID.String()[:8] + "...\n\n")

	content.WriteString(titleCaser.String(m.world.Player.Name()) + "\n")
	content.WriteString(fmt.Sprintf("Tile (%d, %d)\n\n", int(m.world.Player.Pos.X), int(m.world.Player.Pos.Y)))

	content.WriteString("Inventory:\n")
	items := m.world.Player.ItemNames()
	if len(items) == 0 {
		content.WriteString("• empty\n")
	}
	for _, name := range items {
		content.WriteString("• " + titleCaser.String(name) + "\n")
	}
	content.WriteString("\n")

	content.WriteString("Nearby:\n")
	nearby := m.world.Nearby(m.world.Player, entity.ReachDistance)
	if len(nearby) == 0 {
		content.WriteString("• nobody\n")
	}
	for _, e := range nearby {
		marker := "• "
		if e.Name() == m.target {
			marker = "▶ "
		}
		content.WriteString(marker + titleCaser.String(e.Name()) + "\n")
	}
	content.WriteString("\n")

	if m.target != "" {
		content.WriteString("Next command: " + m.verb + " with\n" + titleCaser.String(m.target) + "\n\n")
	}

	if m.status != "" {
		content.WriteString(statusStyle.Render(m.status) + "\n\n")
	}

	content.WriteString("Keys:\n")
	content.WriteString("• Shift+Arrows: Move\n")
	content.WriteString("• Tab: Cycle target\n")
	content.WriteString("• Ctrl+G: Interact/trade\n")
	content.WriteString("• Ctrl+S: Save\n")
	content.WriteString("• Ctrl+L: Load\n")
	content.WriteString("• Ctrl+Y: Copy log\n")
	content.WriteString("• Ctrl+C: Quit\n")

	m.metaViewport.SetContent(content.String())
}

// renderProgressBar creates an animated progress bar for loading states
func (m GameUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 60 {
		usable = 60
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		switch {
		case i < filled:
			bar.WriteString("█")
		case i == filled && frame%4 < 2:
			bar.WriteString("▓")
		default:
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}

func (m GameUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N", "esc":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m GameUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Unsaved progress will be lost.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(44).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m GameUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - chatWidth - 6

	leftPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 2).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.renderGrid(),
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.chatViewport.View(),
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, metaPanel)
}
