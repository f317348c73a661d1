package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/danferreira/torrentinfo/internal/bitfield"
	"github.com/danferreira/torrentinfo/internal/metadata"
	"github.com/danferreira/torrentinfo/internal/piece"
	"github.com/danferreira/torrentinfo/internal/storage"
)

var (
	tableStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder())
	infoBoxStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1).Width(77)

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render
)

type mode int

const (
	modeMain     mode = iota // default
	modePickFile             // show file-picker in a dialog
)

type status uint8

const (
	statusUnchecked status = iota
	statusVerifying
	statusVerified
)

type model struct {
	table      table.Model
	help       help.Model
	keyMap     keyMap
	filepicker filepicker.Model
	uiMode     mode
	quitting   bool

	err string

	initPath string
	path     string
	metadata *metadata.Metadata
	status   status
	verified bitfield.Bitfield

	// set while a verification runs
	events  <-chan tea.Msg
	checked bitfield.Bitfield
}

type keyMap struct {
	open   key.Binding
	verify key.Binding
	quit   key.Binding
}

type torrentLoadedMsg struct {
	path string
	m    *metadata.Metadata
}

type verifyStartedMsg struct {
	events <-chan tea.Msg
}

type pieceCheckedMsg struct {
	res piece.Result
}

type verifiedMsg struct {
	bf bitfield.Bitfield
}

type errMsg struct {
	err error
}

func (m model) Init() tea.Cmd {
	if m.initPath != "" {
		return loadTorrent(m.initPath)
	}

	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wm, ok := msg.(tea.WindowSizeMsg); ok {
		m.help.Width = wm.Width
		m.filepicker, _ = m.filepicker.Update(msg)
	}

	switch m.uiMode {
	case modePickFile:
		return m.updatePicker(msg)
	default:
		return m.updateMain(msg)
	}
}

func (m model) updateMain(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keyMap.verify):
			if m.metadata == nil || m.status == statusVerifying {
				return m, nil
			}

			m.status = statusVerifying
			m.verified = bitfield.New(len(m.metadata.Info.PieceHashes))
			m.checked = bitfield.New(len(m.metadata.Info.PieceHashes))
			m.err = ""
			m.updateRows()
			return m, verifyTorrent(m.path, m.metadata)

		case key.Matches(msg, m.keyMap.open):
			if m.status == statusVerifying {
				return m, nil
			}
			m.uiMode = modePickFile
			return m, m.filepicker.Init()
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	case torrentLoadedMsg:
		m.path = msg.path
		m.metadata = msg.m
		m.status = statusUnchecked
		m.verified = nil
		m.err = ""
		m.updateRows()
		m.table.SetCursor(0)
		return m, nil
	case verifyStartedMsg:
		m.events = msg.events
		return m, waitForVerify(m.events)
	case pieceCheckedMsg:
		m.checked.SetPiece(msg.res.Piece.Index)
		if msg.res.OK {
			m.verified.SetPiece(msg.res.Piece.Index)
		}
		m.updateRows()
		return m, waitForVerify(m.events)
	case verifiedMsg:
		m.status = statusVerified
		m.verified = msg.bf
		m.events = nil
		m.checked = nil
		m.updateRows()
		return m, nil
	case errMsg:
		if m.status == statusVerifying {
			m.status = statusUnchecked
			m.events = nil
			m.checked = nil
			m.verified = nil
			m.updateRows()
		}
		m.err = msg.err.Error()
		return m, nil
	}

	return m, nil
}

func (m model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, m.keyMap.quit) {
			m.uiMode = modeMain
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.filepicker, cmd = m.filepicker.Update(msg)

	if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
		m.uiMode = modeMain

		return m, tea.Batch(cmd, loadTorrent(path))
	}

	return m, cmd
}

func loadTorrent(path string) tea.Cmd {
	return func() tea.Msg {
		md, err := metadata.Parse(path)
		if err != nil {
			return errMsg{err}
		}

		return torrentLoadedMsg{path: path, m: md}
	}
}

// verifyTorrent checks the payload stored next to the torrent file in the
// background. Progress arrives as one pieceCheckedMsg per piece followed by
// a verifiedMsg or errMsg, after which the events channel is closed.
func verifyTorrent(path string, md *metadata.Metadata) tea.Cmd {
	return func() tea.Msg {
		pieces, err := piece.Plan(md)
		if err != nil {
			return errMsg{err}
		}

		s, err := storage.Open(md.Files(filepath.Dir(path)))
		if err != nil {
			return errMsg{err}
		}

		// room for every message, so the sender never blocks once the UI stops reading
		events := make(chan tea.Msg, len(pieces)+1)

		go func() {
			defer close(events)
			defer s.Close()

			bf, err := piece.NewVerifier(s, piece.Config{}).Verify(context.Background(), pieces, func(r piece.Result) {
				events <- pieceCheckedMsg{r}
			})
			if err != nil {
				events <- errMsg{err}
				return
			}

			events <- verifiedMsg{bf}
		}()

		return verifyStartedMsg{events}
	}
}

func waitForVerify(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}

		return msg
	}
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	if m.uiMode == modePickFile {
		return "Open torrent:" + " " + m.filepicker.CurrentDirectory + "\n\n" + m.filepicker.View() + "\n"
	}

	helpView := m.help.ShortHelpView([]key.Binding{
		m.keyMap.open,
		m.keyMap.verify,
		m.keyMap.quit,
	})

	views := []string{tableStyle.Render(m.table.View()), m.infoBox()}
	if m.err != "" {
		views = append(views, errorStyle(m.err))
	}
	views = append(views, helpView)

	return lipgloss.JoinVertical(lipgloss.Left, views...)
}

func (m *model) updateRows() {
	if m.metadata == nil {
		m.table.SetRows(nil)
		return
	}

	hashes := m.metadata.Info.PieceHashes
	rows := make([]table.Row, 0, len(hashes))
	for i, h := range hashes {
		rows = append(rows, table.Row{
			fmt.Sprint(i),
			h.HexString(),
			m.pieceStatus(i),
		})
	}
	m.table.SetRows(rows)
}

func (m *model) pieceStatus(index int) string {
	switch m.status {
	case statusVerifying:
		if !m.checked.HasPiece(index) {
			return "Verifying"
		}
		if m.verified.HasPiece(index) {
			return "OK"
		}
		return "Bad"
	case statusVerified:
		if m.verified.HasPiece(index) {
			return "OK"
		}
		return "Bad"
	}

	return "-"
}

func (m *model) infoBox() string {
	if m.metadata == nil {
		return infoBoxStyle.Render("No torrent")
	}

	md := m.metadata
	info := strings.Builder{}

	const bytesInMB = 1024 * 1024

	size := "unknown"
	if md.Info.Length != nil {
		size = fmt.Sprintf("%.2fMB", float64(*md.Info.Length)/bytesInMB)
	}

	info.WriteString(fmt.Sprintf("Name: %s\n", md.Info.Name))
	info.WriteString(fmt.Sprintf("Tracker: %s\n", md.Announce))
	info.WriteString(fmt.Sprintf("Hash: %s\n", md.Info.InfoHash))
	info.WriteString(fmt.Sprintf("Size: %s\n", size))
	info.WriteString(fmt.Sprintf("Pieces: %d x %d bytes", len(md.Info.PieceHashes), md.Info.PieceLength))

	total := len(md.Info.PieceHashes)
	switch m.status {
	case statusVerifying:
		done := m.checked.Count(total)
		percent := 100
		if total > 0 {
			percent = done * 100 / total
		}
		info.WriteString(fmt.Sprintf("\nVerifying: %d/%d (%d%%)", done, total, percent))
	case statusVerified:
		info.WriteString(fmt.Sprintf("\nVerified: %d/%d", m.verified.Count(total), total))
	}

	return infoBoxStyle.Render(info.String())
}

func configurePicker() filepicker.Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".torrent"}

	return fp
}

func configureTable() table.Model {
	columns := []table.Column{
		{Title: "#", Width: 6},
		{Title: "Piece hash", Width: 42},
		{Title: "Status", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func newModel() model {
	return model{filepicker: configurePicker(), table: configureTable(),
		keyMap: keyMap{
			open: key.NewBinding(
				key.WithKeys("o"),
				key.WithHelp("o", "open"),
			),
			verify: key.NewBinding(
				key.WithKeys("v"),
				key.WithHelp("v", "verify"),
			),
			quit: key.NewBinding(
				key.WithKeys("q", "ctrl+c"),
				key.WithHelp("q", "quit"),
			),
		},
		help: help.New(),
	}
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	m := newModel()
	if len(os.Args) > 1 {
		m.initPath = os.Args[1]
	}

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Println("Error running program:", err)
		os.Exit(1)
	}
}
