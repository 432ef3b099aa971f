package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/kvanlaer/ndview/internal/axis"
	"github.com/kvanlaer/ndview/internal/control"
	"github.com/kvanlaer/ndview/internal/frame"
	"github.com/kvanlaer/ndview/internal/plugins"
	"github.com/kvanlaer/ndview/internal/render"
	"github.com/kvanlaer/ndview/internal/store"
	"github.com/kvanlaer/ndview/internal/view"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	panel  = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Background(lipgloss.Color("236"))
)

// FrameMsg delivers a finished redraw from the viewer's render target.
type FrameMsg struct {
	Frame *frame.Frame
	List  []render.Primitive
}

// ErrMsg surfaces a recoverable viewer error in the status line.
type ErrMsg struct{ Err error }

// Target adapts a bubbletea program to the viewer's render target
// interface; Send is safe from the viewer's goroutines.
type Target struct{ p *tea.Program }

func NewTarget(p *tea.Program) *Target { return &Target{p: p} }

func (t *Target) Render(f *frame.Frame, list []render.Primitive) {
	t.p.Send(FrameMsg{Frame: f, List: list})
}

// row is one adjustable line in the side panel: an axis or a control.
type row struct {
	axis *axis.Axis
	ctrl *control.Control
}

type Model struct {
	viewer    *view.Viewer
	sel       *plugins.Selection
	dataDir   string
	title     string
	autoscale bool

	rows   []row
	cursor int

	frame *frame.Frame
	prims []render.Primitive

	width, height int
	addMode       bool
	delMode       bool
	showHist      bool
	dragging      bool
	status        string
	lastErr       string
}

func NewModel(v *view.Viewer, sel *plugins.Selection, controls []*control.Control, dataDir, title string, autoscale bool) Model {
	m := Model{
		viewer:    v,
		sel:       sel,
		dataDir:   dataDir,
		title:     title,
		autoscale: autoscale,
		width:     80,
		height:    24,
	}
	axes := v.Axes()
	for i := range axes {
		if axes[i].Size > 1 {
			m.rows = append(m.rows, row{axis: &axes[i]})
		}
	}
	for _, c := range controls {
		m.rows = append(m.rows, row{ctrl: c})
	}
	return m
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FrameMsg:
		m.frame = msg.Frame
		m.prims = msg.List
		return m, nil
	case ErrMsg:
		m.lastErr = msg.Err.Error()
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "left", "h":
		m.adjust(-1)
	case "right", "l":
		m.adjust(+1)
	case "shift+left":
		m.adjust(-10)
	case "shift+right":
		m.adjust(+10)
	case " ":
		m.togglePlay()
	case "a":
		m.addMode = !m.addMode
		if m.addMode {
			m.delMode = false
		}
	case "d":
		m.delMode = !m.delMode
		if m.delMode {
			m.addMode = false
		}
	case "p":
		if m.sel != nil {
			m.sel.ArmPlace()
			m.status = "placing: click to add a feature"
		}
	case "u":
		if m.sel != nil && m.sel.Undo() {
			m.status = "undo"
		}
	case "U":
		if m.sel != nil && m.sel.Redo() {
			m.status = "redo"
		}
	case "g":
		m.showHist = !m.showHist
	case "s":
		m.snapshot()
	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.jumpFraction(int(msg.String()[0] - '0'))
	}
	return m, nil
}

// adjust moves the selected axis index or control value.
func (m *Model) adjust(delta int) {
	if m.cursor >= len(m.rows) {
		return
	}
	r := m.rows[m.cursor]
	switch {
	case r.axis != nil:
		if err := m.viewer.Step(r.axis.Name, delta); err != nil {
			m.lastErr = err.Error()
		}
	case r.ctrl != nil:
		lo, hi := r.ctrl.Range()
		step := (hi - lo) / 50
		if r.ctrl.Kind() == control.Int && step < 1 {
			step = 1
		}
		r.ctrl.Set(r.ctrl.Value() + float64(delta)*step)
	}
}

// jumpFraction jumps the time axis to key/10 of its length.
func (m *Model) jumpFraction(key int) {
	for _, ax := range m.viewer.Axes() {
		if ax.Kind == axis.Time {
			idx := ax.Size * key / 10
			if idx >= ax.Size {
				idx = ax.Size - 1
			}
			if err := m.viewer.SetIndex(ax.Name, idx); err != nil {
				m.lastErr = err.Error()
			}
			return
		}
	}
}

func (m *Model) togglePlay() {
	if m.viewer.Playing() != "" {
		m.viewer.Stop()
		m.status = "paused"
		return
	}
	for _, ax := range m.viewer.Axes() {
		if ax.Kind == axis.Time && ax.Size > 1 {
			if err := m.viewer.Play(ax.Name, 0); err != nil {
				m.lastErr = err.Error()
			} else {
				m.status = "playing"
			}
			return
		}
	}
}

func (m *Model) snapshot() {
	if m.frame == nil {
		return
	}
	path := filepath.Join(m.dataDir, fmt.Sprintf("snapshot_%d.png", time.Now().Unix()))
	if err := store.ExportPNG(path, m.frame, m.autoscale); err != nil {
		m.lastErr = err.Error()
		return
	}
	m.status = "saved " + path
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.frame == nil {
		return m, nil
	}
	cols, rows := m.imageArea()
	if msg.X >= cols || msg.Y >= rows {
		return m, nil
	}
	px := float64(msg.X) * float64(m.frame.W) / float64(cols)
	py := float64(msg.Y) * float64(m.frame.H) / float64(rows)

	mod := render.ModNone
	if m.addMode {
		mod = render.ModAdd
	}
	if m.delMode {
		mod = render.ModDelete
	}

	var kind render.PointerKind
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		kind = render.PointerDown
		m.dragging = true
	case tea.MouseActionMotion:
		if !m.dragging {
			return m, nil
		}
		kind = render.PointerMove
	case tea.MouseActionRelease:
		if !m.dragging {
			return m, nil
		}
		kind = render.PointerUp
		m.dragging = false
	default:
		return m, nil
	}

	m.viewer.HandlePointer(render.PointerEvent{Kind: kind, X: px, Y: py, Mod: mod})
	return m, nil
}

// imageArea returns the cell region used for the image.
func (m Model) imageArea() (cols, rows int) {
	cols = m.width
	rows = m.height - 2 // status + help line
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

func (m Model) View() string {
	cols, rows := m.imageArea()
	base := renderImage(m.frame, cols, rows, m.autoscale)
	if base == "" {
		base = strings.TrimRight(strings.Repeat(strings.Repeat(" ", cols)+"\n", rows), "\n")
	}
	base = drawPrimitives(base, m.prims, m.frame, cols, rows)
	base = overlayAt(base, m.sidePanel(), 1, 1, cols, rows)
	if m.showHist {
		base = overlayAt(base, m.histPanel(), 1, rows-11, cols, rows)
	}
	return base + "\n" + m.statusLine(cols) + "\n" + m.helpLine()
}

func (m Model) sidePanel() string {
	var b strings.Builder
	idx := m.viewer.Index()
	for i, r := range m.rows {
		marker := "  "
		if i == m.cursor {
			marker = cyan.Render("▸ ")
		}
		switch {
		case r.axis != nil:
			b.WriteString(fmt.Sprintf("%s%s %s %s",
				marker,
				white.Render(r.axis.Name),
				gauge(idx.Get(r.axis.Name), r.axis.Size),
				dim.Render(fmt.Sprintf("%d/%d", idx.Get(r.axis.Name)+1, r.axis.Size))))
		case r.ctrl != nil:
			lo, hi := r.ctrl.Range()
			b.WriteString(fmt.Sprintf("%s%s %s %s",
				marker,
				white.Render(r.ctrl.Name()),
				gaugeFloat(r.ctrl.Value(), lo, hi),
				dim.Render(fmt.Sprintf("%.2f", r.ctrl.Value()))))
		}
		if i < len(m.rows)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func gauge(value, size int) string {
	if size <= 1 {
		return ""
	}
	return gaugeFloat(float64(value), 0, float64(size-1))
}

func gaugeFloat(v, lo, hi float64) string {
	const width = 16
	if hi <= lo {
		return ""
	}
	fill := int((v - lo) / (hi - lo) * width)
	if fill > width {
		fill = width
	}
	return panel.Render(strings.Repeat("█", fill) + strings.Repeat("░", width-fill))
}

func (m Model) histPanel() string {
	if m.frame == nil {
		return ""
	}
	const bins = 48
	lo, hi := m.frame.MinMax()
	if hi <= lo {
		return ""
	}
	hist := make([]float64, bins)
	for _, v := range m.frame.Pix {
		b := int((v - lo) / (hi - lo) * float64(bins-1))
		hist[b]++
	}
	return asciigraph.Plot(hist,
		asciigraph.Height(8),
		asciigraph.Width(42),
		asciigraph.Caption("intensity histogram"),
	)
}

func (m Model) statusLine(cols int) string {
	parts := []string{white.Render(m.title)}
	if m.viewer.Playing() != "" {
		parts = append(parts, yellow.Render(fmt.Sprintf("▶ %.0f fps", m.viewer.FPS())))
	}
	if m.addMode {
		parts = append(parts, yellow.Render("[add]"))
	}
	if m.delMode {
		parts = append(parts, red.Render("[delete]"))
	}
	if m.status != "" {
		parts = append(parts, dim.Render(m.status))
	}
	if m.lastErr != "" {
		parts = append(parts, red.Render("error: "+m.lastErr))
	}
	return padRight(strings.Join(parts, "  "), cols)
}

func (m Model) helpLine() string {
	return dim.Render("↑↓ select  ←→ adjust  space play  0-9 jump  a add  d delete  p place  u/U undo/redo  g hist  s snapshot  q quit")
}
