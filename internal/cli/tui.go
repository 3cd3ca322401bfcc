package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lemu/seamless-sea-sub003/pkg/board"
	"github.com/lemu/seamless-sea-sub003/pkg/errors"
	"github.com/lemu/seamless-sea-sub003/pkg/focus"
	"github.com/lemu/seamless-sea-sub003/pkg/grid"
)

// chromeLines is the number of lines the header and footer take.
const chromeLines = 3

// =============================================================================
// tui command
// =============================================================================

// tuiCommand creates the tui command, an interactive board editor.
func (c *CLI) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui <board.yaml>",
		Short: "Edit a board's layout interactively",
		Long: `Open a board in the terminal. Widgets are placed as in "place"; moves and
resizes are saved once you stop editing, and changes made by other sessions
show up live.

Keys:
  tab / shift+tab   select widget
  h j k l           move selected widget
  H J K L           shrink or grow selected widget
  a                 add a placeholder widget
  x                 delete selected widget
  q                 save and quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runTUI(ctx context.Context, path string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	b, err := board.LoadFile(path)
	if err != nil {
		return err
	}
	repo, err := c.openStore(ctx, cfg, b)
	if err != nil {
		return err
	}
	defer repo.Close()

	view, err := board.Open(ctx, repo, b, viewOptions(cfg, c.Logger, 0, 0))
	if err != nil {
		return err
	}
	defer view.Close()

	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	updates, err := view.Subscribe(subCtx)
	if err != nil {
		c.Logger.Warn("live updates unavailable", "err", err)
	}

	m := newBoardModel(view, cfg.Grid.RowHeight, cfg.Grid.RowMargin, updates, c.Logger)
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return err
	}

	if err := view.Flush(ctx); err != nil {
		printError("Layout not saved: %s", errors.UserMessage(err))
		return err
	}
	if err := board.SaveFile(path, view.Board()); err != nil {
		return err
	}
	printSuccess("Saved %s", view.Board())
	printFile(path)
	return nil
}

// =============================================================================
// boardModel
// =============================================================================

// layoutsMsg carries layouts committed by any session.
type layoutsMsg grid.Layouts

// updatesClosedMsg reports the end of the layout subscription.
type updatesClosedMsg struct{}

// boardModel is the bubbletea model of the board editor.
type boardModel struct {
	view      *board.View
	rowHeight int
	rowMargin int
	updates   <-chan grid.Layouts
	logger    *log.Logger

	viewport viewport.Model
	ready    bool
	rendered board.Rendered
	selected string
	status   string
}

func newBoardModel(view *board.View, rowHeight, rowMargin int, updates <-chan grid.Layouts, logger *log.Logger) *boardModel {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &boardModel{
		view:      view,
		rowHeight: rowHeight,
		rowMargin: rowMargin,
		updates:   updates,
		logger:    logger,
	}
}

func (m *boardModel) Init() tea.Cmd {
	return m.waitForUpdate()
}

// waitForUpdate blocks on the subscription until the next layout change.
func (m *boardModel) waitForUpdate() tea.Cmd {
	ch := m.updates
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ls, ok := <-ch
		if !ok {
			return updatesClosedMsg{}
		}
		return layoutsMsg(ls)
	}
}

func (m *boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := max(msg.Height-chromeLines, linesPerRow)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.view.Resize(msg.Width*pxPerColumn, pixelHeight(height, m.rowHeight, m.rowMargin))
		m.render()
		return m, nil

	case layoutsMsg:
		m.view.ApplyRemote(grid.Layouts(msg))
		if m.ready {
			m.render()
		}
		return m, m.waitForUpdate()

	case updatesClosedMsg:
		m.updates = nil
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		if !m.ready {
			return m, nil
		}
		m.status = ""
		switch msg.String() {
		case "tab":
			m.cycle(1)
		case "shift+tab":
			m.cycle(-1)
		case "h":
			m.adjust(-1, 0, 0, 0)
		case "l":
			m.adjust(1, 0, 0, 0)
		case "k":
			m.adjust(0, -1, 0, 0)
		case "j":
			m.adjust(0, 1, 0, 0)
		case "H":
			m.adjust(0, 0, -1, 0)
		case "L":
			m.adjust(0, 0, 1, 0)
		case "K":
			m.adjust(0, 0, 0, -1)
		case "J":
			m.adjust(0, 0, 0, 1)
		case "a":
			m.add()
		case "x", "delete":
			m.remove()
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		m.render()
		return m, nil
	}

	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// render runs a view render pass and redraws the grid.
func (m *boardModel) render() {
	m.rendered = m.view.Render()
	if _, ok := m.rendered.Layout.Find(m.selected); !ok {
		m.selected = ""
		if len(m.rendered.Layout) > 0 {
			m.selected = m.rendered.Layout[0].WidgetID
		}
	}

	cols := max(m.rendered.Breakpoint.Columns, 1)
	m.viewport.SetContent(drawLayout(m.rendered.Layout, cols, m.rendered.MaxRows, m.viewport.Width/cols, m.selected))

	if m.rendered.Scroll != nil {
		m.scrollTo(*m.rendered.Scroll)
	}
	if m.rendered.Exhausted {
		m.status = "row limit reached"
	}
}

// scrollTo reveals t in the viewport. Failures are logged; the widget stays
// where it is.
func (m *boardModel) scrollTo(t focus.Target) {
	if err := focus.ScrollIntoView(viewportContainer{m}, nil, t); err != nil {
		m.logger.Warn("scroll to added widget failed", "widget", t.WidgetID, "err", err)
	}
}

func (m *boardModel) cycle(step int) {
	l := m.rendered.Layout
	if len(l) == 0 {
		return
	}
	i := 0
	for j, r := range l {
		if r.WidgetID == m.selected {
			i = j
			break
		}
	}
	m.selected = l[(i+step+len(l))%len(l)].WidgetID
}

// adjust moves and resizes the selected widget. Changes that leave the grid
// or overlap another widget are refused.
func (m *boardModel) adjust(dx, dy, dw, dh int) {
	l := m.rendered.Layout.Clone()
	i := -1
	for j, r := range l {
		if r.WidgetID == m.selected {
			i = j
			break
		}
	}
	if i < 0 {
		return
	}
	next := l[i]
	next.X += dx
	next.Y += dy
	next.W += dw
	next.H += dh
	if next.X < 0 || next.Y < 0 || next.W < 1 || next.H < 1 || next.Right() > m.rendered.Breakpoint.Columns {
		return
	}
	for j, o := range l {
		if j != i && o.Overlaps(next) {
			m.status = "blocked by " + o.WidgetID
			return
		}
	}
	l[i] = next
	if err := m.view.Interact(l); err != nil {
		m.status = errors.UserMessage(err)
	}
}

func (m *boardModel) add() {
	w := board.NewWidget(board.TypePlaceholder, "New widget")
	err := m.view.BeginAdd(w, func() {
		m.selected = w.ID
		m.status = "added " + w.ID
	})
	if err != nil {
		m.status = errors.UserMessage(err)
	}
}

func (m *boardModel) remove() {
	if m.selected == "" {
		return
	}
	id := m.selected
	if err := m.view.RemoveWidget(id); err != nil {
		m.status = errors.UserMessage(err)
		return
	}
	m.status = "removed " + id
}

func (m *boardModel) View() string {
	if !m.ready {
		return "loading…"
	}
	var b strings.Builder

	bp := m.rendered.Breakpoint
	b.WriteString(StyleTitle.Render(m.view.Board().String()))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %s · %d columns · %d rows", bp.Name, bp.Columns, m.rendered.MaxRows)))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(StyleHighlight.Render(m.status))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("tab select  hjkl move  HJKL size  a add  x delete  q quit"))

	return b.String()
}

// =============================================================================
// Scrolling
// =============================================================================

// viewportContainer lets the focus controller scroll the grid viewport.
type viewportContainer struct {
	m *boardModel
}

func (c viewportContainer) Parent() focus.Container { return nil }

func (c viewportContainer) Scrollable() bool {
	return c.m.viewport.TotalLineCount() > c.m.viewport.Height
}

// ScrollTo moves the viewport by the least amount that shows the target.
func (c viewportContainer) ScrollTo(t focus.Target) error {
	first, n := lineSpan(t.Top, t.Height, c.m.rowHeight, c.m.rowMargin)
	vp := &c.m.viewport
	if total := vp.TotalLineCount(); first >= total {
		return errors.New(errors.ErrCodeInvalidInput, "widget %s starts at line %d of %d", t.WidgetID, first, total)
	}
	switch {
	case first < vp.YOffset:
		vp.SetYOffset(first)
	case first+n > vp.YOffset+vp.Height:
		vp.SetYOffset(first + n - vp.Height)
	}
	return nil
}
