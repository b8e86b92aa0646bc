package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/pkg/config"
	"github.com/matzehuels/arbor/pkg/source"
	"github.com/matzehuels/arbor/pkg/tree"
)

// exploreCommand creates the interactive terminal explorer.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		wOpts widgetOpts
		iOpts inputOpts
	)

	cmd := &cobra.Command{
		Use:   "explore [file]",
		Short: "Explore a tree interactively in the terminal",
		Long: `Explore shows the visible part of the tree as an outline. Selecting a node
focuses it: its ancestors stay open, everything off the path collapses and
its children are shown one level deep. Children of lazily loaded sources
are fetched in the background.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), args, &wOpts, &iOpts)
		},
	}
	wOpts.register(cmd)
	iOpts.register(cmd)
	return cmd
}

func (c *CLI) runExplore(ctx context.Context, args []string, wOpts *widgetOpts, iOpts *inputOpts) error {
	cfg, err := c.loadConfig(ctx)
	if err != nil {
		return err
	}
	if err := wOpts.apply(cfg); err != nil {
		return err
	}
	in, err := c.openInput(ctx, cfg, args, iOpts)
	if err != nil {
		return err
	}
	defer in.Close()

	m, err := c.newExploreModel(ctx, cfg, in)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	m.send = p.Send
	_, err = p.Run()
	return err
}

// =============================================================================
// exploreModel - Interactive tree outline
// =============================================================================

// postMsg carries a loader result back onto the bubbletea goroutine, which
// owns the widget.
type postMsg struct{ fn func() }

// exploreModel is the bubbletea model of the explorer.
type exploreModel struct {
	w    *recordWidget
	name string

	rows   []*recordNode
	cursor int
	offset int
	height int

	status string
	err    error

	// send delivers messages from loader goroutines.
	send func(tea.Msg)
}

func (c *CLI) newExploreModel(ctx context.Context, cfg *config.Config, in *input) (*exploreModel, error) {
	ds, err := in.start(ctx)
	if err != nil {
		return nil, err
	}
	m := &exploreModel{name: in.name, height: 20}

	var lazy tree.LoadOnDemand[*source.Record]
	if in.lazy() {
		post := func(fn func()) { m.send(postMsg{fn}) }
		lazy = source.Async(ctx, in.loader, post, func(r *source.Record, err error) {
			if n, ok := m.w.Node(r.ID); ok {
				m.w.CancelLoad(n)
			}
			m.err = fmt.Errorf("loading %s: %w", r.DisplayText(), err)
		})
	}

	w, err := c.newWidget(cfg, ds, lazy)
	if err != nil {
		return nil, err
	}
	m.w = w
	if err := w.Initialize(); err != nil {
		return nil, err
	}
	m.refresh(w.Root().ID)
	return m, nil
}

func (m *exploreModel) Init() tea.Cmd {
	if root := m.w.Root(); m.w.Tree().NeedsLoad(root) {
		return func() tea.Msg { return postMsg{func() { m.toggle(root) }} }
	}
	return nil
}

func (m *exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case postMsg:
		msg.fn()
		m.refresh(m.currentID())
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-6, 5)
		m.scroll()
	case tea.KeyMsg:
		return m, m.key(msg.String())
	}
	return m, nil
}

func (m *exploreModel) key(k string) tea.Cmd {
	cur := m.current()
	switch k {
	case "q", "ctrl+c", "esc":
		return tea.Quit
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "pgup":
		m.move(-m.height)
	case "pgdown":
		m.move(m.height)
	case "home", "g":
		m.move(-len(m.rows))
	case "end", "G":
		m.move(len(m.rows))
	case "enter":
		if cur != nil {
			_, err := m.w.Click(cur)
			m.after(cur, err, "clicked")
		}
	case " ":
		m.toggle(cur)
	case "f":
		if cur == nil {
			break
		}
		if !m.w.Options().AllowFocus {
			m.status = "focus is disabled"
			break
		}
		m.after(cur, m.w.Focus(cur), "focused")
	case "left", "h":
		if cur != nil && cur.IsExpanded() {
			m.toggle(cur)
		} else if cur != nil && cur.Parent != nil {
			m.refresh(cur.Parent.ID)
		}
	case "right", "l":
		if cur != nil && !cur.IsExpanded() {
			m.toggle(cur)
		}
	case "e":
		m.w.ExpandAll()
		m.refresh(m.currentID())
		m.status = "expanded all loaded nodes"
	case "c":
		m.w.CollapseAll()
		m.refresh(m.w.Root().ID)
		m.status = "collapsed all"
	case "x":
		if cur != nil && cur.IsLoading() {
			m.w.CancelLoad(cur)
			m.status = "load cancelled"
		}
	}
	return nil
}

func (m *exploreModel) toggle(n *recordNode) {
	if n == nil {
		return
	}
	m.after(n, m.w.Toggle(n), "toggled")
}

// after records the outcome of an action on n and keeps the cursor on it.
func (m *exploreModel) after(n *recordNode, err error, verb string) {
	m.err = err
	switch {
	case err != nil:
		m.status = ""
	case n.IsLoading():
		m.status = "loading " + n.Data.DisplayText()
	default:
		m.status = verb + " " + n.Data.DisplayText()
	}
	m.refresh(n.ID)
}

// refresh rebuilds the rows and puts the cursor on id when it is visible.
func (m *exploreModel) refresh(id string) {
	m.rows = visibleDepthFirst(m.w.Root())
	m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
	for i, n := range m.rows {
		if n.ID == id {
			m.cursor = i
			break
		}
	}
	m.scroll()
}

func (m *exploreModel) move(delta int) {
	m.cursor = max(0, min(len(m.rows)-1, m.cursor+delta))
	m.scroll()
}

func (m *exploreModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m *exploreModel) current() *recordNode {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor]
}

func (m *exploreModel) currentID() string {
	if n := m.current(); n != nil {
		return n.ID
	}
	return ""
}

func (m *exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.name))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ move  ⏎ select  space toggle  f focus  e/c expand/collapse all  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.rows))
	for i := m.offset; i < end; i++ {
		line := m.row(m.rows[i])
		if i == m.cursor {
			line = styleCursor.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString(statusError.line("%s", m.err.Error()))
	case m.status != "":
		b.WriteString(StyleDim.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("[%d/%d] %d loaded", m.cursor+1, len(m.rows), m.w.Tree().Len())))
	return b.String()
}

// row renders one outline line: indentation, state icon and label.
func (m *exploreModel) row(n *recordNode) string {
	indent := strings.Repeat("  ", n.Depth)
	var icon string
	switch {
	case n.IsLoading():
		icon = styleLoading.Render(iconLoading)
	case n.IsExpanded():
		icon = styleBranch.Render(iconExpanded)
	case n.HasLoaded() || m.w.Tree().NeedsLoad(n):
		icon = styleBranch.Render(iconCollapsed)
	default:
		icon = styleLeaf.Render(iconLeaf)
	}

	label := n.Data.DisplayText()
	if n.Selected {
		label = styleSelected.Render(label)
	}
	if n.Data.Title != "" {
		label += " " + StyleDim.Render(n.Data.Title)
	}
	return indent + icon + " " + label
}
