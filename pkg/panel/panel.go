// Package panel models the detail panel shown next to the graph: the empty
// state with its legend, or the selected node with its commands, example
// outputs and copy confirmations.
package panel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/pkiviz/internal/logging"
	"github.com/aretw0/pkiviz/pkg/catalog"
	"github.com/aretw0/pkiviz/pkg/clipboard"
	"github.com/aretw0/pkiviz/pkg/domain"
	"github.com/aretw0/pkiviz/pkg/highlight"
)

// DefaultConfirmDuration is how long "Copied!" stays visible.
const DefaultConfirmDuration = 2 * time.Second

// ErrNoExampleOutput is returned when toggling a command without example output.
var ErrNoExampleOutput = errors.New("command has no example output")

// Empty state copy.
const (
	EmptyTitle        = "PKI Component Visualizer"
	EmptyInstructions = "Click on any node in the graph to view its details and related OpenSSL commands."
	CommandsHeading   = "OpenSSL Commands"
	CopiedLabel       = "Copied!"
)

// Tips are shown in the empty state.
var Tips = []string{
	"Drag nodes to rearrange the graph",
	"Scroll to zoom in/out",
	"Try Beginner Mode for step-by-step flows",
	"Use Auto-Play for presentations",
}

// LegendEntry is one category in the empty-state legend.
type LegendEntry struct {
	Category domain.Category `json:"category"`
	Label    string          `json:"label"`
	Color    string          `json:"color"`
}

// CommandView is one command as displayed.
type CommandView struct {
	Index       int               `json:"index"`
	Title       string            `json:"title"`
	Command     string            `json:"command"`
	Description string            `json:"description"`
	Tokens      []highlight.Token `json:"tokens"`
	Output      string            `json:"output,omitempty"`
	HasOutput   bool              `json:"has_output"`
	Expanded    bool              `json:"expanded"`
	Copied      bool              `json:"copied"`
}

// View is a snapshot of the panel contents.
type View struct {
	Empty bool `json:"empty"`

	Title        string        `json:"title"`
	Instructions string        `json:"instructions,omitempty"`
	Legend       []LegendEntry `json:"legend,omitempty"`
	Tips         []string      `json:"tips,omitempty"`

	NodeID        string          `json:"node_id,omitempty"`
	Category      domain.Category `json:"category,omitempty"`
	CategoryLabel string          `json:"category_label,omitempty"`
	CategoryColor string          `json:"category_color,omitempty"`
	Description   string          `json:"description,omitempty"`
	Commands      []CommandView   `json:"commands,omitempty"`
}

// DisplayLabel strips a step prefix: for labels containing a dot it returns
// the part after the first ". ", falling back to the whole label.
func DisplayLabel(label string) string {
	if !strings.Contains(label, ".") {
		return label
	}
	parts := strings.Split(label, ". ")
	if len(parts) > 1 && parts[1] != "" {
		return parts[1]
	}
	return label
}

// Panel holds the per-selection UI state of the detail panel.
type Panel struct {
	catalog   *catalog.Catalog
	clipboard clipboard.Clipboard
	logger    *slog.Logger
	confirm   time.Duration
	onCopy    func(context.Context, *domain.CopyEvent)
	sessionID string

	mu       sync.Mutex
	node     *domain.Selection
	expanded map[int]bool
	copied   int
	timer    *time.Timer
	gen      uint64
}

// Option configures a Panel.
type Option func(*Panel)

// WithClipboard sets the clipboard used by Copy.
func WithClipboard(c clipboard.Clipboard) Option {
	return func(p *Panel) {
		p.clipboard = c
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Panel) {
		p.logger = logger
	}
}

// WithConfirmDuration overrides how long the copy confirmation lasts.
func WithConfirmDuration(d time.Duration) Option {
	return func(p *Panel) {
		p.confirm = d
	}
}

// WithCopyHook registers a callback for every copy attempt.
func WithCopyHook(fn func(context.Context, *domain.CopyEvent)) Option {
	return func(p *Panel) {
		p.onCopy = fn
	}
}

// WithSessionID stamps copy events with the owning viewer.
func WithSessionID(id string) Option {
	return func(p *Panel) {
		p.sessionID = id
	}
}

// New creates an empty panel.
func New(c *catalog.Catalog, opts ...Option) *Panel {
	p := &Panel{
		catalog:   c,
		clipboard: clipboard.Unavailable{},
		logger:    logging.NewNop(),
		confirm:   DefaultConfirmDuration,
		expanded:  make(map[int]bool),
		copied:    -1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Show replaces the displayed node. A nil selection shows the empty state.
// Expansion and copy state only survive when the same node stays selected.
func (p *Panel) Show(sel *domain.Selection) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if sel != nil && p.node != nil && sel.ID == p.node.ID && sel.CatalogID() == p.node.CatalogID() {
		p.node = sel
		return
	}
	p.node = sel
	p.expanded = make(map[int]bool)
	p.clearCopiedLocked()
}

// View returns a snapshot of what the panel shows.
func (p *Panel) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.node == nil {
		v := View{
			Empty:        true,
			Title:        EmptyTitle,
			Instructions: EmptyInstructions,
			Tips:         append([]string(nil), Tips...),
		}
		for _, c := range p.catalog.Categories() {
			v.Legend = append(v.Legend, LegendEntry{Category: c.ID, Label: c.Label, Color: c.Color})
		}
		return v
	}

	n := p.node
	v := View{
		Title:       DisplayLabel(n.Label),
		NodeID:      n.ID,
		Category:    n.Category,
		Description: n.Description,
	}
	if n.Category != "" {
		v.CategoryLabel = p.catalog.CategoryLabel(n.Category)
		v.CategoryColor = p.catalog.CategoryColor(n.Category)
	}
	for i, cmd := range n.Commands {
		out, ok := ExampleOutput(cmd.Command)
		v.Commands = append(v.Commands, CommandView{
			Index:       i,
			Title:       cmd.Title,
			Command:     cmd.Command,
			Description: cmd.Description,
			Tokens:      highlight.Highlight(cmd.Command),
			Output:      out,
			HasOutput:   ok,
			Expanded:    ok && p.expanded[i],
			Copied:      p.copied == i,
		})
	}
	return v
}

func (p *Panel) commandLocked(index int) (domain.Command, error) {
	if p.node == nil {
		return domain.Command{}, fmt.Errorf("%w: nothing selected", domain.ErrNodeNotFound)
	}
	if index < 0 || index >= len(p.node.Commands) {
		return domain.Command{}, fmt.Errorf("%w: index %d of %q", domain.ErrCommandNotFound, index, p.node.ID)
	}
	return p.node.Commands[index], nil
}

// ToggleOutput flips the example output of a command and returns the new state.
func (p *Panel) ToggleOutput(index int) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cmd, err := p.commandLocked(index)
	if err != nil {
		return false, err
	}
	if _, ok := ExampleOutput(cmd.Command); !ok {
		return false, fmt.Errorf("%w: %q", ErrNoExampleOutput, cmd.Title)
	}
	p.expanded[index] = !p.expanded[index]
	return p.expanded[index], nil
}

// Copy writes the command text to the clipboard. On success the command is
// marked copied until the confirmation expires or another copy replaces it.
// On failure the error is logged and returned and nothing else changes.
func (p *Panel) Copy(ctx context.Context, index int) error {
	_, _, err := p.copy(ctx, index, nil)
	return err
}

// CopyShown copies a command of nodeID, a step or catalog ID, when that node
// is the one displayed. Otherwise shown is false and nothing is copied.
func (p *Panel) CopyShown(ctx context.Context, nodeID string, index int) (cmd domain.Command, shown bool, err error) {
	return p.copy(ctx, index, func(n *domain.Selection) bool {
		return n.ID == nodeID || n.CatalogID() == nodeID
	})
}

func (p *Panel) copy(ctx context.Context, index int, match func(*domain.Selection) bool) (domain.Command, bool, error) {
	p.mu.Lock()
	if match != nil && (p.node == nil || !match(p.node)) {
		p.mu.Unlock()
		return domain.Command{}, false, nil
	}
	cmd, err := p.commandLocked(index)
	var nodeID string
	if p.node != nil {
		nodeID = p.node.ID
	}
	p.mu.Unlock()
	if err != nil {
		return domain.Command{}, true, err
	}

	copyErr := p.clipboard.Copy(ctx, cmd.Command)
	if p.onCopy != nil {
		p.onCopy(ctx, &domain.CopyEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventCopy, SessionID: p.sessionID},
			NodeID:    nodeID,
			Index:     index,
			Err:       copyErr,
		})
	}
	if copyErr != nil {
		p.logger.Error("Failed to copy", "node_id", nodeID, "index", index, "error", copyErr)
		return cmd, true, fmt.Errorf("failed to copy: %w", copyErr)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// The selection may have moved on while the clipboard was written.
	if p.node == nil || p.node.ID != nodeID {
		return cmd, true, nil
	}
	p.clearCopiedLocked()
	p.copied = index
	gen := p.gen
	p.timer = time.AfterFunc(p.confirm, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.gen == gen {
			p.copied = -1
			p.timer = nil
		}
	})
	return cmd, true, nil
}

// Copied returns the index currently showing "Copied!", or -1.
func (p *Panel) Copied() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.copied
}

func (p *Panel) clearCopiedLocked() {
	p.gen++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.copied = -1
}

// Close stops the pending confirmation timer.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearCopiedLocked()
}
