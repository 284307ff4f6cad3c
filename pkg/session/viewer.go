package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/pkiviz/internal/logging"
	"github.com/aretw0/pkiviz/pkg/catalog"
	"github.com/aretw0/pkiviz/pkg/clipboard"
	"github.com/aretw0/pkiviz/pkg/domain"
	"github.com/aretw0/pkiviz/pkg/layout"
	"github.com/aretw0/pkiviz/pkg/panel"
	"github.com/aretw0/pkiviz/pkg/player"
	"github.com/aretw0/pkiviz/pkg/render"
	"github.com/google/uuid"
)

// GraphShare is the fraction of the window width given to the graph.
const GraphShare = 0.6

// Default window size used until the first Resize.
const (
	DefaultWindowWidth  = 1280
	DefaultWindowHeight = 800
)

var (
	// ErrViewerClosed is returned by operations on a closed viewer.
	ErrViewerClosed = errors.New("viewer is closed")
	// ErrDragDisabled is returned when dragging in beginner mode, where nodes are fixed.
	ErrDragDisabled = errors.New("node drag is disabled in beginner mode")
	// ErrInvalidSize is returned for non-positive window dimensions.
	ErrInvalidSize = errors.New("invalid window size")
)

// Viewer is the single interactive view over a catalog.
type Viewer struct {
	catalog   *catalog.Catalog
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	clipboard clipboard.Clipboard
	player    *player.Player
	panel     *panel.Panel
	streams   *StreamManager

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	state    *domain.ViewState
	sim      *layout.Simulation
	cooldown int
	viewport *layout.Viewport
	playGen  uint64
	closed   bool
}

type config struct {
	sessionID     string
	logger        *slog.Logger
	hooks         domain.LifecycleHooks
	clipboard     clipboard.Clipboard
	interval      time.Duration
	confirm       time.Duration
	windowW       float64
	windowH       float64
	dark          bool
	beginner      bool
	flowID        string
	streamBuffer  int
	cooldownTicks int
}

// Option configures a Viewer.
type Option func(*config)

// WithSessionID overrides the generated viewer ID.
func WithSessionID(id string) Option {
	return func(c *config) {
		c.sessionID = id
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = c.hooks.Merge(hooks)
	}
}

// WithClipboard sets the clipboard used for command copies.
func WithClipboard(cb clipboard.Clipboard) Option {
	return func(c *config) {
		c.clipboard = cb
	}
}

// WithStepInterval sets the autoplay interval.
func WithStepInterval(d time.Duration) Option {
	return func(c *config) {
		c.interval = d
	}
}

// WithCopyConfirmation sets how long the "Copied!" confirmation lasts.
func WithCopyConfirmation(d time.Duration) Option {
	return func(c *config) {
		c.confirm = d
	}
}

// WithWindow sets the initial window size.
func WithWindow(width, height float64) Option {
	return func(c *config) {
		c.windowW, c.windowH = width, height
	}
}

// WithDarkMode sets the initial theme.
func WithDarkMode(dark bool) Option {
	return func(c *config) {
		c.dark = dark
	}
}

// WithBeginnerMode starts the viewer in beginner mode.
func WithBeginnerMode(on bool) Option {
	return func(c *config) {
		c.beginner = on
	}
}

// WithFlow sets the initially active flow. Defaults to the first catalog flow.
func WithFlow(id string) Option {
	return func(c *config) {
		c.flowID = id
	}
}

// WithStreamBuffer sets the per-subscriber diff buffer.
func WithStreamBuffer(n int) Option {
	return func(c *config) {
		c.streamBuffer = n
	}
}

// WithCooldownTicks sets how many ticks the full-graph simulation runs.
func WithCooldownTicks(n int) Option {
	return func(c *config) {
		c.cooldownTicks = n
	}
}

// New creates a viewer in full mode with nothing selected.
func New(c *catalog.Catalog, opts ...Option) (*Viewer, error) {
	cfg := config{
		sessionID:     uuid.New().String()[:8],
		logger:        logging.NewNop(),
		clipboard:     clipboard.Unavailable{},
		interval:      player.DefaultInterval,
		confirm:       panel.DefaultConfirmDuration,
		windowW:       DefaultWindowWidth,
		windowH:       DefaultWindowHeight,
		streamBuffer:  DefaultStreamBuffer,
		cooldownTicks: layout.DefaultCooldownTicks,
	}
	if first, ok := c.FirstFlow(); ok {
		cfg.flowID = first.ID
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.windowW <= 0 || cfg.windowH <= 0 {
		return nil, fmt.Errorf("%w: %vx%v", ErrInvalidSize, cfg.windowW, cfg.windowH)
	}
	if cfg.flowID != "" {
		if _, err := c.Flow(cfg.flowID); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	v := &Viewer{
		catalog:   c,
		logger:    cfg.logger,
		hooks:     cfg.hooks,
		clipboard: cfg.clipboard,
		player:    player.New(player.WithInterval(cfg.interval), player.WithLogger(cfg.logger)),
		streams:   NewStreamManager(cfg.streamBuffer, cfg.logger),
		cooldown:  cfg.cooldownTicks,
		ctx:       ctx,
		cancel:    cancel,
	}
	v.panel = panel.New(c,
		panel.WithClipboard(cfg.clipboard),
		panel.WithLogger(cfg.logger),
		panel.WithConfirmDuration(cfg.confirm),
		panel.WithSessionID(cfg.sessionID),
		panel.WithCopyHook(v.hooks.OnCopy),
	)

	v.state = domain.NewViewState(cfg.sessionID, cfg.flowID, cfg.windowW*GraphShare, cfg.windowH)
	v.state.DarkMode = cfg.dark
	v.state.BeginnerMode = cfg.beginner && cfg.flowID != ""

	nodes, links := c.Nodes(), c.Links()
	v.sim = layout.NewSimulation(nodes, links)
	v.sim.Run(v.cooldown)
	v.resetViewportLocked()

	return v, nil
}

// ID returns the viewer's session ID.
func (v *Viewer) ID() string {
	return v.state.SessionID
}

// Catalog returns the catalog the viewer shows.
func (v *Viewer) Catalog() *catalog.Catalog {
	return v.catalog
}

// Interval returns the autoplay step interval.
func (v *Viewer) Interval() time.Duration {
	return v.player.Interval()
}

// update runs fn under the viewer lock, publishes the resulting diff, keeps
// the panel in sync and then fires the hooks fn queued.
func (v *Viewer) update(fn func(after *[]func()) error) error {
	var after []func()

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrViewerClosed
	}
	old := v.state.Snapshot()
	err := fn(&after)
	if diff := domain.Diff(old, v.state); diff != nil {
		v.panel.Show(v.state.Snapshot().Selected)
		v.streams.Broadcast(diff)
	}
	v.mu.Unlock()

	for _, f := range after {
		f()
	}
	return err
}

func (v *Viewer) event(t domain.EventType) *domain.ViewEvent {
	e := domain.NewViewEvent(t, v.state.SessionID)
	e.FlowID = v.state.FlowID
	e.BeginnerMode = v.state.BeginnerMode
	e.Step = v.state.CurrentStep
	e.NodeID = v.state.SelectedID()
	return e
}

func fire(ctx context.Context, after *[]func(), hook func(context.Context, *domain.ViewEvent), e *domain.ViewEvent) {
	if hook == nil {
		return
	}
	*after = append(*after, func() { hook(ctx, e) })
}

// stopPlaybackLocked ends autoplay if it is running.
func (v *Viewer) stopPlaybackLocked(after *[]func()) bool {
	if !v.state.Playing {
		return false
	}
	v.playGen++
	v.player.StopAsync()
	v.state.Playing = false
	v.state.CurrentStep = domain.NoStep
	v.logger.Debug("Autoplay stopped", "flow_id", v.state.FlowID)
	fire(v.ctx, after, v.hooks.OnPlaybackStop, v.event(domain.EventPlaybackStop))
	return true
}

func (v *Viewer) activeFlowLocked() (domain.Flow, bool) {
	if v.state.FlowID == "" {
		return domain.Flow{}, false
	}
	f, err := v.catalog.Flow(v.state.FlowID)
	return f, err == nil
}

func (v *Viewer) positionsLocked() map[string]layout.Point {
	if v.state.BeginnerMode {
		if f, ok := v.activeFlowLocked(); ok {
			return layout.FlowPositionMap(f, v.state.Width, v.state.Height)
		}
	}
	return v.sim.Positions()
}

func (v *Viewer) resetViewportLocked() {
	vp := layout.NewViewport(v.state.Width, v.state.Height)
	if v.state.BeginnerMode {
		vp.CenterAt(v.state.Width/2, v.state.Height/2)
		vp.SetZoom(layout.BeginnerFocusZoom)
	}
	v.viewport = vp
}

// ToggleBeginnerMode flips between the full graph and beginner flows,
// clearing the selection and stopping autoplay.
func (v *Viewer) ToggleBeginnerMode(ctx context.Context) error {
	return v.update(func(after *[]func()) error {
		v.stopPlaybackLocked(after)
		v.state.BeginnerMode = !v.state.BeginnerMode
		v.state.Selected = nil
		v.resetViewportLocked()
		v.logger.Debug("Mode changed", "beginner", v.state.BeginnerMode)
		fire(ctx, after, v.hooks.OnModeChange, v.event(domain.EventModeChange))
		return nil
	})
}

// SelectFlow activates a beginner flow and clears the selection. Autoplay
// stops only when the flow actually changes.
func (v *Viewer) SelectFlow(ctx context.Context, id string) error {
	if _, err := v.catalog.Flow(id); err != nil {
		return err
	}
	return v.update(func(after *[]func()) error {
		if id == v.state.FlowID {
			v.state.Selected = nil
			return nil
		}
		v.stopPlaybackLocked(after)
		v.state.FlowID = id
		v.state.Selected = nil
		if v.state.BeginnerMode {
			v.resetViewportLocked()
		}
		v.logger.Debug("Flow changed", "flow_id", id)
		fire(ctx, after, v.hooks.OnFlowChange, v.event(domain.EventFlowChange))
		return nil
	})
}

// SelectNode stops autoplay and selects a node. In full mode id is a catalog
// node ID; in beginner mode it is a step ID of the active flow.
func (v *Viewer) SelectNode(ctx context.Context, id string) error {
	return v.update(func(after *[]func()) error {
		var (
			sel *domain.Selection
			err error
		)
		if v.state.BeginnerMode {
			f, ok := v.activeFlowLocked()
			if !ok {
				return fmt.Errorf("%w: no active flow", domain.ErrFlowNotFound)
			}
			sel, err = v.catalog.ResolveStepID(f, id)
		} else {
			sel, err = v.catalog.Select(id)
		}
		if err != nil {
			return err
		}

		v.stopPlaybackLocked(after)
		v.state.Selected = sel
		if p, ok := v.positionsLocked()[sel.ID]; ok {
			v.viewport.Focus(p, v.state.BeginnerMode)
		}
		v.logger.Debug("Node selected", "node_id", sel.ID, "catalog_id", sel.CatalogID())
		fire(ctx, after, v.hooks.OnSelect, v.event(domain.EventSelect))
		return nil
	})
}

// SelectAt selects the node under a screen point and returns its ID.
// Nothing under the pointer returns "" and leaves the view untouched.
func (v *Viewer) SelectAt(ctx context.Context, x, y float64) (string, error) {
	v.mu.Lock()
	id := v.viewport.HitTest(layout.Point{X: x, Y: y}, v.positionsLocked(), v.state.BeginnerMode)
	v.mu.Unlock()
	if id == "" {
		return "", nil
	}
	return id, v.SelectNode(ctx, id)
}

// ClearSelection empties the detail panel.
func (v *Viewer) ClearSelection(ctx context.Context) error {
	return v.update(func(after *[]func()) error {
		v.state.Selected = nil
		return nil
	})
}

// ToggleDarkMode flips the theme.
func (v *Viewer) ToggleDarkMode(ctx context.Context) error {
	return v.update(func(after *[]func()) error {
		v.state.DarkMode = !v.state.DarkMode
		return nil
	})
}

// Resize applies a new window size. The graph takes GraphShare of the width.
func (v *Viewer) Resize(ctx context.Context, windowWidth, windowHeight float64) error {
	if windowWidth <= 0 || windowHeight <= 0 {
		return fmt.Errorf("%w: %vx%v", ErrInvalidSize, windowWidth, windowHeight)
	}
	return v.update(func(after *[]func()) error {
		v.state.Width = windowWidth * GraphShare
		v.state.Height = windowHeight
		v.viewport.Width, v.viewport.Height = v.state.Width, v.state.Height
		if v.state.BeginnerMode {
			v.resetViewportLocked()
		}
		return nil
	})
}

// StartAutoPlay walks the active flow from its first step, one step per
// interval, and stops after the last one.
func (v *Viewer) StartAutoPlay(ctx context.Context) error {
	return v.update(func(after *[]func()) error {
		if !v.state.BeginnerMode {
			return domain.ErrNotBeginnerMode
		}
		f, ok := v.activeFlowLocked()
		if !ok {
			return domain.ErrNotBeginnerMode
		}
		if len(f.Steps) == 0 {
			return fmt.Errorf("%w: %q", domain.ErrEmptyFlow, f.ID)
		}

		v.stopPlaybackLocked(after)
		v.playGen++
		gen := v.playGen
		v.state.Playing = true
		if err := v.applyStepLocked(ctx, after, f, 0); err != nil {
			return err
		}
		v.logger.Debug("Autoplay started", "flow_id", f.ID, "steps", len(f.Steps))

		v.player.Start(v.ctx, len(f.Steps),
			func(step int) { v.onTick(gen, f, step) },
			func(completed bool) { v.onPlayerStop(gen, completed) },
		)
		return nil
	})
}

func (v *Viewer) applyStepLocked(ctx context.Context, after *[]func(), f domain.Flow, step int) error {
	sel, err := v.catalog.ResolveStep(f, step)
	if err != nil {
		return err
	}
	v.state.CurrentStep = step
	v.state.Selected = sel
	fire(ctx, after, v.hooks.OnStep, v.event(domain.EventStep))
	return nil
}

func (v *Viewer) onTick(gen uint64, f domain.Flow, step int) {
	_ = v.update(func(after *[]func()) error {
		if gen != v.playGen || !v.state.Playing || step == v.state.CurrentStep {
			return nil
		}
		if err := v.applyStepLocked(v.ctx, after, f, step); err != nil {
			v.logger.Error("Autoplay step failed", "flow_id", f.ID, "step", step, "error", err)
		}
		return nil
	})
}

func (v *Viewer) onPlayerStop(gen uint64, completed bool) {
	_ = v.update(func(after *[]func()) error {
		if gen != v.playGen || !v.state.Playing {
			return nil
		}
		v.playGen++
		v.state.Playing = false
		v.state.CurrentStep = domain.NoStep
		e := v.event(domain.EventPlaybackStop)
		e.Completed = completed
		v.logger.Debug("Autoplay finished", "flow_id", v.state.FlowID, "completed", completed)
		fire(v.ctx, after, v.hooks.OnPlaybackStop, e)
		return nil
	})
}

// StopAutoPlay ends autoplay. It is a no-op when nothing is playing.
func (v *Viewer) StopAutoPlay(ctx context.Context) error {
	return v.update(func(after *[]func()) error {
		v.stopPlaybackLocked(after)
		return nil
	})
}

// Snapshot returns a copy of the current view state.
func (v *Viewer) Snapshot() *domain.ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.Snapshot()
}

// Subscribe returns a stream of diffs. Slow subscribers lose diffs rather
// than block the viewer. Call cancel to unsubscribe.
func (v *Viewer) Subscribe() (<-chan *domain.ViewDiff, func()) {
	return v.streams.Subscribe()
}

// Positions returns the node coordinates of the current mode: fixed flow
// coordinates in beginner mode, settled simulation coordinates otherwise.
func (v *Viewer) Positions() map[string]layout.Point {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.positionsLocked()
}

// Viewport returns a copy of the camera.
func (v *Viewer) Viewport() layout.Viewport {
	v.mu.Lock()
	defer v.mu.Unlock()
	return *v.viewport
}

// Zoom sets the camera zoom, clamped to the viewport limits.
func (v *Viewer) Zoom(k float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.viewport.SetZoom(k)
}

// Pan moves the camera by a screen-space delta.
func (v *Viewer) Pan(dx, dy float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.viewport.Pan(dx, dy)
}

// Drag pins a full-graph node at (x, y) and lets the rest of the graph settle.
func (v *Viewer) Drag(id string, x, y float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state.BeginnerMode {
		return ErrDragDisabled
	}
	if err := v.sim.Pin(id, x, y); err != nil {
		return err
	}
	v.sim.Run(v.cooldown)
	return nil
}

// Release unpins a dragged node.
func (v *Viewer) Release(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state.BeginnerMode {
		return ErrDragDisabled
	}
	if err := v.sim.Unpin(id); err != nil {
		return err
	}
	v.sim.Run(v.cooldown)
	return nil
}

// ActiveFlow returns the active flow, if any.
func (v *Viewer) ActiveFlow() (domain.Flow, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.activeFlowLocked()
}

// StepIndicator returns "Step k of n" while autoplay runs, "" otherwise.
func (v *Viewer) StepIndicator() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.state.Playing || !v.state.BeginnerMode {
		return ""
	}
	flow, ok := v.activeFlowLocked()
	if !ok {
		return ""
	}
	return fmt.Sprintf("Step %d of %d", v.state.CurrentStep+1, len(flow.Steps))
}

// Scene builds the drawable frame at time t.
func (v *Viewer) Scene(t time.Time) *render.Scene {
	v.mu.Lock()
	defer v.mu.Unlock()
	return render.BuildScene(v.catalog, v.state, v.positionsLocked(),
		render.AtTime(t), render.WithViewport(*v.viewport))
}

// Panel returns what the detail panel currently shows.
func (v *Viewer) Panel() panel.View {
	return v.panel.View()
}

// ToggleOutput flips the example output of the selected node's command.
func (v *Viewer) ToggleOutput(index int) (bool, error) {
	return v.panel.ToggleOutput(index)
}

// Copy copies a command of the selected node and shows the confirmation.
func (v *Viewer) Copy(ctx context.Context, index int) error {
	return v.panel.Copy(ctx, index)
}

// CopyCommand copies a command of any node. When the node is the one shown
// in the panel the copy goes through the panel so its confirmation appears.
func (v *Viewer) CopyCommand(ctx context.Context, nodeID string, index int) (domain.Command, error) {
	if cmd, shown, err := v.panel.CopyShown(ctx, nodeID, index); shown {
		return cmd, err
	}

	n, err := v.catalog.Node(nodeID)
	if err != nil {
		return domain.Command{}, err
	}
	if index < 0 || index >= len(n.Commands) {
		return domain.Command{}, fmt.Errorf("%w: index %d of %q", domain.ErrCommandNotFound, index, nodeID)
	}
	cmd := n.Commands[index]
	copyErr := v.clipboard.Copy(ctx, cmd.Command)
	if v.hooks.OnCopy != nil {
		v.hooks.OnCopy(ctx, &domain.CopyEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventCopy, SessionID: v.ID()},
			NodeID:    nodeID,
			Index:     index,
			Err:       copyErr,
		})
	}
	if copyErr != nil {
		v.logger.Error("Failed to copy", "node_id", nodeID, "index", index, "error", copyErr)
		return cmd, fmt.Errorf("failed to copy: %w", copyErr)
	}
	return cmd, nil
}

// Close stops autoplay, closes every subscriber and releases timers.
// It is idempotent.
func (v *Viewer) Close() error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	var after []func()
	old := v.state.Snapshot()
	v.stopPlaybackLocked(&after)
	v.streams.Broadcast(domain.Diff(old, v.state))
	v.closed = true
	v.mu.Unlock()

	for _, fn := range after {
		fn()
	}
	v.player.Close()
	v.panel.Close()
	v.streams.CloseAll()
	v.cancel()
	return nil
}
