package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/pkiviz/internal/presentation/graph"
	"github.com/aretw0/pkiviz/internal/presentation/tui"
	"github.com/aretw0/pkiviz/pkg/catalog"
	"github.com/aretw0/pkiviz/pkg/highlight"
	"github.com/aretw0/pkiviz/pkg/render"
	"github.com/aretw0/pkiviz/pkg/session"
	"github.com/muesli/termenv"
)

// ErrUsage is returned when a command is called with the wrong arguments.
var ErrUsage = errors.New("usage")

// RendererFactory builds a panel renderer for a theme.
type RendererFactory func(dark bool) (tui.Renderer, error)

// Shell executes explorer commands against a viewer.
// Output is serialized so autoplay updates never interleave with command output.
type Shell struct {
	viewer   *session.Viewer
	factory  RendererFactory
	profile  termenv.Profile
	commands *Registry

	mu       sync.Mutex
	out      io.Writer
	renderer tui.Renderer
	dark     bool
}

// ShellOption configures a Shell.
type ShellOption func(*Shell)

// WithRendererFactory sets how panel Markdown is styled.
func WithRendererFactory(f RendererFactory) ShellOption {
	return func(s *Shell) {
		s.factory = f
	}
}

// WithProfile sets the colour profile used for highlighted commands.
func WithProfile(p termenv.Profile) ShellOption {
	return func(s *Shell) {
		s.profile = p
	}
}

// NewShell creates a shell writing to out. By default panels are printed as plain Markdown.
func NewShell(v *session.Viewer, out io.Writer, opts ...ShellOption) (*Shell, error) {
	s := &Shell{
		viewer:  v,
		out:     out,
		profile: termenv.Ascii,
		factory: func(bool) (tui.Renderer, error) { return tui.PlainRenderer(), nil },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dark = v.Snapshot().DarkMode
	r, err := s.factory(s.dark)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	s.renderer = r
	s.commands = s.registerCommands()
	return s, nil
}

// Printf writes to the shell output under the output lock.
func (s *Shell) Printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

// Println writes a line to the shell output under the output lock.
func (s *Shell) Println(args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, args...)
}

// markdown renders md with the current renderer and prints it.
func (s *Shell) markdown(md string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, err := s.renderer(md)
	if err != nil {
		return fmt.Errorf("failed to render: %w", err)
	}
	fmt.Fprint(s.out, text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(s.out)
	}
	return nil
}

// ShowPanel prints the detail panel, prefixed by the step indicator during autoplay.
func (s *Shell) ShowPanel() error {
	if step := s.viewer.StepIndicator(); step != "" {
		s.Println(step)
	}
	return s.markdown(s.viewer.Panel().Markdown())
}

// showStep prints the panel for an autoplay step announced by a diff.
// The step number comes from the diff because playback may have moved on.
func (s *Shell) showStep(step int) error {
	flow, ok := s.viewer.ActiveFlow()
	if !ok {
		return nil
	}
	s.Printf("\nStep %d of %d\n", step+1, len(flow.Steps))
	return s.markdown(s.viewer.Panel().Markdown())
}

// syncTheme rebuilds the renderer when the viewer theme changed.
func (s *Shell) syncTheme() error {
	dark := s.viewer.Snapshot().DarkMode
	s.mu.Lock()
	defer s.mu.Unlock()
	if dark == s.dark {
		return nil
	}
	r, err := s.factory(dark)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	s.renderer, s.dark = r, dark
	return nil
}

// Exec runs one input line. It reports quit for the exit commands.
// Blank lines are ignored.
func (s *Shell) Exec(ctx context.Context, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	err = s.commands.Execute(ctx, fields[0], fields[1:])
	if errors.Is(err, errQuit) {
		return true, nil
	}
	return false, err
}

func (s *Shell) registerCommands() *Registry {
	r := NewRegistry()
	r.Register("nodes", "nodes", "list catalog nodes", func(context.Context, []string) error {
		return s.table(tui.NodesTable)
	})
	r.Register("flows", "flows", "list beginner flows", func(context.Context, []string) error {
		return s.table(tui.FlowsTable)
	})
	r.Register("select", "select <id>", "show a node (or a flow step in beginner mode)", func(ctx context.Context, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("%w: select <id>", ErrUsage)
		}
		if err := s.viewer.SelectNode(ctx, args[0]); err != nil {
			return err
		}
		return s.ShowPanel()
	})
	r.Register("click", "click <x> <y>", "select whatever is drawn at a graph point", s.click)
	r.Register("clear", "clear", "clear the selection", func(ctx context.Context, _ []string) error {
		if err := s.viewer.ClearSelection(ctx); err != nil {
			return err
		}
		return s.ShowPanel()
	})
	r.Register("show", "show", "show the detail panel again", func(context.Context, []string) error {
		return s.ShowPanel()
	}, "panel")
	r.Register("mode", "mode", "toggle beginner mode", func(ctx context.Context, _ []string) error {
		if err := s.viewer.ToggleBeginnerMode(ctx); err != nil {
			return err
		}
		s.status()
		return nil
	})
	r.Register("flow", "flow <id>", "choose the beginner flow", func(ctx context.Context, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("%w: flow <id>", ErrUsage)
		}
		if err := s.viewer.SelectFlow(ctx, args[0]); err != nil {
			return err
		}
		s.status()
		return nil
	})
	r.Register("play", "play", "start autoplay of the flow", func(ctx context.Context, _ []string) error {
		return s.viewer.StartAutoPlay(ctx)
	})
	r.Register("stop", "stop", "stop autoplay", func(ctx context.Context, _ []string) error {
		return s.viewer.StopAutoPlay(ctx)
	})
	r.Register("dark", "dark", "toggle dark mode", func(ctx context.Context, _ []string) error {
		if err := s.viewer.ToggleDarkMode(ctx); err != nil {
			return err
		}
		if err := s.syncTheme(); err != nil {
			return err
		}
		s.status()
		return nil
	})
	r.Register("copy", "copy <n>", "copy command n of the selected node", func(ctx context.Context, args []string) error {
		n, err := commandNumber("copy", args)
		if err != nil {
			return err
		}
		if err := s.viewer.Copy(ctx, n); err != nil {
			return err
		}
		return s.ShowPanel()
	})
	r.Register("output", "output <n>", "toggle the example output of command n", func(_ context.Context, args []string) error {
		n, err := commandNumber("output", args)
		if err != nil {
			return err
		}
		if _, err := s.viewer.ToggleOutput(n); err != nil {
			return err
		}
		return s.ShowPanel()
	})
	r.Register("graph", "graph [svg|mermaid]", "export the current graph (mermaid by default)", func(_ context.Context, args []string) error {
		return s.graph(args)
	})
	r.Register("resize", "resize <w> <h>", "set the window size in pixels", s.resize)
	r.Register("highlight", "highlight <command>", "colour a command line", func(_ context.Context, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("%w: highlight <command>", ErrUsage)
		}
		tokens := highlight.Highlight(strings.Join(args, " "))
		s.Println(highlight.ANSI(tokens, s.profile, highlight.PaletteFor(s.viewer.Snapshot().DarkMode)))
		return nil
	})
	r.Register("status", "status", "show mode, flow and autoplay progress", func(context.Context, []string) error {
		s.status()
		return nil
	})
	r.Register("help", "help", "show this help", func(context.Context, []string) error {
		s.Println(r.Help())
		return nil
	}, "?")
	r.Register("quit", "quit", "leave", func(context.Context, []string) error {
		return errQuit
	}, "exit", "q")
	return r
}

// commandNumber parses the 1-based command number the user types into a panel index.
func commandNumber(name string, args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: %s <n>", ErrUsage, name)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s <n> with n >= 1", ErrUsage, name)
	}
	return n - 1, nil
}

func (s *Shell) table(build func(c *catalog.Catalog) (string, error)) error {
	md, err := build(s.viewer.Catalog())
	if err != nil {
		return err
	}
	return s.markdown(md)
}

func (s *Shell) click(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: click <x> <y>", ErrUsage)
	}
	x, errX := strconv.ParseFloat(args[0], 64)
	y, errY := strconv.ParseFloat(args[1], 64)
	if errX != nil || errY != nil {
		return fmt.Errorf("%w: click <x> <y> with numeric coordinates", ErrUsage)
	}
	id, err := s.viewer.SelectAt(ctx, x, y)
	if err != nil {
		return err
	}
	if id == "" {
		s.Println("Nothing at that point.")
		return nil
	}
	return s.ShowPanel()
}

func (s *Shell) graph(args []string) error {
	format := "mermaid"
	if len(args) > 0 {
		format = strings.ToLower(args[0])
	}
	switch format {
	case "mermaid", "mmd":
		s.Println(graph.ViewMermaid(s.viewer.Catalog(), s.viewer.Snapshot()))
		return nil
	case "svg":
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := render.SVG(s.out, s.viewer.Scene(time.Now()), render.SVGOptions{Standalone: true}); err != nil {
			return err
		}
		fmt.Fprintln(s.out)
		return nil
	}
	return fmt.Errorf("%w: graph [svg|mermaid]", ErrUsage)
}

func (s *Shell) resize(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: resize <w> <h>", ErrUsage)
	}
	w, errW := strconv.ParseFloat(args[0], 64)
	h, errH := strconv.ParseFloat(args[1], 64)
	if errW != nil || errH != nil {
		return fmt.Errorf("%w: resize <w> <h> with numeric sizes", ErrUsage)
	}
	if err := s.viewer.Resize(ctx, w, h); err != nil {
		return err
	}
	st := s.viewer.Snapshot()
	s.Printf("Graph area: %.0fx%.0f\n", st.Width, st.Height)
	return nil
}

func (s *Shell) status() {
	st := s.viewer.Snapshot()
	mode := "full"
	if st.BeginnerMode {
		mode = "beginner"
	}
	theme := "light"
	if st.DarkMode {
		theme = "dark"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Mode: %s  Theme: %s", mode, theme)
	if st.BeginnerMode {
		if flow, ok := s.viewer.ActiveFlow(); ok {
			fmt.Fprintf(&sb, "\n%s: %s", flow.Name, flow.Description)
		}
		if step := s.viewer.StepIndicator(); step != "" {
			fmt.Fprintf(&sb, " (%s)", step)
		}
	}
	s.Println(sb.String())
}
