package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/pkiviz/internal/presentation/tui"
	"github.com/aretw0/pkiviz/pkg/clipboard"
	"github.com/aretw0/pkiviz/pkg/domain"
	"github.com/aretw0/pkiviz/pkg/session"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ExploreOptions configures an interactive exploration session.
type ExploreOptions struct {
	In  io.Reader
	Out io.Writer
	// Plain disables glamour styling and the banner.
	Plain bool
	// Beginner starts in beginner mode, on Flow when set.
	Beginner bool
	Flow     string
}

// RunExplore runs the interactive explorer until the input ends, the user
// quits or ctx is cancelled.
func RunExplore(ctx context.Context, env *Env, opts ExploreOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	outFile, isFile := opts.Out.(*os.File)
	interactive := isFile && term.IsTerminal(int(outFile.Fd()))

	extra := []session.Option{session.WithBeginnerMode(opts.Beginner)}
	if opts.Flow != "" {
		extra = append(extra, session.WithFlow(opts.Flow))
	}
	if isFile {
		extra = append(extra, session.WithClipboard(clipboard.NewTerminal(outFile)))
	}
	v, err := NewViewer(env, extra...)
	if err != nil {
		return err
	}
	defer v.Close()

	shellOpts := []ShellOption{}
	if interactive && !opts.Plain {
		width := 0
		if w, _, err := term.GetSize(int(outFile.Fd())); err == nil {
			width = w
		}
		shellOpts = append(shellOpts,
			WithProfile(termenv.NewOutput(outFile).Profile),
			WithRendererFactory(func(dark bool) (tui.Renderer, error) {
				return tui.NewRenderer(dark, width)
			}),
		)
	}
	sh, err := NewShell(v, opts.Out, shellOpts...)
	if err != nil {
		return err
	}

	if interactive && !opts.Plain {
		tui.PrintBanner(opts.Out)
	}
	sh.Println("Type 'help' for commands, 'quit' to leave.")
	sh.status()
	if err := sh.ShowPanel(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates, unsubscribe := v.Subscribe()
	defer unsubscribe()
	go watchPlayback(ctx, sh, updates)

	if interactive {
		go WatchTerminalSize(ctx, v, int(outFile.Fd()), DefaultResizePoll)
	}

	lines := readLines(ctx, opts.In)
	for {
		if interactive {
			sh.Printf("pkiviz> ")
		}
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			line, err := SanitizeLine(line)
			if err != nil {
				sh.Printf("Error: %v\n", err)
				continue
			}
			quit, err := sh.Exec(ctx, line)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				sh.Printf("Error: %v\n", err)
				env.logger().Debug("Command failed", "line", strings.TrimSpace(line), "error", err)
			}
			if quit {
				return nil
			}
		}
	}
}

// watchPlayback prints every autoplay step and the end of playback.
func watchPlayback(ctx context.Context, sh *Shell, updates <-chan *domain.ViewDiff) {
	for {
		select {
		case <-ctx.Done():
			return
		case diff, ok := <-updates:
			if !ok {
				return
			}
			if diff.CurrentStep != nil && *diff.CurrentStep >= 0 {
				if err := sh.showStep(*diff.CurrentStep); err != nil {
					sh.Printf("Error: %v\n", err)
				}
			}
			if diff.Playing != nil && !*diff.Playing {
				sh.Println("Autoplay stopped.")
			}
		}
	}
}

// readLines feeds input lines to a channel so the loop can also wait on ctx.
// The channel is closed at end of input.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case ch <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// PrintPanel prints the panel for one node without starting a session.
func PrintPanel(env *Env, w io.Writer, nodeID string, plain bool) error {
	v, err := NewViewer(env)
	if err != nil {
		return err
	}
	defer v.Close()
	if err := v.SelectNode(context.Background(), nodeID); err != nil {
		return err
	}

	opts := []ShellOption{}
	if !plain {
		opts = append(opts, WithRendererFactory(func(dark bool) (tui.Renderer, error) {
			return tui.NewRenderer(dark, 0)
		}))
	}
	sh, err := NewShell(v, w, opts...)
	if err != nil {
		return fmt.Errorf("failed to prepare output: %w", err)
	}
	return sh.ShowPanel()
}
