// =======================
// tui/viewer.go
// =======================

// Package tui shows a computation run in the terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"

	"hashviz/engine"
	"hashviz/render"
)

// Canceller stops a running computation.
type Canceller interface {
	CancelComputations() error
}

var spinner = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

// Viewer is an engine.Delegate that keeps the state shown on screen.
type Viewer struct {
	title string

	mu          sync.Mutex
	processed   uint64
	hashes      uint64
	hashImg     *image.RGBA
	bucketImg   *image.RGBA
	summary     string
	finished    bool
	cancelled   bool
	showBuckets bool
	frame       int

	cached           *grid
	cachedBuckets    bool
	cachedW, cachedH int
}

var _ engine.Delegate = (*Viewer)(nil)

// NewViewer returns a Viewer with the given header title.
func NewViewer(title string) *Viewer {
	return &Viewer{title: title}
}

func (v *Viewer) UpdateHashImageData(img *image.RGBA) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.hashImg = img
	v.cached = nil
}

func (v *Viewer) UpdateBucketImageData(img *image.RGBA) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.bucketImg = img
	v.cached = nil
}

func (v *Viewer) IncrementHashCount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.hashes++
}

func (v *Viewer) NumberOfInputsChanged(n uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.processed = n
}

func (v *Viewer) TasksDidEnd(summary string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.finished = true
	v.summary = summary
}

func (v *Viewer) TasksDidCancel() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.finished = true
	v.cancelled = true
}

// Finished reports whether the run has ended.
func (v *Viewer) Finished() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.finished
}

// Images returns the last rendered hash and bucket images.
func (v *Viewer) Images() (*image.RGBA, *image.RGBA) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hashImg, v.bucketImg
}

// Summary returns the report delivered when the run ended.
func (v *Viewer) Summary() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.summary
}

// ToggleImage switches between the hash image and the bucket image.
func (v *Viewer) ToggleImage() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.showBuckets = !v.showBuckets
	v.cached = nil
}

// Draw paints the current state onto s.
func (v *Viewer) Draw(s tcell.Screen) {
	v.mu.Lock()
	defer v.mu.Unlock()

	w, h := s.Size()
	v.frame++

	header := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	drawText(s, 1, 0, header, fmt.Sprintf("%s | Tab:toggle image  Q:cancel/quit", v.title))

	status, style := v.status()
	drawText(s, 1, 1, style, status)

	if !v.finished || v.cancelled {
		return
	}

	lines := strings.Split(v.summary, "\n")
	rows := h - 3 - len(lines)
	cols := w - 2
	if rows > 0 && cols > 0 {
		if v.cached == nil || v.cachedBuckets != v.showBuckets || v.cachedW != cols || v.cachedH != rows {
			img := v.hashImg
			if v.showBuckets {
				img = v.bucketImg
			}
			v.cached = downsample(img, cols, rows)
			v.cachedBuckets, v.cachedW, v.cachedH = v.showBuckets, cols, rows
		}
		v.cached.draw(s, 1, 2)
	}

	info := tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	for i, line := range lines {
		drawText(s, 1, h-len(lines)+i, info, line)
	}
}

func (v *Viewer) status() (string, tcell.Style) {
	count := humanize.Comma(int64(v.processed))

	switch {
	case v.cancelled:
		return fmt.Sprintf("Cancelled after %s inputs. Press Q to quit.", count),
			tcell.StyleDefault.Foreground(tcell.ColorYellow)
	case v.finished:
		view := "hash image"
		if v.showBuckets {
			view = "bucket image"
		}
		return fmt.Sprintf("Finished %s inputs. Showing %s.", count, view),
			tcell.StyleDefault.Foreground(tcell.ColorGreen)
	default:
		t := float64(v.frame%len(spinner)) / float64(len(spinner)-1)
		c := render.DefaultPalette.At(t)
		return fmt.Sprintf("%c Hashing... %s inputs", spinner[v.frame%len(spinner)], count),
			tcell.StyleDefault.Foreground(toTcell(c))
	}
}

// Run takes over the terminal and shows the run until the user quits after
// it has ended. Cancelling ctx cancels the run.
func Run(ctx context.Context, eng Canceller, events <-chan engine.Event, v *Viewer) error {
	s, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("screen init failed: %w", err)
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("screen start failed: %w", err)
	}
	defer s.Fini()

	return run(ctx, s, eng, events, v, 40*time.Millisecond)
}

func run(ctx context.Context, s tcell.Screen, eng Canceller, events <-chan engine.Event, v *Viewer, interval time.Duration) error {
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	dispatchErr := make(chan error, 1)
	dispatchDone := make(chan struct{})
	go func() {
		defer close(dispatchDone)
		_, err := engine.Dispatch(dispatchCtx, events, v)
		dispatchErr <- err
	}()

	// Events left unread stay queued for the caller.
	defer func() {
		stopDispatch()
		<-dispatchDone
	}()

	cancelErr := make(chan error, 1)
	cancel := func() {
		if err := eng.CancelComputations(); err != nil && !errors.Is(err, engine.ErrInvalidState) {
			select {
			case cancelErr <- err:
			default:
			}
		}
	}

	quit := make(chan struct{})
	toggle := make(chan struct{}, 1)

	// Input handler
	go func() {
		defer close(quit)
		for {
			ev := s.PollEvent()
			switch ev := ev.(type) {
			case nil:
				return
			case *tcell.EventKey:
				switch {
				case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC,
					ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
					if v.Finished() {
						return
					}
					cancel()
				case ev.Key() == tcell.KeyTab,
					ev.Key() == tcell.KeyRune && (ev.Rune() == 't' || ev.Rune() == 'T'):
					select {
					case toggle <- struct{}{}:
					default:
					}
				}
			case *tcell.EventResize:
				s.Sync()
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	done := ctx.Done()
	for {
		select {
		case <-quit:
			return nil
		case <-done:
			done = nil
			cancel()
		case err := <-dispatchErr:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
		case err := <-cancelErr:
			return err
		case <-toggle:
			v.ToggleImage()
		case <-ticker.C:
			s.Clear()
			v.Draw(s)
			s.Show()
		}
	}
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, str string) {
	for i, r := range []rune(str) {
		s.SetContent(x+i, y, r, nil, style)
	}
}
