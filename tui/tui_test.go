package tui

import (
	"context"
	"image"
	"image/color"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hashviz/engine"
	"hashviz/render"
)

type fakeEngine struct {
	cancels atomic.Int32
	events  chan engine.Event
}

func (f *fakeEngine) CancelComputations() error {
	if f.cancels.Add(1) > 1 {
		return engine.ErrInvalidState
	}
	f.events <- engine.Event{Kind: engine.EventTasksDidCancel}
	return nil
}

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(60, 20)
	t.Cleanup(s.Fini)
	return s
}

func screenText(s tcell.SimulationScreen) string {
	cells, w, h := s.GetContents()
	var b strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := cells[y*w+x]
			if len(c.Runes) == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteRune(c.Runes[0])
		}
		b.WriteRune('\n')
	}
	return b.String()
}

func TestSpan(t *testing.T) {
	start, end := span(0, 4, 100)
	assert.Equal(t, 0, start)
	assert.Equal(t, 25, end)

	start, end = span(3, 4, 100)
	assert.Equal(t, 75, start)
	assert.Equal(t, 100, end)

	// More slots than pixels still yields a one pixel range.
	start, end = span(9, 10, 3)
	assert.Equal(t, 2, start)
	assert.Equal(t, 3, end)
}

func TestDownsample(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			img.SetRGBA(x, y, render.Background)
		}
	}
	mark := color.RGBA{R: 255, A: 255}
	img.SetRGBA(39, 39, mark)

	g := downsample(img, 4, 2)
	require.Len(t, g.cells, 8)

	last := g.cells[len(g.cells)-1]
	assert.Equal(t, render.Background, last.top)
	assert.Equal(t, mark, last.bottom)

	for _, c := range g.cells[:len(g.cells)-1] {
		assert.Equal(t, render.Background, c.top)
		assert.Equal(t, render.Background, c.bottom)
	}
}

func TestDownsample_NilImage(t *testing.T) {
	g := downsample(nil, 3, 3)
	assert.Len(t, g.cells, 9)
}

func TestViewer_Delegate(t *testing.T) {
	v := NewViewer("Polynomial")

	v.IncrementHashCount()
	v.IncrementHashCount()
	v.NumberOfInputsChanged(2)
	assert.False(t, v.Finished())

	v.TasksDidEnd("done")
	assert.True(t, v.Finished())
	assert.Equal(t, uint64(2), v.hashes)
	assert.Equal(t, uint64(2), v.processed)
	assert.Equal(t, "done", v.summary)

	v.ToggleImage()
	assert.True(t, v.showBuckets)
}

func TestViewer_DrawRunning(t *testing.T) {
	s := newScreen(t)
	v := NewViewer("Polynomial")
	v.NumberOfInputsChanged(12345)

	v.Draw(s)
	s.Show()

	text := screenText(s)
	assert.Contains(t, text, "Polynomial")
	assert.Contains(t, text, "Hashing... 12,345 inputs")
}

func TestViewer_DrawFinished(t *testing.T) {
	s := newScreen(t)
	v := NewViewer("Polynomial")

	opts := render.Options{ImageWidth: 8, ImageHeight: 8, Resolution: 1, PointSize: 1, BucketHeight: 100}
	hashImg, bucketImg := render.Render(nil, 4, opts)
	v.UpdateHashImageData(hashImg)
	v.UpdateBucketImageData(bucketImg)
	v.NumberOfInputsChanged(10)
	v.TasksDidEnd("line one\nline two")

	v.Draw(s)
	s.Show()

	text := screenText(s)
	assert.Contains(t, text, "Finished 10 inputs. Showing hash image.")
	assert.Contains(t, text, "line one")
	assert.Contains(t, text, "line two")

	r, _, _, _ := s.GetContent(1, 2)
	assert.Equal(t, halfBlock, r)

	v.ToggleImage()
	s.Clear()
	v.Draw(s)
	s.Show()
	assert.Contains(t, screenText(s), "Showing bucket image.")
}

func TestRun_QuitCancelsThenExits(t *testing.T) {
	s := newScreen(t)
	eng := &fakeEngine{events: make(chan engine.Event, 4)}
	v := NewViewer("Polynomial")

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(context.Background(), s, eng, eng.events, v, time.Millisecond)
	}()

	s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	require.Eventually(t, v.Finished, time.Second, time.Millisecond)
	assert.Equal(t, int32(1), eng.cancels.Load())

	s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("viewer did not exit")
	}
	assert.True(t, v.cancelled)
}

func TestRun_ContextCancels(t *testing.T) {
	s := newScreen(t)
	eng := &fakeEngine{events: make(chan engine.Event, 4)}
	v := NewViewer("Polynomial")

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx, s, eng, eng.events, v, time.Millisecond)
	}()

	cancel()
	require.Eventually(t, v.Finished, time.Second, time.Millisecond)

	s.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("viewer did not exit")
	}
}
