package renderer

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/wobble/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFrameEnd struct {
	id       int
	cleanups int
}

func (f *fakeFrameEnd) CleanupFinished() { f.cleanups++ }
func (f *fakeFrameEnd) Done() bool       { return true }

type fakeFrame struct{ index uint32 }

func (f fakeFrame) ImageIndex() uint32 { return f.index }

type fakeWindow struct{ width, height int }

func (w *fakeWindow) FramebufferSize() (int, int) { return w.width, w.height }

type fakeDevice struct {
	nowCalls    int
	submissions int
	recreated   [][2]uint32
	constants   []PushConstants
	previous    []FrameEnd

	recreateErrs []error
	acquireErrs  []error
	suboptimal   bool
	presentErrs  []error
}

func (d *fakeDevice) Now() FrameEnd {
	d.nowCalls++
	return &fakeFrameEnd{id: -d.nowCalls}
}

func (d *fakeDevice) RecreateSwapchain(width, height uint32) error {
	if len(d.recreateErrs) > 0 {
		err := d.recreateErrs[0]
		d.recreateErrs = d.recreateErrs[1:]
		if err != nil {
			return err
		}
	}
	d.recreated = append(d.recreated, [2]uint32{width, height})
	return nil
}

func (d *fakeDevice) AcquireNextImage() (AcquiredImage, error) {
	if len(d.acquireErrs) > 0 {
		err := d.acquireErrs[0]
		d.acquireErrs = d.acquireErrs[1:]
		if err != nil {
			return AcquiredImage{}, err
		}
	}
	return AcquiredImage{Index: uint32(d.submissions % 3), Suboptimal: d.suboptimal}, nil
}

func (d *fakeDevice) RecordFrame(image AcquiredImage, constants PushConstants) (RecordedFrame, error) {
	d.constants = append(d.constants, constants)
	return fakeFrame{index: image.Index}, nil
}

func (d *fakeDevice) SubmitAndPresent(previous FrameEnd, image AcquiredImage, frame RecordedFrame) (FrameEnd, error) {
	d.previous = append(d.previous, previous)
	if len(d.presentErrs) > 0 {
		err := d.presentErrs[0]
		d.presentErrs = d.presentErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	d.submissions++
	return &fakeFrameEnd{id: d.submissions}, nil
}

func newTestLoop(width, height int) (LoopState, *fakeWindow, *fakeDevice) {
	device := &fakeDevice{}
	window := &fakeWindow{width: width, height: height}
	return NewLoopState(device, uint32(width), uint32(height)), window, device
}

func TestDrawFrameSubmitsOncePerTick(t *testing.T) {
	state, window, device := newTestLoop(800, 600)

	var err error
	for i := 0; i < 10; i++ {
		state, err = DrawFrame(state, window, device, float32(i))
		require.NoError(t, err)
		assert.Equal(t, i+1, device.submissions)
	}
	assert.Equal(t, uint64(10), state.FramesSubmitted)
	assert.Empty(t, device.recreated)
}

func TestDrawFrameChainsFrameEnds(t *testing.T) {
	state, window, device := newTestLoop(800, 600)
	initial := state.PreviousFrameEnd

	state, err := DrawFrame(state, window, device, 0)
	require.NoError(t, err)
	first := state.PreviousFrameEnd
	state, err = DrawFrame(state, window, device, 0)
	require.NoError(t, err)

	require.Len(t, device.previous, 2)
	assert.Same(t, initial, device.previous[0])
	assert.Same(t, first, device.previous[1])
	assert.Equal(t, 1, first.(*fakeFrameEnd).cleanups)
}

func TestDrawFrameSkipsZeroSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"zero width", 0, 600},
		{"zero height", 800, 0},
		{"minimized", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, window, device := newTestLoop(800, 600)
			window.width, window.height = tt.width, tt.height
			state.RecreateSwapchain = true

			for i := 0; i < 5; i++ {
				var err error
				state, err = DrawFrame(state, window, device, 0)
				require.NoError(t, err)
			}
			assert.Zero(t, device.submissions)
			assert.Empty(t, device.recreated)
			assert.True(t, state.RecreateSwapchain)
		})
	}
}

func TestResizeRecreatesWithNewSize(t *testing.T) {
	state, window, device := newTestLoop(800, 600)

	state, err := DrawFrame(state, window, device, 0)
	require.NoError(t, err)

	window.width, window.height = 1024, 768
	state = HandleEvent(state, core.Event{Code: core.EVENT_CODE_RESIZED, Width: 1024, Height: 768})
	state = HandleEvent(state, core.Event{Code: core.EVENT_CODE_MOUSE_MOVED, X: 512, Y: 192, Width: 1024, Height: 768})
	require.True(t, state.RecreateSwapchain)

	state, err = DrawFrame(state, window, device, 0)
	require.NoError(t, err)
	require.Equal(t, [][2]uint32{{1024, 768}}, device.recreated)
	assert.False(t, state.RecreateSwapchain)
	assert.Equal(t, uint32(1024), state.Width)
	assert.Equal(t, uint32(768), state.Height)
	assert.Equal(t, 2, device.submissions)
	assert.Equal(t, PushConstants{Time: 0, MouseX: 0.5, MouseY: 0.25}, device.constants[1])

	state = HandleEvent(state, core.Event{Code: core.EVENT_CODE_APPLICATION_QUIT})
	assert.False(t, state.Running)
}

func TestCursorReachesNextFrame(t *testing.T) {
	state, window, device := newTestLoop(800, 600)

	state = HandleEvent(state, core.Event{Code: core.EVENT_CODE_MOUSE_MOVED, X: 200, Y: 450, Width: 800, Height: 600})
	state, err := DrawFrame(state, window, device, 1.5)
	require.NoError(t, err)

	require.Len(t, device.constants, 1)
	assert.Equal(t, PushConstants{Time: 1.5, MouseX: 0.25, MouseY: 0.75}, device.constants[0])
}

func TestCloseStopsLoop(t *testing.T) {
	state, window, device := newTestLoop(800, 600)
	events := core.NewEventQueue()

	var err error
	for frame := 0; frame < 5; frame++ {
		if frame == 2 {
			events.Fire(core.Event{Code: core.EVENT_CODE_APPLICATION_QUIT})
		}
		events.Drain(func(e core.Event) {
			state = HandleEvent(state, e)
		})
		if !state.Running {
			break
		}
		state, err = DrawFrame(state, window, device, 0)
		require.NoError(t, err)
	}
	assert.False(t, state.Running)
	assert.Equal(t, 2, device.submissions)
}

func TestStaleAcquireRecovers(t *testing.T) {
	state, window, device := newTestLoop(800, 600)
	device.acquireErrs = []error{core.ErrSwapchainOutOfDate}

	state, err := DrawFrame(state, window, device, 0)
	require.NoError(t, err)
	assert.True(t, state.RecreateSwapchain)
	assert.Zero(t, device.submissions)

	state, err = DrawFrame(state, window, device, 0)
	require.NoError(t, err)
	assert.False(t, state.RecreateSwapchain)
	assert.Equal(t, [][2]uint32{{800, 600}}, device.recreated)
	assert.Equal(t, 1, device.submissions)
}

func TestUnsupportedExtentKeepsFlag(t *testing.T) {
	state, window, device := newTestLoop(800, 600)
	state.RecreateSwapchain = true
	device.recreateErrs = []error{
		core.ErrExtentNotSupported,
		core.ErrExtentNotSupported,
	}

	for i := 0; i < 2; i++ {
		var err error
		state, err = DrawFrame(state, window, device, 0)
		require.NoError(t, err)
		assert.True(t, state.RecreateSwapchain)
		assert.Zero(t, device.submissions)
	}

	state, err := DrawFrame(state, window, device, 0)
	require.NoError(t, err)
	assert.False(t, state.RecreateSwapchain)
	assert.Equal(t, 1, device.submissions)
}

func TestRecreateFailureIsFatal(t *testing.T) {
	state, window, device := newTestLoop(800, 600)
	state.RecreateSwapchain = true
	boom := errors.New("device lost")
	device.recreateErrs = []error{boom}

	_, err := DrawFrame(state, window, device, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestAcquireFailureIsFatal(t *testing.T) {
	state, window, device := newTestLoop(800, 600)
	boom := errors.New("surface lost")
	device.acquireErrs = []error{boom}

	_, err := DrawFrame(state, window, device, 0)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, device.submissions)
}

func TestSuboptimalAcquireSubmitsAndFlags(t *testing.T) {
	state, window, device := newTestLoop(800, 600)
	device.suboptimal = true

	state, err := DrawFrame(state, window, device, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, device.submissions)
	assert.True(t, state.RecreateSwapchain)
}

func TestStalePresentResetsMarker(t *testing.T) {
	state, window, device := newTestLoop(800, 600)
	device.presentErrs = []error{core.ErrSwapchainOutOfDate}
	nowBefore := device.nowCalls

	state, err := DrawFrame(state, window, device, 0)
	require.NoError(t, err)
	assert.True(t, state.RecreateSwapchain)
	assert.Equal(t, nowBefore+1, device.nowCalls)
	assert.Zero(t, state.FramesSubmitted)

	state, err = DrawFrame(state, window, device, 0)
	require.NoError(t, err)
	assert.Len(t, device.recreated, 1)
	assert.Equal(t, 1, device.submissions)
}

func TestOtherPresentErrorIsAbsorbed(t *testing.T) {
	state, window, device := newTestLoop(800, 600)
	device.presentErrs = []error{errors.New("device busy")}
	nowBefore := device.nowCalls

	state, err := DrawFrame(state, window, device, 0)
	require.NoError(t, err)
	assert.False(t, state.RecreateSwapchain)
	assert.Equal(t, nowBefore+1, device.nowCalls)

	state, err = DrawFrame(state, window, device, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), state.FramesSubmitted)
}

func TestHandleEventIgnoresUnknownCodes(t *testing.T) {
	state, _, _ := newTestLoop(800, 600)
	next := HandleEvent(state, core.Event{Code: 0})
	assert.Equal(t, state, next)
}
