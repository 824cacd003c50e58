package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/spaghettifunk/wobble/engine/core"
	"github.com/spaghettifunk/wobble/engine/platform"
	"github.com/spaghettifunk/wobble/engine/renderer"
	"github.com/spaghettifunk/wobble/engine/renderer/vulkan"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// seconds between two event polls while the window has no drawable area
const suspendedWaitSeconds = 0.1

type Engine struct {
	currentStage Stage
	config       *ApplicationConfig
	events       *core.EventQueue
	platform     *platform.Platform
	renderer     *vulkan.VulkanRenderer
	state        renderer.LoopState
	clock        *core.Clock
	metrics      *core.Metrics
	lastTime     float64
	quit         atomic.Bool
}

func New(cfg *ApplicationConfig) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("application config is required")
	}
	events := core.NewEventQueue()
	p := platform.New(events)

	return &Engine{
		currentStage: EngineStageUninitialized,
		config:       cfg,
		events:       events,
		platform:     p,
		renderer:     vulkan.New(p, cfg.Debug),
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
	}, nil
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine already initialized")
	}
	e.currentStage = EngineStageInitializing

	if err := e.platform.Startup(e.config.Name,
		e.config.StartPosX,
		e.config.StartPosY,
		e.config.StartWidth,
		e.config.StartHeight); err != nil {
		return err
	}

	width, height := e.platform.FramebufferSize()
	if err := e.renderer.Initialize(e.config.Name, uint32(width), uint32(height)); err != nil {
		return err
	}
	e.state = renderer.NewLoopState(e.renderer, uint32(width), uint32(height))

	e.currentStage = EngineStageInitialized
	core.LogInfo("Engine initialized")
	return nil
}

// Run drives the frame loop until the window closes, RequestQuit is called
// or a frame fails fatally.
func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine is not initialized")
	}
	e.currentStage = EngineStageRunning

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.state.Running {
		e.platform.PumpMessages()
		if e.quit.Load() {
			e.events.Fire(core.Event{Code: core.EVENT_CODE_APPLICATION_QUIT})
		}
		e.events.Drain(func(ev core.Event) {
			e.state = renderer.HandleEvent(e.state, ev)
		})
		if !e.state.Running {
			core.LogInfo("Quit requested, shutting down.")
			break
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()

		submitted := e.state.FramesSubmitted
		state, err := renderer.DrawFrame(e.state, e.platform, e.renderer, float32(currentTime))
		e.state = state
		if err != nil {
			return err
		}

		if e.state.FramesSubmitted == submitted {
			if w, h := e.platform.FramebufferSize(); w <= 0 || h <= 0 {
				e.platform.WaitMessages(suspendedWaitSeconds)
			}
		} else {
			e.report(currentTime)
		}
		e.lastTime = currentTime
	}
	return nil
}

func (e *Engine) report(currentTime float64) {
	if e.metrics.Update(currentTime - e.lastTime) {
		fps, frameTime := e.metrics.Frame()
		core.LogDebug("FPS: %.1f, frame time: %.3fms, frames: %d", fps, frameTime, e.state.FramesSubmitted)
	}
}

// RequestQuit asks the frame loop to stop on its next iteration. It may be
// called from any goroutine.
func (e *Engine) RequestQuit() {
	e.quit.Store(true)
	if e.currentStage == EngineStageRunning {
		e.platform.Wake()
	}
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	if err := e.renderer.Shutdown(e.state.PreviousFrameEnd); err != nil {
		core.LogError("renderer shutdown failed: %s", err)
	}
	e.state.PreviousFrameEnd = nil
	if err := e.platform.Shutdown(); err != nil {
		return err
	}
	e.currentStage = EngineStageUninitialized
	return nil
}
