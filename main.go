package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/wobble/engine"
	"github.com/spaghettifunk/wobble/engine/core"
)

func main() {
	cfg, err := engine.DefaultApplicationConfig()
	if err != nil {
		core.LogFatal("invalid application config: %s", err)
	}
	core.SetLogLevel(cfg.LogLevel)

	e, err := engine.New(cfg)
	if err != nil {
		core.LogFatal(err.Error())
	}

	if err := e.Initialize(); err != nil {
		_ = e.Shutdown()
		core.LogFatal("failed to initialize: %s", err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	go func() {
		<-sigCh
		e.RequestQuit()
	}()

	runErr := e.Run()
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown failed: %s", err)
	}
	if runErr != nil {
		core.LogFatal(runErr.Error())
	}
}
