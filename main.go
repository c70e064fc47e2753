package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/lguibr/asciiring/helpers"
	"github.com/lguibr/flowline/display"
	"github.com/lguibr/flowline/pipeline"
	"github.com/lguibr/flowline/utils"
)

// visibleRows bounds how many values each column draws per refresh.
const visibleRows = 25

func main() {
	cfg, err := utils.LoadConfigFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}
	// Logs go to stderr so they can be redirected away from the screen.
	log := utils.NewLogger(cfg, os.Stderr)

	p, err := pipeline.New(cfg, pipeline.WithLogger(log))
	if err != nil {
		log.WithError(err).Fatal("Failed to build pipeline")
	}

	displayPID, err := p.SpawnObserver(display.NewProps(cfg, log))
	if err != nil {
		log.WithError(err).Fatal("Failed to spawn display")
	}

	restore, err := setRawMode(os.Stdin.Fd())
	if err != nil {
		log.WithError(err).Warn("Raw mode unavailable, keys need Enter")
		restore = func() {}
	}

	p.StartRefresh(func() {
		snap, err := display.AskSnapshot(p.Engine(), displayPID, cfg.DisplayRefreshPeriod())
		if err != nil {
			log.WithError(err).Debug("Skipping refresh")
			return
		}
		screen := display.Render(snap, display.Status{
			GeneratorRunning: p.GeneratorStarted(),
			ConsumerRunning:  p.ConsumerStarted(),
		}, visibleRows)
		helpers.ClearScreen()
		fmt.Print(screen)
	})

	quit := make(chan struct{})
	var quitOnce sync.Once
	stop := func() { quitOnce.Do(func() { close(quit) }) }

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupt
		stop()
	}()
	go readKeys(p, stop)

	<-quit
	restore()
	if err := p.Shutdown(); err != nil {
		log.WithError(err).Error("Shutdown incomplete")
		os.Exit(1)
	}
}

// readKeys maps single key presses to pipeline commands until q is pressed.
func readKeys(p *pipeline.Pipeline, stop func()) {
	buf := make([]byte, 1)
	for {
		if _, err := os.Stdin.Read(buf); err != nil {
			stop()
			return
		}
		switch buf[0] {
		case 'g', 'G':
			p.ToggleGenerator()
		case 'c', 'C':
			p.ToggleConsumer()
		case 'q', 'Q', 3: // 3 is Ctrl-C in raw mode
			stop()
			return
		}
	}
}
