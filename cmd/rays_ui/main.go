package main

import (
	"context"
	"flag"
	"log"
	"time"

	rays "github.com/cbegin/rays-go"
	"github.com/cbegin/rays-go/internal/bridge"
	"github.com/cbegin/rays-go/internal/capture"
	"github.com/cbegin/rays-go/internal/config"
	"github.com/cbegin/rays-go/internal/render"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
)

const (
	windowW      = 1280
	windowH      = 720
	probeTimeout = 10 * time.Second
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML settings file")
		ambient    = flag.Bool("ambient", false, "skip live capture and use the ambient generator")
		filePath   = flag.String("file", "", "play an mp3/wav file and visualise it instead of the microphone")
		fps        = flag.Int("fps", 30, "frame cap in low-fps mode")
		lowFPS     = flag.Bool("low-fps", false, "cap frames at -fps")
		reduced    = flag.Bool("reduced", false, "use the reduced particle count")
		script     = flag.String("script", "", "Lua script applying property updates")
		fullscreen = flag.Bool("fullscreen", false, "start fullscreen")
		logLevel   = flag.String("log-level", "info", "log level: debug|info|warn|error")
	)
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("invalid -log-level %q: %v", *logLevel, err)
	}
	logrus.SetLevel(level)

	params := config.Defaults()
	if *configPath != "" {
		params, err = config.Load(*configPath)
		if err != nil {
			log.Fatal(err)
		}
	}
	if *reduced {
		params.SetReduced(true)
	}

	var dev capture.Device = capture.NewMicrophone()
	if *filePath != "" {
		dev = capture.NewFile(*filePath, true)
	}
	session := rays.NewSession(
		rays.WithParams(params),
		rays.WithDevice(dev),
		rays.WithAmbientOnly(*ambient),
		rays.WithLowFPS(*lowFPS),
		rays.WithTargetFPS(*fps),
	)
	defer session.Close()

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	probe := session.Start(ctx)
	cancel()
	if !probe.Success {
		logrus.WithFields(logrus.Fields{
			"function": "main",
			"reason":   probe.Error,
		}).Info("Running in ambient mode")
	}

	g := render.NewGame(session, windowW, windowH)
	br := bridge.New(session.Params(), g.SetParams)
	g.OnLowFPSToggle = func(enabled bool) {
		tier := 0
		if enabled {
			tier = 1
		}
		if err := br.Apply(bridge.PropFPS, tier); err != nil {
			logrus.WithError(err).Warn("Could not record fps tier")
		}
	}
	if *script != "" {
		if err := br.RunScript(*script); err != nil {
			log.Fatal(err)
		}
	}

	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle("Rays")
	ebiten.SetScreenClearedEveryFrame(false)
	ebiten.SetFullscreen(*fullscreen)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
