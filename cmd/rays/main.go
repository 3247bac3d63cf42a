package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	ossignal "os/signal"
	"time"

	rays "github.com/cbegin/rays-go"
	"github.com/cbegin/rays-go/internal/bridge"
	"github.com/cbegin/rays-go/internal/capture"
	"github.com/cbegin/rays-go/internal/config"
	"github.com/cbegin/rays-go/internal/signal"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

const refreshHz = 60

func main() {
	var (
		configPath = flag.String("config", "", "YAML settings file")
		ambient    = flag.Bool("ambient", false, "skip live capture and use the ambient generator")
		filePath   = flag.String("file", "", "play an mp3/wav file and analyse it instead of the microphone")
		fps        = flag.Int("fps", 30, "frame cap in low-fps mode")
		lowFPS     = flag.Bool("low-fps", false, "cap frames at -fps")
		reduced    = flag.Bool("reduced", false, "use the reduced particle count")
		duration   = flag.Duration("duration", 0, "stop after this long (0 = until interrupted)")
		trace      = flag.Int("trace", 0, "print N ambient states at 60 Hz and exit")
		script     = flag.String("script", "", "Lua script applying property updates")
		logLevel   = flag.String("log-level", "info", "log level: debug|info|warn|error")
	)
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("invalid -log-level %q: %v", *logLevel, err)
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stderr)

	if *trace > 0 {
		states := rays.RenderTrace(signal.NewAmbient(), rays.UniformDeltas(*trace, signal.DefaultDelta))
		if err := rays.WriteTrace(os.Stdout, states); err != nil {
			log.Fatal(err)
		}
		return
	}

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

	ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	session := rays.NewSession(
		rays.WithParams(params),
		rays.WithDevice(newDevice(*filePath)),
		rays.WithAmbientOnly(*ambient),
		rays.WithLowFPS(*lowFPS),
		rays.WithTargetFPS(*fps),
	)
	defer session.Close()

	if *script != "" {
		br := bridge.New(session.Params(), session.SetParams)
		if err := br.RunScript(*script); err != nil {
			log.Fatal(err)
		}
	}

	probe := session.Start(ctx)
	fmt.Fprintf(os.Stderr, "source: %s  device: %s", session.SourceKind(), probe.DeviceName)
	if !probe.Success {
		fmt.Fprintf(os.Stderr, "  (%s)", probe.Error)
	}
	fmt.Fprintln(os.Stderr)

	run(ctx, session)
	fmt.Println()
}

func newDevice(path string) capture.Device {
	if path != "" {
		return capture.NewFile(path, true)
	}
	return capture.NewMicrophone()
}

func run(ctx context.Context, session *rays.Session) {
	ticker := time.NewTicker(time.Second / refreshHz)
	defer ticker.Stop()
	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			ts := float64(now.Sub(start).Microseconds()) / 1000
			frame, ok := session.Tick(ts, 0)
			if !ok {
				continue
			}
			fmt.Print("\r" + meterLine(frame, terminalWidth()))
		}
	}
}

func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultWidth
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}
