// Command nyquist-stream replays a reference/measurement pair as a live
// capture and streams the tessellated Nyquist curve to WebSocket viewers.
//
// Usage:
//
//	nyquist-stream ref.wav meas.wav
//	nyquist-stream -addr :9000 -fps 30 -ppo 6 ref.wav meas.wav
//
// Viewers connect to /ws and receive one binary frame per tick. They may
// send JSON control messages such as {"pointsPerOctave": 24} or
// {"coherence": true, "coherenceThreshold": 0.6}.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tphakala/go-nyquist"
	"github.com/tphakala/go-nyquist/internal/cli"
	"github.com/tphakala/go-nyquist/internal/gpu"
	"github.com/tphakala/go-nyquist/internal/measure"
	"github.com/tphakala/go-nyquist/internal/stream"
)

const (
	minRequiredArgs = 2

	defaultAddr = ":8080"
	defaultFPS  = 10

	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var f cli.Flags
	f.Register(flag.CommandLine)
	addr := flag.String("addr", defaultAddr, "Listen address")
	fps := flag.Int("fps", defaultFPS, "Frames per second")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] reference.wav measurement.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		return errors.New("insufficient arguments")
	}
	if *fps < 1 {
		return fmt.Errorf("fps must be positive, got %d", *fps)
	}

	f.SetupLogging()

	cfg, err := f.RenderConfig()
	if err != nil {
		return err
	}
	opts, err := f.Options()
	if err != nil {
		return err
	}
	in, err := f.Load(args[0], args[1])
	if err != nil {
		return err
	}
	replay, err := measure.NewReplay(in.Ref, in.Meas, f.HopSize())
	if err != nil {
		return err
	}

	plot, err := nyquist.NewPlotWithConfig(cfg)
	if err != nil {
		return err
	}
	plot.OnChange(func(c nyquist.RenderConfig) {
		log.Printf("config: ppo=%d coherence=%t threshold=%.2f",
			c.PointsPerOctave, c.CoherenceGate, c.CoherenceThreshold)
	})

	hub := stream.NewHub(plot)
	defer hub.Close()

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Printf("streaming on %s/ws at %d fps", *addr, *fps)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	dev := gpu.NewMemoryDevice()
	r := nyquist.NewRenderer(dev, gpu.NopProgram{}, opts...)
	defer r.Release()

	ticker := time.NewTicker(time.Second / time.Duration(*fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err, ok := <-errc:
			if ok {
				return err
			}
			return nil
		case <-ticker.C:
			if err := replay.Step(in.Analyzer); err != nil {
				return err
			}
			r.Synchronize(plot)
			stats := r.Render(in.Analyzer)
			if err := dev.Err(); err != nil {
				return err
			}
			if err := hub.Broadcast(dev.Frame()); err != nil {
				return err
			}
			nyquist.Logger().Debug("frame",
				slog.Int("emitted", stats.Emitted),
				slog.Int("clients", hub.Clients()),
				slog.Int("laps", replay.Laps()))
		}
	}
}
