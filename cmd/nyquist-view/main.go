// Command nyquist-view draws the live Nyquist curve of a replayed
// reference/measurement pair in an OpenGL window.
//
// Usage:
//
//	nyquist-view ref.wav meas.wav
//	nyquist-view -ppo 6 -coherence ref.wav meas.wav
//
// Keys:
//
//	+ / -   double or halve points per octave
//	C       toggle coherence dimming
//	[ / ]   lower or raise the coherence threshold
//	Space   pause the replay
//	Esc     quit
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/tphakala/go-nyquist"
	"github.com/tphakala/go-nyquist/internal/cli"
	"github.com/tphakala/go-nyquist/internal/gpu/glbackend"
	"github.com/tphakala/go-nyquist/internal/measure"
)

const (
	minRequiredArgs = 2

	defaultWindowSize = 800
	defaultFPS        = 20
	defaultExtent     = 1.5

	thresholdStep = 0.05
)

var background = [4]float32{0.08, 0.08, 0.1, 1}

func init() {
	// GLFW and the GL context must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var f cli.Flags
	f.Register(flag.CommandLine)
	extent := flag.Float64("extent", defaultExtent, "Half width of the plotted square")
	fps := flag.Int("fps", defaultFPS, "Analysis steps per second")
	size := flag.Int("window-size", defaultWindowSize, "Initial window size in points")
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

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(*size, *size, "Nyquist", nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer window.Destroy()
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := glbackend.Init(); err != nil {
		return err
	}
	if f.Verbose {
		log.Printf("OpenGL %s", glbackend.Version())
	}

	program := glbackend.NewProgram()
	if p, ok := program.(*glbackend.Program); ok {
		defer p.Delete()
	}
	r := nyquist.NewRenderer(glbackend.Device{}, program, opts...)
	defer r.Release()

	paused := false
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		if err := onKey(plot, key); err != nil {
			log.Print(err)
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeySpace:
			paused = !paused
		}
	})

	step := time.Second / time.Duration(*fps)
	next := time.Now()
	e := float32(*extent)

	for !window.ShouldClose() {
		if !paused && !time.Now().Before(next) {
			if err := replay.Step(in.Analyzer); err != nil {
				return err
			}
			next = next.Add(step)
			if next.Before(time.Now()) {
				next = time.Now().Add(step)
			}
		}

		fbWidth, fbHeight := window.GetFramebufferSize()
		winWidth, _ := window.GetSize()
		retina := float32(1)
		if winWidth > 0 {
			retina = float32(fbWidth) / float32(winWidth)
		}

		glbackend.BeginFrame(int32(fbWidth), int32(fbHeight), background)
		r.Synchronize(plot)
		r.SetViewport(fbWidth, fbHeight, retina)
		r.SetBounds(aspectBounds(e, fbWidth, fbHeight))
		r.Render(in.Analyzer)

		window.SwapBuffers()
		glfw.PollEvents()
	}
	return nil
}

// onKey applies the configuration keys to plot.
func onKey(plot *nyquist.Plot, key glfw.Key) error {
	switch key {
	case glfw.KeyEqual, glfw.KeyKPAdd:
		ppo := min(plot.PointsPerOctave()*2, nyquist.MaxPointsPerOctave)
		return plot.SetPointsPerOctave(ppo)
	case glfw.KeyMinus, glfw.KeyKPSubtract:
		ppo := max(plot.PointsPerOctave()/2, nyquist.MinPointsPerOctave)
		return plot.SetPointsPerOctave(ppo)
	case glfw.KeyC:
		plot.SetCoherence(!plot.Coherence())
	case glfw.KeyLeftBracket:
		return plot.SetCoherenceThreshold(max(plot.CoherenceThreshold()-thresholdStep, 0))
	case glfw.KeyRightBracket:
		return plot.SetCoherenceThreshold(min(plot.CoherenceThreshold()+thresholdStep, 1))
	}
	return nil
}

// aspectBounds returns a square plot area of half width extent, widened
// along the longer framebuffer axis.
func aspectBounds(extent float32, width, height int) (xMin, xMax, yMin, yMax float32) {
	x, y := extent, extent
	if width > 0 && height > 0 {
		aspect := float32(width) / float32(height)
		if aspect > 1 {
			x *= aspect
		} else {
			y /= aspect
		}
	}
	return -x, x, -y, y
}
