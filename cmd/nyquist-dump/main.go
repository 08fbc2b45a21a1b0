// Command nyquist-dump measures the transfer function between a reference
// and a measurement recording and writes its octave-band Nyquist curve.
//
// Usage:
//
//	nyquist-dump ref.wav meas.wav                     # SVG on stdout
//	nyquist-dump -ppo 24 -o plot.svg ref.wav meas.wav
//	nyquist-dump -format json ref.wav meas.wav        # raw control records
//	nyquist-dump -coherence -threshold 0.8 ref.wav meas.wav
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"

	"github.com/tphakala/go-nyquist"
	"github.com/tphakala/go-nyquist/internal/cli"
	"github.com/tphakala/go-nyquist/internal/geometry"
	"github.com/tphakala/go-nyquist/internal/vertex"
)

const (
	minRequiredArgs = 2

	formatSVG  = "svg"
	formatJSON = "json"

	// Fraction of the curve extent added around it in SVG output
	svgMargin = 0.05
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var f cli.Flags
	f.Register(flag.CommandLine)
	format := flag.String("format", formatSVG, "Output format: svg, json")
	output := flag.String("o", "", "Output file (default stdout)")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] reference.wav measurement.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s ref.wav meas.wav > plot.svg           # 1/12 octave SVG\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -ppo 3 -format json ref.wav meas.wav  # 1/3 octave records\n", os.Args[0])
		return errors.New("insufficient arguments")
	}
	if *format != formatSVG && *format != formatJSON {
		return fmt.Errorf("unknown format %q", *format)
	}

	f.SetupLogging()

	if *cpuprofile != "" {
		pf, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(pf); err != nil {
			_ = pf.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = pf.Close()
		}()
	}

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
	blocks, err := in.Analyzer.Feed(in.Ref, in.Meas, f.HopSize())
	if err != nil {
		return err
	}

	records, stats, err := nyquist.Tessellate(in.Analyzer, cfg, opts...)
	if err != nil {
		return err
	}

	if f.Verbose {
		fmt.Fprintf(os.Stderr, "Input:   %d samples at %d Hz, %d blocks averaged\n", len(in.Ref), in.Rate, blocks)
		fmt.Fprintf(os.Stderr, "Window:  %s, %.2f Hz resolution\n", in.Analyzer.Config().Window, in.Analyzer.Resolution())
		fmt.Fprintf(os.Stderr, "Bands:   %d at 1/%d octave\n", stats.Bands, cfg.PointsPerOctave)
		fmt.Fprintf(os.Stderr, "Records: %d emitted, %d dropped, %d degenerate\n",
			stats.Emitted, stats.Dropped, stats.Degenerate)
	}

	write := func(w io.Writer) error {
		if *format == formatJSON {
			return writeJSON(w, records)
		}
		return writeSVG(w, records, cfg)
	}
	if *output == "" {
		return write(os.Stdout)
	}
	return writeFile(*output, write)
}

// writeFile creates path, runs write on it and reports a failed close.
func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

func writeSVG(w io.Writer, records []float32, cfg nyquist.RenderConfig) error {
	gate := geometry.Gate{Threshold: cfg.CoherenceThreshold}
	if cfg.CoherenceGate {
		gate.Strength = 1
	}
	spans := geometry.Expand(records, gate)

	opts := geometry.DefaultSVGOptions()
	opts.Bounds = geometry.FitBounds(spans, svgMargin)
	return geometry.WriteSVG(w, spans, opts)
}

// record is the JSON form of one control record.
type record struct {
	Points    [vertex.AttributeSize][2]float32 `json:"points"`
	Coherence float32                          `json:"coherence"`
}

func writeJSON(w io.Writer, records []float32) error {
	n := len(records) / vertex.Stride
	out := make([]record, 0, n)
	for i := range n {
		r := records[i*vertex.Stride : (i+1)*vertex.Stride]
		var rec record
		for k := range rec.Points {
			rec.Points[k] = [2]float32{r[vertex.RealOffset+k], r[vertex.ImagOffset+k]}
		}
		rec.Coherence = r[vertex.ControlOffset]
		out = append(out, rec)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode records (use -degenerate zero or skip with json): %w", err)
	}
	return nil
}
