// Calibrate reports match score statistics for a set of captured frames so
// the detection threshold can be tuned for a given camera and reference.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/markerlens/platform/internal/vision"
)

func main() {
	refPath := flag.String("ref", "reference.png", "reference template image")
	framesGlob := flag.String("frames", "frames/*.png", "glob of captured frames showing the marker")
	width := flag.Int("width", vision.DefaultProcessingWidth, "processing width")
	size := flag.Int("size", vision.DefaultTemplateSize, "template size")
	stride := flag.Int("stride", vision.DefaultSearchStride, "search stride")
	step := flag.Int("step", vision.DefaultSampleStep, "sample step")
	flag.Parse()

	tmpl, err := vision.LoadTemplate(*refPath, *size)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load reference: %v\n", err)
		os.Exit(1)
	}

	paths, err := filepath.Glob(*framesGlob)
	if err != nil || len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "no frames match %q\n", *framesGlob)
		os.Exit(1)
	}

	sampler := vision.NewSampler(*width)
	matcher := vision.NewMatcher(*stride, *step)

	var scores []float64
	for _, path := range paths {
		frame, err := loadImage(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skip %s: %v\n", path, err)
			continue
		}
		small, ok := sampler.Sample(frame)
		if !ok {
			fmt.Fprintf(os.Stderr, "skip %s: unusable dimensions\n", path)
			continue
		}
		match, found := matcher.Search(vision.LumaFromImage(small), tmpl.Luma)
		if !found {
			fmt.Fprintf(os.Stderr, "skip %s: frame smaller than template\n", path)
			continue
		}
		scores = append(scores, match.Score)
		fmt.Printf("%-40s score=%8.1f at (%d,%d)\n", filepath.Base(path), match.Score, match.Box.X, match.Box.Y)
	}

	if len(scores) < 2 {
		fmt.Fprintln(os.Stderr, "need at least two scored frames")
		os.Exit(1)
	}

	sort.Float64s(scores)
	mean := stat.Mean(scores, nil)
	sd := stat.StdDev(scores, nil)
	p95 := stat.Quantile(0.95, stat.Empirical, scores, nil)

	fmt.Printf("\nframes:    %d\n", len(scores))
	fmt.Printf("min:       %.1f\n", scores[0])
	fmt.Printf("max:       %.1f\n", scores[len(scores)-1])
	fmt.Printf("mean:      %.1f\n", mean)
	fmt.Printf("stddev:    %.1f\n", sd)
	fmt.Printf("p95:       %.1f\n", p95)

	// Frames show the marker, so scores cluster low; leave headroom above
	// the spread before declaring a miss.
	suggested := mean + 3*sd
	fmt.Printf("\nsuggested SCORE_THRESHOLD: %.0f\n", suggested)
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}
