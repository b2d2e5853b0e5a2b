package mmseg

import (
	"fmt"
	"runtime"
	"sync"
)

// RenderDocument paints every triangle's segmentation attribute into the
// raster and closes the seams afterwards. Attributes are keyed by triangle
// index into footprints; absent keys mean fully unpainted. A malformed
// attribute downgrades that one triangle to unpainted and is reported in
// the warnings, the rest of the document still renders.
func RenderDocument(segs map[int]string, footprints []Triangle2, r *Raster, pal Palette) []error {
	rd := NewRenderer(r, pal)
	var warnings []error
	for i, ft := range footprints {
		s, ok := segs[i]
		if !ok {
			continue
		}
		tree, err := DecodeSegmentation(s)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("triangle %d: %w", i, err))
			continue
		}
		if err := rd.Paint(tree, ft); err != nil {
			warnings = append(warnings, fmt.Errorf("triangle %d: %w", i, err))
		}
	}
	// Gap filling is a barrier: it must observe every leaf write.
	rd.FillGaps(gapFillIterations)
	return warnings
}

// ExtractDocument walks every triangle footprint over the painted raster
// and encodes the recovered trees. Triangles are the unit of parallelism:
// the state map snapshot is read-only, so the footprints are fanned out
// over a fixed worker pool. Fully unpainted triangles are omitted from the
// result, matching the wire convention that an absent attribute means
// Leaf(0).
func ExtractDocument(footprints []Triangle2, r *Raster, pal Palette, tolerance int) (map[int]string, []PrecisionLoss, []error) {
	ex := NewExtractor(r, pal, tolerance)

	type result struct {
		index  int
		seg    string
		losses []PrecisionLoss
		err    error
	}

	jobs := make(chan int)
	results := make(chan result)

	workers := runtime.NumCPU()
	if workers > len(footprints) {
		workers = len(footprints)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				tree, losses, err := ex.Extract(footprints[i])
				res := result{index: i, losses: losses, err: err}
				if err == nil {
					res.seg, res.err = EncodeSegmentation(tree)
				}
				results <- res
			}
		}()
	}

	go func() {
		for i := range footprints {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	segs := make(map[int]string)
	var losses []PrecisionLoss
	var warnings []error
	for res := range results {
		if res.err != nil {
			warnings = append(warnings, fmt.Errorf("triangle %d: %w", res.index, res.err))
			continue
		}
		losses = append(losses, res.losses...)
		// A single unpainted leaf is the implicit default on the wire.
		if res.seg == "0" {
			continue
		}
		segs[res.index] = res.seg
	}
	return segs, losses, warnings
}
