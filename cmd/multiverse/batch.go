package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fwojciec/multiverse"
	"github.com/fwojciec/multiverse/goldmark"
	mvjson "github.com/fwojciec/multiverse/json"
	"github.com/mattn/go-runewidth"
)

const previewWidth = 60

func runBatch(ctx context.Context, gen *multiverse.Generator, opts options, defaults multiverse.Sampling, stdout io.Writer, theme multiverse.Theme) error {
	reqs, err := loadBatches(opts.batch, defaults)
	if err != nil {
		return err
	}
	if opts.save {
		for i := range reqs {
			reqs[i].Save = true
		}
	}

	results := gen.GenerateBatch(ctx, reqs)
	sum := multiverse.Summarize(results)

	if opts.json {
		data, err := mvjson.MarshalBatch(results)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s\n", data)
	} else {
		for _, r := range results {
			fmt.Fprintln(stdout, batchLine(r, theme))
		}
		fmt.Fprintln(stdout, goldmark.RenderSummary(sum, theme))
	}

	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d requests failed", sum.Failed, sum.Total)
	}
	return nil
}

// loadBatches reads every file matching pattern, in lexical order, and
// concatenates their requests.
func loadBatches(pattern string, defaults multiverse.Sampling) ([]multiverse.CharacterRequest, error) {
	paths, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("batch pattern %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no batch files match %q", pattern)
	}
	slices.Sort(paths)

	var reqs []multiverse.CharacterRequest
	for _, p := range paths {
		r, err := mvjson.LoadBatch(p, defaults)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, r...)
	}
	return reqs, nil
}

func batchLine(r multiverse.BatchResult, theme multiverse.Theme) string {
	prefix := fmt.Sprintf("%3d. %-10s ", r.Index+1, r.Request.Universe)
	if r.Err != nil {
		return prefix + goldmark.RenderError(r.Err, theme)
	}
	line := preview(r.Character.Text, previewWidth)
	if r.Character.Path != "" {
		line += "  → " + r.Character.Path
	}
	return prefix + line
}

// preview collapses text onto one line and truncates it to width display
// cells.
func preview(text string, width int) string {
	return runewidth.Truncate(strings.Join(strings.Fields(text), " "), width, "…")
}
