package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"

	"filesort/internal/organizer"
	"filesort/internal/worker"
)

// progressRenderer turns worker events into terminal output.
type progressRenderer interface {
	Handle(event worker.Event)
	Finish()
}

func newProgressRenderer(out io.Writer, interactive bool) progressRenderer {
	if !interactive {
		return &lineRenderer{out: out}
	}
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("Starting"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &barRenderer{out: out, bar: bar}
}

type barRenderer struct {
	out     io.Writer
	bar     *progressbar.ProgressBar
	skipped []organizer.FileResult
}

func (r *barRenderer) Handle(event worker.Event) {
	switch event.Type {
	case worker.EventFileStarted:
		r.bar.Describe(event.File)
	case worker.EventProgress:
		_ = r.bar.Set(event.Percent)
	case worker.EventFileDone:
		if !event.Result.Moved {
			r.skipped = append(r.skipped, event.Result)
		}
	}
}

func (r *barRenderer) Finish() {
	_ = r.bar.Finish()
	_ = r.bar.Clear()
	fmt.Fprintln(r.out)
	for _, result := range r.skipped {
		fmt.Fprintf(r.out, "skipped %s: %v\n", result.Name, result.Err)
	}
}

type lineRenderer struct {
	out     io.Writer
	percent int
}

func (r *lineRenderer) Handle(event worker.Event) {
	switch event.Type {
	case worker.EventProgress:
		r.percent = event.Percent
	case worker.EventFileDone:
		result := event.Result
		if result.Moved {
			rel := filepath.Join(string(result.Category), filepath.Base(result.Destination))
			fmt.Fprintf(r.out, "[%3d%%] %s -> %s (%s)\n", r.percent, result.Name, rel, humanize.Bytes(uint64(max(result.Size, 0))))
			return
		}
		fmt.Fprintf(r.out, "[%3d%%] %s skipped: %v\n", r.percent, result.Name, result.Err)
	}
}

func (r *lineRenderer) Finish() {}
