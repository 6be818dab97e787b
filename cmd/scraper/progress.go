package main

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"

	"github.com/aluiziolira/go-scrape-amazon/models"
)

// progressBar renders a single tracker for an interactive run.
type progressBar struct {
	writer  progress.Writer
	tracker *progress.Tracker
}

func newProgressBar(out io.Writer) *progressBar {
	pw := progress.NewWriter()
	pw.SetOutputWriter(out)
	pw.SetAutoStop(false)
	pw.SetTrackerLength(30)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetStyle(progress.StyleDefault)
	pw.Style().Visibility.ETA = false
	return &progressBar{writer: pw}
}

func (p *progressBar) Start(kind models.Kind, total int) {
	p.tracker = &progress.Tracker{
		Message: "Scraping " + string(kind),
		Total:   int64(total),
		Units:   progress.UnitsDefault,
	}
	p.writer.AppendTracker(p.tracker)
	go p.writer.Render()
}

func (p *progressBar) Update(collected int) {
	if p.tracker != nil {
		p.tracker.SetValue(int64(collected))
	}
}

func (p *progressBar) Stop() {
	if p.tracker != nil {
		p.tracker.MarkAsDone()
	}
	// Let the renderer draw the final state before stopping it.
	time.Sleep(150 * time.Millisecond)
	p.writer.Stop()
}
