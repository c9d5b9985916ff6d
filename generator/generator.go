// Package generator orchestrates the batch pipeline: it walks input
// sources, chunks their rows, and fans each chunk out across workers that
// encode and export one image per record.
package generator

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ian-hamlin/qrgen/chunk"
	"github.com/ian-hamlin/qrgen/qr"
	"github.com/ian-hamlin/qrgen/render"
)

// Output controls where and how images land on disk.
type Output struct {
	Dir    string
	Format render.Format
}

// Processing controls how sources are read.
type Processing struct {
	ChunkSize  int  // rows fanned out per batch, > 0
	HasHeaders bool // skip the first row of each source
	Delimiter  rune // field delimiter, ',' when zero
}

// Stats aggregates the outcome of one run.
type Stats struct {
	Sources       int
	SourcesFailed int
	Rendered      int64
	Skipped       int64 // rows filtered from fan-out for missing fields
	Failed        int64
}

// Generator drives the whole run. Its configuration is read-only after
// New; the only cross-worker state is the pair of atomic counters.
type Generator struct {
	files    []string
	enc      qr.Encoder
	renderer render.Renderer
	out      Output
	proc     Processing
	log      *slog.Logger

	rendered atomic.Int64
	skipped  atomic.Int64
	failed   atomic.Int64
}

// New returns a Generator over files. ChunkSize below 1 is raised to 1 and
// a zero delimiter becomes a comma.
func New(files []string, enc qr.Encoder, renderer render.Renderer, out Output, proc Processing, log *slog.Logger) *Generator {
	if proc.ChunkSize < 1 {
		proc.ChunkSize = 1
	}
	if proc.Delimiter == 0 {
		proc.Delimiter = ','
	}
	if log == nil {
		log = slog.Default()
	}
	return &Generator{files: files, enc: enc, renderer: renderer, out: out, proc: proc, log: log}
}

// Run processes every source in order. Sources fail independently; a
// source that cannot be opened is logged and skipped, and per-record
// failures never fail a source. The context is only checked between
// batches, so an interrupted run leaves every completed file intact.
func (g *Generator) Run(ctx context.Context) Stats {
	stats := Stats{}
	for _, path := range g.files {
		if ctx.Err() != nil {
			g.log.Warn("interrupted")
			break
		}
		stats.Sources++
		err := g.processFile(ctx, path)
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			g.log.Warn("interrupted", "file", path)
		case err != nil:
			stats.SourcesFailed++
			g.log.Warn("source failed", "file", path, "error", err)
		default:
			g.log.Debug("source complete", "file", path)
		}
	}
	stats.Rendered = g.rendered.Load()
	stats.Skipped = g.skipped.Load()
	stats.Failed = g.failed.Load()
	return stats
}

func (g *Generator) processFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return g.process(ctx, f)
}

// process streams batches from r until exhaustion, with a full barrier
// between batches so in-flight work never exceeds one chunk.
func (g *Generator) process(ctx context.Context, r io.Reader) error {
	reader := g.csvReader(r)
	if g.proc.HasHeaders {
		if _, err := reader.Read(); err != nil && !errors.Is(err, io.EOF) {
			g.log.Warn("skipping malformed header row", "error", err)
		}
	}

	chunks := chunk.New(reader, g.proc.ChunkSize, g.log)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch, ok := chunks.Next()
		if !ok {
			return nil
		}
		g.renderBatch(batch)
	}
}

// renderBatch fans eligible rows out across a bounded worker group and
// waits for all of them. The wait is the inter-batch barrier that bounds
// peak memory to one chunk of in-flight records.
func (g *Generator) renderBatch(batch []chunk.Row) {
	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for _, row := range batch {
		if len(row) < 2 {
			// Not an error: rows without both identifier and payload are
			// filtered from fan-out.
			g.skipped.Add(1)
			continue
		}
		eg.Go(func() error {
			g.renderRow(row)
			return nil
		})
	}
	_ = eg.Wait() // tasks never return errors; failures are logged per record
}

// renderRow encodes, renders and exports one record. Every failure is
// terminal for this record only.
func (g *Generator) renderRow(row chunk.Row) {
	id, payload := row[0], row[1]

	m, err := g.enc.Encode(payload)
	if err != nil {
		g.failed.Add(1)
		g.log.Warn("encode failed", "id", id, "error", err)
		return
	}

	body, err := g.renderer.Render(m)
	if err != nil {
		g.failed.Add(1)
		g.log.Warn("render failed", "id", id, "modules", m.Size(), "error", err)
		return
	}

	if err := g.export(id, body); err != nil {
		g.failed.Add(1)
		g.log.Warn("write failed", "id", id, "error", err)
		return
	}

	g.rendered.Add(1)
	g.log.Debug("rendered", "id", id, "version", m.Version, "modules", m.Size())
}

// csvReader mirrors the input contract: configurable delimiter, ragged
// rows allowed, eligibility checked later at fan-out.
func (g *Generator) csvReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = g.proc.Delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader
}
