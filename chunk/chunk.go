// Package chunk groups decoded rows into bounded batches so the pipeline
// can fan out a fixed amount of work at a time.
package chunk

import (
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"strings"
)

// Row is one decoded record with whitespace-trimmed fields.
type Row []string

// Chunker pulls rows from a csv.Reader in windows of up to size attempted
// reads and yields the rows that decoded cleanly as one batch. A decode
// failure consumes an attempt but never a slot, so a batch may run shorter
// than the window even mid-stream. Windows with no surviving rows are
// skipped entirely; an empty batch is never yielded. A reader error that
// is not a row parse failure means the source can make no more progress
// and ends the stream.
type Chunker struct {
	r    *csv.Reader
	size int
	log  *slog.Logger
	done bool
}

// New returns a Chunker reading windows of size attempted rows from r.
// size must be positive.
func New(r *csv.Reader, size int, log *slog.Logger) *Chunker {
	if size <= 0 {
		panic("chunk: size must be positive")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Chunker{r: r, size: size, log: log}
}

// Next returns the next non-empty batch, or ok=false once the source is
// exhausted and no partial batch remains. The sequence is lazy, finite and
// not restartable.
func (c *Chunker) Next() (batch []Row, ok bool) {
	if c.done {
		return nil, false
	}
	for {
		batch = batch[:0]
		for attempts := 0; attempts < c.size; attempts++ {
			record, err := c.r.Read()
			if err != nil {
				if errors.Is(err, io.EOF) {
					c.done = true
					break
				}
				var parseErr *csv.ParseError
				if !errors.As(err, &parseErr) {
					// Not a malformed row: the underlying reader failed
					// and retrying cannot advance it.
					c.log.Warn("source read failed", "error", err)
					c.done = true
					break
				}
				c.log.Warn("skipping malformed row", "error", err)
				continue
			}
			batch = append(batch, trim(record))
		}
		if len(batch) > 0 {
			return batch, true
		}
		if c.done {
			return nil, false
		}
		// Every attempt in this window failed; read the next window.
	}
}

func trim(fields []string) Row {
	row := make(Row, len(fields))
	for i, f := range fields {
		row[i] = strings.TrimSpace(f)
	}
	return row
}
