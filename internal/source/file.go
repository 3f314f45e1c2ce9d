// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/tomtom215/wayfinder/internal/logging"
	"github.com/tomtom215/wayfinder/internal/metrics"
	"github.com/tomtom215/wayfinder/internal/recommend"
)

// FileSourceName labels metrics and logs for snapshot files.
const FileSourceName = "file"

// FileSource reads pre-aggregated interactions from a snapshot file.
// The file is re-read on every call so a refreshed snapshot is picked up by the next fit.
type FileSource struct {
	path string
}

// NewFileSource creates a source for the snapshot at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Path returns the snapshot file path.
func (s *FileSource) Path() string {
	return s.path
}

// GetInteractions implements recommend.DataProvider.
func (s *FileSource) GetInteractions(ctx context.Context) ([]recommend.Interaction, error) {
	start := time.Now()

	interactions, err := s.read(ctx)
	metrics.RecordSourceFetch(FileSourceName, len(interactions), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Debug().
		Str("source", FileSourceName).
		Str("path", s.path).
		Int("records", len(interactions)).
		Dur("duration", time.Since(start)).
		Msg("loaded interactions")

	return interactions, nil
}

// Close implements io.Closer. A file source holds no open handles between reads.
func (s *FileSource) Close() error {
	return nil
}

func (s *FileSource) read(ctx context.Context) ([]recommend.Interaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", s.path, err)
	}
	defer f.Close()

	interactions, err := DecodeInteractions(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}
	return interactions, nil
}

// DecodeInteractions reads a JSON array or newline-delimited JSON stream of
// interaction records from r. An empty stream yields an empty, non-nil slice.
func DecodeInteractions(ctx context.Context, r io.Reader) ([]recommend.Interaction, error) {
	br := bufio.NewReader(r)

	first, err := firstNonSpace(br)
	if errors.Is(err, io.EOF) {
		return []recommend.Interaction{}, nil
	}
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(br)
	if first == '[' {
		var interactions []recommend.Interaction
		if err := dec.DecodeContext(ctx, &interactions); err != nil {
			return nil, fmt.Errorf("json array: %w", err)
		}
		if interactions == nil {
			interactions = []recommend.Interaction{}
		}
		return interactions, nil
	}

	interactions := make([]recommend.Interaction, 0)
	for record := 1; ; record++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var in recommend.Interaction
		err := dec.Decode(&in)
		if errors.Is(err, io.EOF) {
			return interactions, nil
		}
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", record, err)
		}
		interactions = append(interactions, in)
	}
}

// firstNonSpace peeks at the first byte that is not JSON whitespace,
// leaving it unread.
func firstNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}

var _ recommend.DataProvider = (*FileSource)(nil)
