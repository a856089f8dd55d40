package feed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/nordicgem/diamond-indexer/internal/domain"
	"github.com/nordicgem/diamond-indexer/internal/logger"
)

// ChunkHandler receives a chunk of parsed records during a streaming parse.
// Returning an error aborts the parse.
type ChunkHandler func(ctx context.Context, chunk []*domain.ParsedDiamond) error

// Parser turns a raw feed CSV stream into parsed records, delivering them in
// fixed-size chunks so a multi-hundred-thousand-row file is never held in
// memory at once.
type Parser struct {
	chunkSize int
}

// NewParser creates a parser delivering chunks of the given size
func NewParser(chunkSize int) *Parser {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	return &Parser{chunkSize: chunkSize}
}

// Parse reads the CSV stream row by row and delivers parsed records to handle
// in chunks. The files carry no header row; cells are mapped by position
// according to the feed type's layout. Rows with a blank identifier are
// dropped. Returns the number of records delivered.
func (p *Parser) Parse(ctx context.Context, r io.Reader, feedType domain.FeedType, handle ChunkHandler) (int, error) {
	columns := columnsFor(feedType)

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	chunk := make([]*domain.ParsedDiamond, 0, p.chunkSize)
	total := 0
	dropped := 0

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return total, fmt.Errorf("failed to read feed row: %w", err)
		}

		record := parseRow(row, columns, feedType)
		if record == nil {
			dropped++
			continue
		}

		chunk = append(chunk, record)
		if len(chunk) == p.chunkSize {
			if err := ctx.Err(); err != nil {
				return total, err
			}
			if err := handle(ctx, chunk); err != nil {
				return total, err
			}
			total += len(chunk)
			chunk = make([]*domain.ParsedDiamond, 0, p.chunkSize)
		}
	}

	if len(chunk) > 0 {
		if err := handle(ctx, chunk); err != nil {
			return total, err
		}
		total += len(chunk)
	}

	if dropped > 0 {
		logger.Debug("dropped rows without identifier",
			zap.String("type", string(feedType)),
			zap.Int("dropped", dropped))
	}

	return total, nil
}

// parseRow maps one CSV row onto a record. Returns nil for rows without an
// identifier, including blank lines.
func parseRow(row []string, columns []*column, feedType domain.FeedType) *domain.ParsedDiamond {
	record := &domain.ParsedDiamond{}

	for i, col := range columns {
		if i >= len(row) {
			break
		}
		value := strings.TrimSpace(row[i])
		if value == "" {
			continue
		}
		col.set(record, value)
	}

	if record.ItemID == "" {
		return nil
	}

	reclassify(record, feedType)
	return record
}
