package client

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/tilde-lab/mpds-client-go/pkg/phases"
	"github.com/tilde-lab/mpds-client-go/pkg/projection"
)

// GetData retrieves all records matching the query, projected into
// fixed-width rows per fieldSpec. A nil fieldSpec uses the default
// spec (projection.DefaultFieldSpec); use GetRaw for unprojected
// records.
//
// Any error on any page of any batch aborts the whole call: no partial
// results are returned, and nothing is retried.
func (c *Client) GetData(ctx context.Context, query Query, phaseIDs []int, fieldSpec projection.FieldSpec) ([]projection.Row, error) {
	if len(fieldSpec) == 0 {
		fieldSpec = projection.DefaultFieldSpec()
	}

	compiled, err := projection.Compile(fieldSpec)
	if err != nil {
		return nil, &APIError{
			Kind:    ErrorKindConfig,
			Message: err.Error(),
			Err:     err,
		}
	}

	var rows []projection.Row
	err = c.retrieve(ctx, query, phaseIDs, func(record map[string]any) error {
		row, err := compiled.Project(record)
		if err != nil {
			if errors.Is(err, projection.ErrUnknownKind) {
				return &APIError{
					Kind:    ErrorKindProtocol,
					Message: err.Error(),
					Err:     err,
				}
			}
			return &APIError{
				Kind:    ErrorKindConfig,
				Message: err.Error(),
				Err:     err,
			}
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// GetRaw retrieves all records matching the query without projection:
// each element is the full decoded JSON object as returned by the
// server. Record kinds are still validated.
func (c *Client) GetRaw(ctx context.Context, query Query, phaseIDs []int) ([]map[string]any, error) {
	// Zero-selector spec per kind: validates discriminators without
	// extracting columns.
	compiled, err := projection.Compile(projection.FieldSpec{
		projection.KindStructure: nil,
		projection.KindProperty:  nil,
		projection.KindDiagram:   nil,
	})
	if err != nil {
		return nil, &APIError{Kind: ErrorKindConfig, Message: err.Error(), Err: err}
	}

	var records []map[string]any
	err = c.retrieve(ctx, query, phaseIDs, func(record map[string]any) error {
		if _, err := compiled.Project(record); err != nil {
			return &APIError{
				Kind:    ErrorKindProtocol,
				Message: err.Error(),
				Err:     err,
			}
		}
		records = append(records, record)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// retrieve is the top-level retrieval state machine. It partitions the
// phase filter, walks each batch page by page, feeds every record to
// collect exactly once, and cross-checks the collected total against
// the server-declared total.
func (c *Client) retrieve(ctx context.Context, query Query, phaseIDs []int, collect func(map[string]any) error) error {
	batches := phases.Partition(phaseIDs, c.config.MaxPhasesPerBatch)
	nsteps := len(batches)

	totalDeclared := 0
	collected := 0

	for step, batch := range batches {
		pageIndex := 0
		hitsCount := 0

		for {
			pg, err := c.fetchPage(ctx, query, batch, pageIndex, c.config.PageSize)
			if err != nil {
				return err
			}

			// Hard ceiling against unbounded downloads, never a retry
			// trigger.
			if pg.NPages > c.config.MaxPagesPerBatch {
				mpdsErrorsTotal.WithLabelValues(string(ErrorKindCeiling)).Inc()
				return &APIError{
					Kind: ErrorKindCeiling,
					Code: 2,
					Message: fmt.Sprintf("too many hits (%d > %d), please be more specific",
						pg.Count, c.config.MaxPagesPerBatch*c.config.PageSize),
				}
			}

			for _, record := range pg.Records {
				if err := collect(record); err != nil {
					return err
				}
				collected++
			}
			mpdsRecordsCollectedTotal.Add(float64(len(pg.Records)))

			// The declared hit count must hold still across one
			// batch's pages; drift means the dataset changed under us.
			if hitsCount != 0 && hitsCount != pg.Count {
				mpdsErrorsTotal.WithLabelValues(string(ErrorKindConsistency)).Inc()
				return &APIError{
					Kind:    ErrorKindConsistency,
					Message: "hits count has been changed during the query",
				}
			}
			hitsCount = pg.Count

			// Courtesy pause after every page, the last of a batch
			// included.
			if err := c.pacer.Pause(ctx); err != nil {
				return err
			}

			c.logger.Debug().
				Int("page", pageIndex+1).
				Int("npages", pg.NPages).
				Int("batch", step+1).
				Int("batches", nsteps).
				Float64("progress_pct", float64(pageIndex+1)/float64(pg.NPages)*100).
				Msg("Page collected")

			if pageIndex == pg.NPages-1 {
				break
			}
			pageIndex++
		}

		totalDeclared += hitsCount
	}

	if collected != totalDeclared {
		mpdsErrorsTotal.WithLabelValues(string(ErrorKindConsistency)).Inc()
		return &APIError{
			Kind:    ErrorKindConsistency,
			Message: "collected and declared counts of hits differ",
		}
	}

	c.logger.Info().
		Int("hits", totalDeclared).
		Int("batches", nsteps).
		Msg("Retrieval complete")

	return nil
}

// CountData returns the number of entries matching the query without
// paginating: a single minimal-payload request read only for its
// declared totals. An empty result is a legitimate zero here, not an
// error. When the declared page count exceeds the configured ceiling a
// warning suggests the ceiling to set, and the true count is returned
// anyway.
func (c *Client) CountData(ctx context.Context, query Query, phaseIDs []int) (int, error) {
	pg, err := c.fetchPage(ctx, query, phases.Dedup(phaseIDs), 0, countPageSize)
	if err != nil {
		if IsEmpty(err) {
			return 0, nil
		}
		return 0, err
	}

	if pg.NPages > c.config.MaxPagesPerBatch {
		c.logger.Warn().
			Int("max_pages", c.config.MaxPagesPerBatch).
			Int("suggested", int(math.Ceil(float64(pg.Count)/float64(c.config.PageSize)))).
			Msg("Dataset is too big; retrieving it requires raising MaxPagesPerBatch")
	}

	return pg.Count, nil
}
