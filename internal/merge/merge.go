// Package merge fills missing humor scores into an existing dataset file.
package merge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatscore/internal/dataset"
	"github.com/vovakirdan/chatscore/internal/score"
)

// Auditor receives run accounting. Implemented by the history store; a nil
// Auditor disables auditing.
type Auditor interface {
	BeginRun(ctx context.Context, runID, datasetPath string, startedAt time.Time) error
	RecordScore(ctx context.Context, runID, messageID string, scoreValue int, rawReply string) error
	FinishRun(ctx context.Context, runID string, total, updated int, finishedAt time.Time) error
}

// Result summarizes one Apply call.
type Result struct {
	RunID   string
	Total   int
	Updated int
	Skipped int
}

// Merger scans a dataset and scores every record that still needs it.
type Merger struct {
	scorer *score.Scorer
	audit  Auditor
	log    *zerolog.Logger
}

// New builds a Merger. audit may be nil.
func New(scorer *score.Scorer, audit Auditor, logger *zerolog.Logger) *Merger {
	return &Merger{scorer: scorer, audit: audit, log: logger}
}

// Apply reads the JSON array at path, scores records that have no
// quality_score_from_llm and a non-blank message, and writes the array back
// in place. Records are processed in file order; already-scored and blank
// records pass through untouched. A read or write error aborts the whole run
// before anything is written; per-message scoring failures never do, they
// collapse to the fallback score inside the Scorer.
func (m *Merger) Apply(ctx context.Context, path string) (Result, error) {
	res := Result{RunID: uuid.NewString()}

	records, err := dataset.Load(path)
	if err != nil {
		return res, err
	}
	res.Total = len(records)

	m.log.Info().Str("path", path).Int("total", res.Total).Str("run_id", res.RunID).
		Msg("merging humor scores")

	if m.audit != nil {
		if err := m.audit.BeginRun(ctx, res.RunID, path, time.Now()); err != nil {
			return res, fmt.Errorf("record run start: %w", err)
		}
	}

	for i := range records {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("merge interrupted: %w", err)
		}

		rec := &records[i]
		if rec.HasScore() || rec.BlankMessage() {
			res.Skipped++
			continue
		}

		m.log.Info().Int("n", i+1).Int("total", res.Total).
			Str("message", snippet(rec.Message())).Msg("scoring message")

		n, raw := m.scorer.ScoreRaw(ctx, rec.Message(), rec.Username())
		rec.SetScore(n)
		res.Updated++

		if m.audit != nil {
			if err := m.audit.RecordScore(ctx, res.RunID, rec.MessageID(), n, raw); err != nil {
				m.log.Warn().Err(err).Msg("failed to record score in history")
			}
		}
	}

	if err := dataset.Save(path, records); err != nil {
		return res, err
	}

	if m.audit != nil {
		if err := m.audit.FinishRun(ctx, res.RunID, res.Total, res.Updated, time.Now()); err != nil {
			m.log.Warn().Err(err).Msg("failed to record run finish")
		}
	}

	m.log.Info().Int("updated", res.Updated).Int("skipped", res.Skipped).Msg("merge complete")
	return res, nil
}

func snippet(s string) string {
	const max = 50
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
