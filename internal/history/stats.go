package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// FlowStats summarises the recorded calls of one flow.
type FlowStats struct {
	Flow          string
	Calls         int
	Failures      int
	AvgDurationMS float64
	FirstCall     time.Time
	LastCall      time.Time
}

// StageConfidence is the mean reported confidence of a stage whose payload
// carries a confidence_score field.
type StageConfidence struct {
	Stage          string
	Calls          int
	MeanConfidence float64
}

// FlowStats aggregates call counts, failure counts, and latency per flow.
func (s *Store) FlowStats(ctx context.Context) ([]FlowStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			flow,
			COUNT(*) AS calls,
			COUNT(*) FILTER (WHERE status != 'ok') AS failures,
			AVG(duration_ms) AS avg_duration_ms,
			MIN(started_at) AS first_call,
			MAX(started_at) AS last_call
		FROM inference_calls
		WHERE flow != ''
		GROUP BY flow
		ORDER BY flow`)
	if err != nil {
		return nil, fmt.Errorf("failed to query flow stats: %w", err)
	}
	defer rows.Close()

	var stats []FlowStats
	for rows.Next() {
		var st FlowStats
		var avg sql.NullFloat64
		if err := rows.Scan(&st.Flow, &st.Calls, &st.Failures, &avg, &st.FirstCall, &st.LastCall); err != nil {
			return nil, fmt.Errorf("failed to scan flow stats: %w", err)
		}
		st.AvgDurationMS = avg.Float64
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return stats, nil
}

// StageConfidences extracts mean confidence scores from recorded payloads
// using DuckDB's JSON extension.
func (s *Store) StageConfidences(ctx context.Context) ([]StageConfidence, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			stage,
			COUNT(*) AS calls,
			AVG(CAST(json_extract(payload, '$.confidence_score') AS DOUBLE)) AS mean_confidence
		FROM inference_calls
		WHERE payload IS NOT NULL
		  AND json_extract(payload, '$.confidence_score') IS NOT NULL
		GROUP BY stage
		ORDER BY stage`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stage confidences: %w", err)
	}
	defer rows.Close()

	var stats []StageConfidence
	for rows.Next() {
		var st StageConfidence
		var mean sql.NullFloat64
		if err := rows.Scan(&st.Stage, &st.Calls, &mean); err != nil {
			return nil, fmt.Errorf("failed to scan stage confidence: %w", err)
		}
		st.MeanConfidence = mean.Float64
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return stats, nil
}
