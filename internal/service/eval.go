package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/saurrx/priced/internal/match"
)

// EvalCase is one labeled should-match text: the match is correct when the
// accepted event's descriptive text contains any of the given substrings.
type EvalCase struct {
	Text  string   `json:"text"`
	AnyOf []string `json:"anyOf"`
}

// EvalDataset is a labeled threshold-tuning dataset.
type EvalDataset struct {
	ShouldMatch    []EvalCase `json:"shouldMatch"`
	ShouldNotMatch []string   `json:"shouldNotMatch"`
}

// EvalReport aggregates the confusion counts over a dataset.
type EvalReport struct {
	TruePositives  int     `json:"truePositives"`
	FalseNegatives int     `json:"falseNegatives"`
	TrueNegatives  int     `json:"trueNegatives"`
	FalsePositives int     `json:"falsePositives"`
	Precision      float64 `json:"precision"`
	Recall         float64 `json:"recall"`
	F1             float64 `json:"f1"`
}

// LoadEvalDataset reads a dataset file.
func LoadEvalDataset(path string) (EvalDataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EvalDataset{}, fmt.Errorf("service: read eval dataset: %w", err)
	}
	var ds EvalDataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return EvalDataset{}, fmt.Errorf("service: parse eval dataset: %w", err)
	}
	return ds, nil
}

// Evaluate runs the full embed-and-match pipeline over a labeled dataset and
// reports precision/recall/F1. A should-match text that matches the wrong
// event counts as a false negative.
func (s *MatchService) Evaluate(ctx context.Context, ds EvalDataset) (EvalReport, error) {
	var report EvalReport
	idx := s.matcher.Index()

	for i, c := range ds.ShouldMatch {
		vectors, err := s.embedder.Embed(ctx, []string{c.Text})
		if err != nil {
			return report, fmt.Errorf("service: embed eval case %d: %w", i, err)
		}
		result, err := s.matcher.Match(ctx, vectors[0], match.Options{Text: c.Text})
		if err != nil {
			return report, fmt.Errorf("service: match eval case %d: %w", i, err)
		}

		correct := false
		if result != nil {
			ev, _ := idx.Event(result.EventID)
			for _, sub := range c.AnyOf {
				if strings.Contains(strings.ToLower(ev.Text), strings.ToLower(sub)) {
					correct = true
					break
				}
			}
		}
		if correct {
			report.TruePositives++
		} else {
			report.FalseNegatives++
			s.logger.Info("eval miss",
				slog.String("text", c.Text),
				slog.Bool("matched", result != nil),
			)
		}
	}

	for i, text := range ds.ShouldNotMatch {
		vectors, err := s.embedder.Embed(ctx, []string{text})
		if err != nil {
			return report, fmt.Errorf("service: embed eval negative %d: %w", i, err)
		}
		result, err := s.matcher.Match(ctx, vectors[0], match.Options{Text: text})
		if err != nil {
			return report, fmt.Errorf("service: match eval negative %d: %w", i, err)
		}
		if result == nil {
			report.TrueNegatives++
		} else {
			report.FalsePositives++
			s.logger.Info("eval false positive",
				slog.String("text", text),
				slog.String("event_id", result.EventID),
				slog.Float64("confidence", result.Confidence),
			)
		}
	}

	if tp := float64(report.TruePositives); tp > 0 {
		report.Precision = tp / float64(report.TruePositives+report.FalsePositives)
		report.Recall = tp / float64(report.TruePositives+report.FalseNegatives)
		report.F1 = 2 * report.Precision * report.Recall / (report.Precision + report.Recall)
	}
	return report, nil
}
