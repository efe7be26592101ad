// internal/workers/assistant/detect-action/escalation.go
package detectaction

import (
	"context"

	"assistant-workers/internal/models"
)

// Stage identifies which classifier produced the final result.
type Stage string

const (
	StagePattern Stage = "pattern"
	StageRemote  Stage = "remote"
)

// Strategy is the two-stage escalation policy made explicit: run Primary,
// and only when its confidence is below Threshold consult Fallback, merging
// the two results with Merge. Fallback errors leave the primary result
// untouched, so classification stays total.
type Strategy struct {
	Primary   func(ctx context.Context, input *Input) models.DetectedAction
	Fallback  func(ctx context.Context, input *Input) (models.DetectedAction, error)
	Threshold float64
	Merge     func(primary, fallback models.DetectedAction) (models.DetectedAction, Stage)
}

// Classify runs the strategy against one input and reports which stage
// produced the winning result.
func (s *Strategy) Classify(ctx context.Context, input *Input) (models.DetectedAction, Stage, error) {
	primary := s.Primary(ctx, input)
	if primary.Confidence >= s.Threshold {
		return primary, StagePattern, nil
	}

	fallback, err := s.Fallback(ctx, input)
	if err != nil {
		return primary, StagePattern, err
	}

	merged, stage := s.Merge(primary, fallback)
	return merged, stage, nil
}

// PreferMoreConfident trusts the fallback result iff its confidence is
// strictly greater than the primary's.
func PreferMoreConfident(primary, fallback models.DetectedAction) (models.DetectedAction, Stage) {
	if fallback.Confidence > primary.Confidence {
		return fallback, StageRemote
	}
	return primary, StagePattern
}
