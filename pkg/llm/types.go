package llm

import (
	"context"
	"time"
)

// EvaluationScores holds the four bounded sub-scores of an answer evaluation.
type EvaluationScores struct {
	Correctness   float64 `json:"correctness" validate:"gte=0,lte=10"`
	Completeness  float64 `json:"completeness" validate:"gte=0,lte=10"`
	Quality       float64 `json:"quality" validate:"gte=0,lte=10"`
	Communication float64 `json:"communication" validate:"gte=0,lte=10"`
}

// EvaluationResult is the validated payload extracted from the model's reply.
type EvaluationResult struct {
	Scores      EvaluationScores `json:"scores"`
	Feedback    string           `json:"feedback" validate:"required"`
	Suggestions []string         `json:"suggestions" validate:"min=1,dive,required"`
}

// GenerateOptions control a single generation call.
type GenerateOptions struct {
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// Generator is the outbound dependency services use to talk to the model.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}
