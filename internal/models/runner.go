package models

// NormalizedRunner is a cleaned runner record.
type NormalizedRunner struct {
	RunnerID         string             `json:"runner_id"`
	Name             string             `json:"name"`
	SaddleCloth      string             `json:"saddle_cloth"`
	OddsDecimal      *float64           `json:"odds_decimal"`
	OddsText         *string            `json:"odds_text"`
	JockeyName       *string            `json:"jockey_name"`
	TrainerName      *string            `json:"trainer_name"`
	ConfidenceScores map[string]float64 `json:"confidence_scores"`
	RawData          map[string]any     `json:"raw_data"`
}

// HasOdds reports whether the runner has a usable price.
func (r *NormalizedRunner) HasOdds() bool {
	return r.OddsDecimal != nil
}

// GetOdds returns the decimal odds or 0 if nil
func (r *NormalizedRunner) GetOdds() float64 {
	if r.OddsDecimal == nil {
		return 0
	}
	return *r.OddsDecimal
}

// Clone returns a deep copy of the runner.
func (r NormalizedRunner) Clone() NormalizedRunner {
	out := r
	out.OddsDecimal = clonePtr(r.OddsDecimal)
	out.OddsText = clonePtr(r.OddsText)
	out.JockeyName = clonePtr(r.JockeyName)
	out.TrainerName = clonePtr(r.TrainerName)
	out.ConfidenceScores = make(map[string]float64, len(r.ConfidenceScores))
	for k, v := range r.ConfidenceScores {
		out.ConfidenceScores[k] = v
	}
	out.RawData = make(map[string]any, len(r.RawData))
	for k, v := range r.RawData {
		out.RawData[k] = v
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
