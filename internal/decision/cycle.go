package decision

import (
	"context"

	"solsniper/internal/anomaly"
	"solsniper/internal/blacklist"
	"solsniper/internal/vetting"
	"solsniper/models"
)

// Cycle is the single evaluation entry point every driver shares: the scan
// loop, the operator commands and the one-shot CLI all call Evaluate and
// differ only in how they obtain inputs and what they do with the outputs.
// Cycle holds no loop, no timer and no mutable state.
type Cycle struct {
	pipeline *vetting.Pipeline
	detector *anomaly.Detector
	engine   *Engine
}

// NewCycle wires the pipeline, detector and engine together.
func NewCycle(pipeline *vetting.Pipeline, detector *anomaly.Detector, engine *Engine) *Cycle {
	return &Cycle{
		pipeline: pipeline,
		detector: detector,
		engine:   engine,
	}
}

// Evaluate vets the snapshot against the frozen blacklist view, runs anomaly
// detection on the price series when the token survives vetting, and returns
// the verdict together with the decision. The anomaly detector never runs
// for rejected tokens.
func (c *Cycle) Evaluate(ctx context.Context, cycleID string, snap *models.TokenSnapshot, prices []models.PricePoint, cfg models.FilterConfig, view blacklist.View) (vetting.Verdict, models.TradeDecision) {
	verdict := c.pipeline.Vet(ctx, snap, cfg, view)
	if !verdict.Accepted {
		return verdict, c.engine.Decide(cycleID, snap, verdict, anomaly.Result{})
	}

	anomalies := c.detector.Detect(prices)
	return verdict, c.engine.Decide(cycleID, snap, verdict, anomalies)
}
