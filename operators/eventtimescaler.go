// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package operators

import (
	"math"

	"github.com/jsalarias/ecoevolity/parameter"
	"github.com/jsalarias/ecoevolity/randomsource"
	"github.com/jsalarias/ecoevolity/tree"
)

// EventTimeScaler proposes a new value for one divergence-time
// (height-table) entry by multiplying it by exp(lambda*(u-0.5)), then
// applies it via Tree.SlideBumpHeight so any resulting collision with
// a neighboring height is resolved per the given policy. Its Hastings
// ratio is the log of the multiplier; SlideBumpHeight reports only
// success or failure, so no term for collision resolution is added.
//
// It identifies its height by the height-table parameter itself
// rather than a table index: MergeHeightUp/SplitHeightDown (run every
// step by HeightMoveOperator) resize the table, so an index captured
// once at operator-construction time can go stale — pointing past the
// end of the table, or at a different height than the one this
// operator was built for. Re-resolving the live index from the
// parameter on every Propose keeps the operator valid across
// dimension changes without requiring the chain to rebuild its
// operator schedule.
type EventTimeScaler struct {
	weight float64
	tr     *tree.Tree
	height *parameter.Parameter
	policy tree.CollisionPolicy
	tuner  *autoTuner
}

// NewEventTimeScaler returns an EventTimeScaler over the height
// currently at table index heightIndex of tr.
func NewEventTimeScaler(tr *tree.Tree, heightIndex int, policy tree.CollisionPolicy, weight, lambda float64) *EventTimeScaler {
	return &EventTimeScaler{weight: weight, tr: tr, height: tr.HeightParameterAt(heightIndex), policy: policy, tuner: newAutoTuner(lambda)}
}

func (e *EventTimeScaler) Name() string    { return "EventTimeScaler" }
func (e *EventTimeScaler) Weight() float64 { return e.weight }

func (e *EventTimeScaler) Propose(rng *randomsource.Source) (float64, bool) {
	k, err := e.tr.GetNodeHeightIndex(e.height)
	if err != nil {
		// This height was merged away by a HeightMoveOperator move
		// since the schedule was built; nothing left to scale.
		return 0, false
	}
	if e.tr.IsRootHeightIndex(k) && e.tr.RootHeightFixed() {
		return 0, false
	}
	lambda := e.tuner.value()
	old := e.tr.HeightValueAt(k)
	multiplier := math.Exp(lambda * (rng.Float64() - 0.5))
	newValue := old * multiplier
	if !e.tr.SlideBumpHeight(k, newValue, e.policy, rng) {
		return 0, false
	}
	return math.Log(multiplier), true
}

func (e *EventTimeScaler) Optimize(accepted bool) { e.tuner.update(accepted) }
