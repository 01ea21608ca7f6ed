// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package controls

import (
	"fmt"

	"github.com/Thermoquad/kspio/pkg/serialio"
	"github.com/Thermoquad/kspio/pkg/sim"
)

// ActionKind selects what a button edge does
type ActionKind int

// Action kinds
const (
	ActionNoOp ActionKind = iota
	ActionToggleGroup
	ActionSetUIMode
	ActionTriggerStage
	ActionAdjustTimeWarp
	ActionRecomputeAutopilot
	ActionNextCamera
)

func (k ActionKind) String() string {
	switch k {
	case ActionToggleGroup:
		return "ToggleGroup"
	case ActionSetUIMode:
		return "SetUIMode"
	case ActionTriggerStage:
		return "TriggerStage"
	case ActionAdjustTimeWarp:
		return "AdjustTimeWarp"
	case ActionRecomputeAutopilot:
		return "RecomputeAutopilot"
	case ActionNextCamera:
		return "NextCamera"
	default:
		return "NoOp"
	}
}

// Action is one entry of the button action table.
//
//   - ToggleGroup: set Group to the edge direction, then recompute the
//     autopilot if Recompute is set (SAS).
//   - SetUIMode: docking on press, staging on release.
//   - TriggerStage: activate the next stage on press and set the Stage group
//     to the edge direction.
//   - AdjustTimeWarp: move the warp rate index by Step on press.
//   - RecomputeAutopilot: reselect the autopilot mode on any edge.
//   - NextCamera: cycle the hull camera on press.
type Action struct {
	Kind      ActionKind
	Group     sim.ActionGroup
	Step      int
	Recompute bool
}

func (a Action) String() string {
	switch a.Kind {
	case ActionToggleGroup:
		return fmt.Sprintf("%s(%s)", a.Kind, a.Group)
	case ActionAdjustTimeWarp:
		return fmt.Sprintf("%s(%+d)", a.Kind, a.Step)
	default:
		return a.Kind.String()
	}
}

// ActionTable maps every button slot to its action. Unlisted slots are NoOp.
type ActionTable [serialio.ButtonCount]Action

// NewActionTable builds the table for layout.
func NewActionTable(layout ButtonLayout) ActionTable {
	var t ActionTable

	set := func(index int, a Action) {
		if index >= 0 && index < len(t) {
			t[index] = a
		}
	}

	set(layout.SAS, Action{Kind: ActionToggleGroup, Group: sim.GroupSAS, Recompute: true})
	set(layout.Gear, Action{Kind: ActionToggleGroup, Group: sim.GroupGear})
	set(layout.Lights, Action{Kind: ActionToggleGroup, Group: sim.GroupLight})
	set(layout.Brakes, Action{Kind: ActionToggleGroup, Group: sim.GroupBrakes})
	set(layout.Mode, Action{Kind: ActionSetUIMode})
	set(layout.Stage, Action{Kind: ActionTriggerStage, Group: sim.GroupStage})
	set(layout.WarpDown, Action{Kind: ActionAdjustTimeWarp, Step: -1})
	set(layout.WarpUp, Action{Kind: ActionAdjustTimeWarp, Step: +1})
	set(layout.NextCamera, Action{Kind: ActionNextCamera})

	for _, index := range []int{layout.APApPe, layout.APRadial, layout.APNormal, layout.APTarget, layout.APModifier} {
		set(index, Action{Kind: ActionRecomputeAutopilot})
	}

	for n, index := range layout.CustomGroups {
		set(index, Action{Kind: ActionToggleGroup, Group: sim.CustomGroup(n + 1)})
	}

	return t
}

// Mapped returns the indices with an action other than NoOp.
func (t *ActionTable) Mapped() []int {
	var mapped []int
	for i, a := range t {
		if a.Kind != ActionNoOp {
			mapped = append(mapped, i)
		}
	}
	return mapped
}
