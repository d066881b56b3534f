// Package planner turns a goal/equipment/time triple into a short workout plan.
package planner

import (
	"fmt"

	"fitbuddy/app/internal/domain"
)

// MaxEntries is the length cap applied to every generated plan.
const MaxEntries = 4

// CoolDown is always appended after the exercise block.
const CoolDown = "Stretch & cool down – 3 mins"

type rule struct {
	equipment domain.Equipment
	goal      domain.Goal // empty matches any goal
	exercises []string
}

// rules are evaluated in order; the first match contributes its exercises.
var rules = []rule{
	{domain.EquipmentBodyweight, domain.GoalBurn, []string{"Jumping Jacks – 2 min", "High Knees – 1 min", "Burpees – 10 reps"}},
	{domain.EquipmentBodyweight, domain.GoalTone, []string{"Plank – 1 min", "Lunges – 3x12", "Pushups – 3x10"}},
	{domain.EquipmentBodyweight, "", []string{"Pike Pushups – 3x8", "Bulgarian Split Squats – 3x10", "Slow Squats – 3x12"}},
	{domain.EquipmentBands, "", []string{"Band Rows – 3x15", "Band Squats – 3x12", "Overhead Press – 3x10"}},
	{domain.EquipmentDumbbells, "", []string{"Dumbbell Deadlifts – 3x10", "Chest Press – 3x12", "Shoulder Press – 3x10"}},
	{domain.EquipmentHotel, "", []string{"Treadmill Run – 5 mins", "Cable Rows – 3x15", "Leg Press – 3x10"}},
}

func (r rule) matches(req domain.WorkoutRequest) bool {
	if r.equipment != req.Equipment {
		return false
	}
	return r.goal == "" || r.goal == req.Goal
}

// Summary renders the total-time line for the given minutes.
func Summary(minutes int) string {
	return fmt.Sprintf("Total time: ~%d minutes", minutes)
}

// GeneratePlan builds the plan for req. It never fails: unknown equipment
// yields only the cool-down and summary lines, and an unparsable time is
// reported as 0 minutes. The result is cut to MaxEntries by index, so a
// three-exercise block loses the summary line.
func GeneratePlan(req domain.WorkoutRequest) domain.WorkoutPlan {
	plan := make(domain.WorkoutPlan, 0, 5)
	for _, r := range rules {
		if r.matches(req) {
			plan = append(plan, r.exercises...)
			break
		}
	}
	plan = append(plan, CoolDown, Summary(req.Minutes()))
	if len(plan) > MaxEntries {
		plan = plan[:MaxEntries]
	}
	return plan
}
