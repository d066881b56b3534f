package domain

import (
	"math"
	"strings"
	"unicode"
)

// Goal is the training goal picked on the plan form.
type Goal string

const (
	GoalBurn  Goal = "burn"
	GoalTone  Goal = "tone"
	GoalBuild Goal = "build"
)

// Equipment is the equipment category picked on the plan form.
type Equipment string

const (
	EquipmentBodyweight Equipment = "bodyweight"
	EquipmentBands      Equipment = "bands"
	EquipmentDumbbells  Equipment = "dumbbells"
	EquipmentHotel      Equipment = "hotel"
)

// WorkoutRequest is the input of the plan generator. Unknown goal or
// equipment values are kept as given; Time is the raw text from the form.
type WorkoutRequest struct {
	Goal      Goal      `json:"goal"`
	Equipment Equipment `json:"equipment"`
	Time      string    `json:"time"`
}

// Minutes parses the leading integer of Time ("15", "15 min").
// Anything that does not start with a positive integer yields 0. Values
// are taken as given; only digit runs that overflow int saturate.
func (r WorkoutRequest) Minutes() int {
	s := strings.TrimLeftFunc(r.Time, unicode.IsSpace)
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		d := int(c - '0')
		if n > (math.MaxInt-d)/10 {
			return math.MaxInt
		}
		n = n*10 + d
	}
	return n
}

// WorkoutPlan is an ordered list of "<Exercise> – <prescription>" lines.
type WorkoutPlan []string

// Text renders the plan one line per entry, the form it is saved in.
func (p WorkoutPlan) Text() string {
	return strings.Join(p, "\n")
}
