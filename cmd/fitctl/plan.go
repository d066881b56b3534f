package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"fitbuddy/app/internal/domain"
	"fitbuddy/app/internal/planner"
)

func newPlanCmd() *cobra.Command {
	var goal, equipment, minutes, format string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print a workout plan for a goal, equipment and time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan := planner.GeneratePlan(domain.WorkoutRequest{
				Goal:      domain.Goal(goal),
				Equipment: domain.Equipment(equipment),
				Time:      minutes,
			})
			out := cmd.OutOrStdout()
			switch format {
			case "text":
				for _, line := range plan {
					_, _ = fmt.Fprintln(out, line)
				}
				return nil
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(plan)
			case "yaml":
				enc := yaml.NewEncoder(out)
				defer enc.Close()
				return enc.Encode(map[string]any{
					"goal":      goal,
					"equipment": equipment,
					"minutes":   domain.WorkoutRequest{Time: minutes}.Minutes(),
					"plan":      []string(plan),
				})
			default:
				return fmt.Errorf("unknown format %q (text|json|yaml)", format)
			}
		},
	}
	cmd.Flags().StringVar(&goal, "goal", string(domain.GoalBurn), "goal: burn|tone|build")
	cmd.Flags().StringVar(&equipment, "equipment", string(domain.EquipmentBodyweight), "equipment: bodyweight|bands|dumbbells|hotel")
	cmd.Flags().StringVar(&minutes, "time", "15", "available minutes")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text|json|yaml")
	return cmd
}
