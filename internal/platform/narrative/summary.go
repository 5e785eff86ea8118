package narrative

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/beds"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/schedule"
)

const (
	// NoScheduleMessage is returned for infeasible or empty schedules
	// without calling the service.
	NoScheduleMessage = "No feasible schedule could be created with the current constraints."
	NoDataMessage     = "No data provided for summary."
)

const (
	bedSystem      = "You explain hospital bed assignments to non-technical staff. Be brief and avoid jargon."
	scheduleSystem = "You explain surgery schedules to non-technical staff. Be brief and avoid jargon."
	combinedSystem = "You summarize hospital resource plans for ward staff in plain language, with short sections and bullet points."
)

// Summarize picks the summary that fits what is available.
func (c *Client) Summarize(ctx context.Context, allocs []beds.Allocation, res schedule.Result, total int) (string, error) {
	hasSchedule := res.Infeasible || len(res.Slots) > 0
	switch {
	case len(allocs) > 0 && hasSchedule:
		return c.CombinedSummary(ctx, allocs, res, total)
	case len(allocs) > 0:
		return c.BedSummary(ctx, allocs, total)
	case hasSchedule:
		return c.ScheduleSummary(ctx, res)
	default:
		return NoDataMessage, nil
	}
}

func (c *Client) BedSummary(ctx context.Context, allocs []beds.Allocation, total int) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Bed allocation for %d patients, %d with a bed.\n\n", total, withBed(allocs))
	b.WriteString("First assignments, most severe first:\n")
	for _, a := range allocs[:min(5, len(allocs))] {
		writeAllocation(&b, a)
	}
	b.WriteString("\nExplain what was done, how patients were prioritized, what the distance cost means, and anything staff should watch for.")
	return c.complete(ctx, bedSystem, b.String(), 500)
}

func (c *Client) ScheduleSummary(ctx context.Context, res schedule.Result) (string, error) {
	if res.Infeasible || len(res.Slots) == 0 {
		return NoScheduleMessage, nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d surgeries scheduled:\n", len(res.Slots))
	for _, s := range res.Slots {
		writeSlot(&b, s)
	}
	b.WriteString("\nExplain the schedule, how it was ordered, and which double-booking rules it respects.")
	return c.complete(ctx, scheduleSystem, b.String(), 500)
}

func (c *Client) CombinedSummary(ctx context.Context, allocs []beds.Allocation, res schedule.Result, total int) (string, error) {
	top := slices.Clone(allocs)
	slices.SortStableFunc(top, func(a, b beds.Allocation) int {
		switch {
		case a.Severity > b.Severity:
			return -1
		case a.Severity < b.Severity:
			return 1
		}
		return 0
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Beds: %d patients, %d with a bed. Most severe:\n", total, withBed(allocs))
	for _, a := range top[:min(3, len(top))] {
		writeAllocation(&b, a)
	}
	if res.Infeasible {
		b.WriteString("\nSurgery schedule: no feasible schedule was found.\n")
	} else {
		fmt.Fprintf(&b, "\nSurgery schedule: %d booked.\n", len(res.Slots))
		for _, s := range res.Slots[:min(5, len(res.Slots))] {
			writeSlot(&b, s)
		}
	}
	b.WriteString("\nSummarize what the plan achieves, how critical patients were prioritized, and what staff should do next.")
	return c.complete(ctx, combinedSystem, b.String(), 800)
}

func withBed(allocs []beds.Allocation) int {
	n := 0
	for _, a := range allocs {
		if a.HasBed() {
			n++
		}
	}
	return n
}

func writeAllocation(b *strings.Builder, a beds.Allocation) {
	cost := "n/a"
	if a.DistanceCost != nil {
		cost = fmt.Sprint(*a.DistanceCost)
	}
	fmt.Fprintf(b, "- patient %s, severity %.2f: %s (distance %s)\n", a.PatientID, a.Severity, a.AssignedBed, cost)
}

func writeSlot(b *strings.Builder, s schedule.Slot) {
	fmt.Fprintf(b, "- patient %s, severity %.2f: %s in %s at %s\n", s.PatientID, s.Severity, s.Doctor, s.Room, s.Time)
}
