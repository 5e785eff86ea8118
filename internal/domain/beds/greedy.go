package beds

import (
	"context"

	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/triage"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/platform/floorplan"
)

// GreedyStrategy serves the sickest patient first with the closest free bed.
// Ties go to the bed listed first by the provider. When every free bed is
// unreachable the first free bed is still handed out, without a cost.
type GreedyStrategy struct{}

func (GreedyStrategy) Assign(ctx context.Context, patients []triage.ScoredPatient, provider floorplan.DistanceProvider) ([]Allocation, error) {
	beds := provider.Beds()
	dist, err := entryDistances(ctx, provider, beds)
	if err != nil {
		return nil, err
	}
	used := make([]bool, len(beds))

	out := make([]Allocation, 0, len(patients))
	for _, p := range triage.Ranked(patients) {
		best, firstFree := -1, -1
		for i := range beds {
			if used[i] {
				continue
			}
			if firstFree < 0 {
				firstFree = i
			}
			if dist[i] == nil {
				continue
			}
			if best < 0 || *dist[i] < *dist[best] {
				best = i
			}
		}

		switch {
		case best >= 0:
			used[best] = true
			cost := *dist[best]
			out = append(out, assigned(p, beds[best], &cost))
		case firstFree >= 0:
			used[firstFree] = true
			out = append(out, assigned(p, beds[firstFree], nil))
		default:
			out = append(out, unassigned(p))
		}
	}
	return out, nil
}
