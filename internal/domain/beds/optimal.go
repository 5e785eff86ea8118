package beds

import (
	"context"
	"math"

	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/triage"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/platform/floorplan"
)

// OptimalStrategy solves the assignment problem exactly. The cost of giving
// bed b to patient p is (severity(p) + 0.1) * distance(b), so the sickest
// patients land closest and nobody's distance is free. Only the top
// min(patients, beds) patients get a bed.
type OptimalStrategy struct{}

func (OptimalStrategy) Assign(ctx context.Context, patients []triage.ScoredPatient, provider floorplan.DistanceProvider) ([]Allocation, error) {
	ranked := triage.Ranked(patients)
	beds := provider.Beds()
	dist, err := entryDistances(ctx, provider, beds)
	if err != nil {
		return nil, err
	}

	k := min(len(ranked), len(beds))
	out := make([]Allocation, 0, len(ranked))
	if k == 0 {
		for _, p := range ranked {
			out = append(out, unassigned(p))
		}
		return out, nil
	}

	// A shortest path never exceeds the cell count, so this keeps
	// unreachable beds behind every reachable one.
	unreachable := float64(4*len(beds) + 1)
	cost := make([][]float64, k)
	for i := range k {
		w := ranked[i].Severity + 0.1
		cost[i] = make([]float64, len(beds))
		for j := range beds {
			d := unreachable
			if dist[j] != nil {
				d = float64(*dist[j])
			}
			cost[i][j] = w * d
		}
	}

	match, err := hungarian(ctx, cost)
	if err != nil {
		return nil, err
	}
	for i, p := range ranked {
		if i >= k {
			out = append(out, unassigned(p))
			continue
		}
		j := match[i]
		var c *int
		if dist[j] != nil {
			d := *dist[j]
			c = &d
		}
		out = append(out, assigned(p, beds[j], c))
	}
	return out, nil
}

// hungarian returns the column matched to each row in a minimum-cost
// assignment. It needs len(cost) <= len(cost[0]). O(n²m) with row and
// column potentials. ctx is checked once per row.
func hungarian(ctx context.Context, cost [][]float64) ([]int, error) {
	n, m := len(cost), len(cost[0])
	u := make([]float64, n+1)
	v := make([]float64, m+1)
	p := make([]int, m+1) // p[j]: row matched to column j, 1-based; 0 = free
	way := make([]int, m+1)

	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p[0] = i
		j0 := 0
		minv := make([]float64, m+1)
		for j := range minv {
			minv[j] = math.Inf(1)
		}
		used := make([]bool, m+1)

		for {
			used[j0] = true
			i0, delta, j1 := p[j0], math.Inf(1), 0
			for j := 1; j <= m; j++ {
				if used[j] {
					continue
				}
				if cur := cost[i0-1][j-1] - u[i0] - v[j]; cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= m; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	match := make([]int, n)
	for j := 1; j <= m; j++ {
		if p[j] != 0 {
			match[p[j]-1] = j - 1
		}
	}
	return match, nil
}
