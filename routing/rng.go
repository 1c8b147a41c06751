// Package routing - deterministic random streams for the metaheuristics.
//
// Same seed ⇒ identical search trajectory on every platform. No time-based
// sources are used anywhere in the package.
//
// Concurrency: math/rand.Rand is not goroutine-safe; each solve owns its stream.
package routing

import "math/rand"

// defaultRNGSeed is used when SearchParameters.Seed == 0.
const defaultRNGSeed int64 = 1

// rngFromSeed returns a deterministic *rand.Rand.
// Policy: seed==0 ⇒ defaultRNGSeed; otherwise the seed is used verbatim.
//
// Complexity: O(1).
func rngFromSeed(seed int64) *rand.Rand {
	if seed == 0 {
		seed = defaultRNGSeed
	}
	return rand.New(rand.NewSource(seed))
}

// pickVehicle returns a uniformly random vehicle whose route has at least
// minLen visits, or -1 when none qualifies.
//
// Complexity: O(V).
func pickVehicle(r *rand.Rand, routes [][]int64, minLen int) int {
	chosen, seen := unassigned, 0
	for v, route := range routes {
		if len(route) < minLen {
			continue
		}
		seen++
		if r.Intn(seen) == 0 {
			chosen = v
		}
	}
	return chosen
}

// pickOtherVehicle returns a uniformly random vehicle different from v, or -1
// when there is only one vehicle.
func pickOtherVehicle(r *rand.Rand, numVehicles, v int) int {
	if numVehicles < 2 {
		return unassigned
	}
	o := r.Intn(numVehicles - 1)
	if o >= v {
		o++
	}
	return o
}
