package circuit

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"sort"

	"circuitopt/internal/model"
)

const projectionEpsilon = 1e-6

type constraintRecord struct {
	targetIdx    int
	sourceIdx    []int
	relationship model.Relationship
	compiled     model.CompiledExpressioner
}

// constraintCache is a single-entry cache of the per-constraint expression
// results, keyed by a hash of the source-parameter subset. Only the raw
// computed values are cached; the relationship decision always re-runs
// against the current target values, which may differ even when every
// source is unchanged.
type constraintCache struct {
	valid     bool
	sourceKey uint64
	computed  []float64
}

func sourceKey(params []float64, sourceIndices []int) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, idx := range sourceIndices {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(params[idx]))
		h.Write(buf[:])
	}
	return h.Sum64()
}

func uniqueSortedSources(constraints []constraintRecord) []int {
	seen := make(map[int]struct{})
	for _, c := range constraints {
		for _, idx := range c.sourceIdx {
			seen[idx] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for idx := range seen {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// applyConstraints projects params onto the feasible set: constraint
// closure (with single-entry caching over the source-only subset), then
// fabrication-grid rounding. params is mutated in place.
func applyConstraints(params []float64, bounds []model.Parameter, constraints []constraintRecord, cache *constraintCache, gridSize float64) error {
	if len(constraints) > 0 {
		sources := uniqueSortedSources(constraints)
		key := sourceKey(params, sources)

		var computed []float64
		if cache.valid && cache.sourceKey == key {
			computed = cache.computed
		} else {
			computed = make([]float64, len(constraints))
			for i, c := range constraints {
				sourceVals := make([]float64, len(c.sourceIdx))
				for j, idx := range c.sourceIdx {
					sourceVals[j] = params[idx]
				}
				v, err := c.compiled.Evaluate(sourceVals)
				if err != nil {
					return err
				}
				computed[i] = v
			}
			cache.valid = true
			cache.sourceKey = key
			cache.computed = computed
		}

		for i, c := range constraints {
			current := params[c.targetIdx]

			newVal := current
			switch c.relationship {
			case model.RelEq:
				newVal = computed[i]
			case model.RelGe:
				if current < computed[i] {
					newVal = computed[i]
				}
			case model.RelLe:
				if current > computed[i] {
					newVal = computed[i]
				}
			case model.RelGt:
				if current <= computed[i] {
					newVal = computed[i] + projectionEpsilon
				}
			case model.RelLt:
				if current >= computed[i] {
					newVal = computed[i] - projectionEpsilon
				}
			}

			b := bounds[c.targetIdx]
			if newVal < b.Min {
				newVal = b.Min
			}
			if newVal > b.Max {
				newVal = b.Max
			}
			params[c.targetIdx] = newVal
		}
	}

	for i := range params {
		b := bounds[i]
		v := params[i]
		if v < b.Min {
			v = b.Min
		}
		if v > b.Max {
			v = b.Max
		}
		if gridSize > 0 {
			v = math.Round(v/gridSize) * gridSize
			// Rounding can escape the bounds by up to half a grid step;
			// fall back to the nearest in-bounds grid multiple.
			if v > b.Max {
				v = math.Floor(b.Max/gridSize) * gridSize
			}
			if v < b.Min {
				v = math.Ceil(b.Min/gridSize) * gridSize
			}
		}
		params[i] = v
	}

	return nil
}
