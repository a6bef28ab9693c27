package vedic

import (
	"fmt"
	"math"
	"time"

	apperrors "github.com/astrachart/astrachart/pkg/errors"
)

// yearDuration is the astronomical year used for dasha spans.
const yearDuration = time.Duration(365.25 * 24 * float64(time.Hour))

func yearsToDuration(years float64) time.Duration {
	return time.Duration(years * float64(yearDuration))
}

// ComputeDasha builds the nested period tree for a reference instant and
// longitude under the given system. maxDepth counts nesting levels below the
// root: 1 yields top-level periods only. The root period wraps the full tree.
func ComputeDasha(ref time.Time, refLon float64, system System, maxDepth int) (Period, error) {
	if maxDepth < 1 {
		return Period{}, apperrors.Wrap(apperrors.CodeCalculation, fmt.Sprintf("dasha depth must be at least 1, got %d", maxDepth), nil)
	}
	if len(system.Lords) == 0 || len(system.Lords) != len(system.Years) || len(system.Assignment) != system.SpanCount {
		return Period{}, apperrors.Wrap(apperrors.CodeCalculation, fmt.Sprintf("dasha system %q has inconsistent tables", system.Name), nil)
	}

	norm := math.Mod(refLon, 360)
	if norm < 0 {
		norm += 360
	}
	spanSize := system.SpanSize()
	spanIdx := int(norm/spanSize) % system.SpanCount
	frac := norm/spanSize - float64(int(norm/spanSize))
	startLord := system.Assignment[spanIdx]

	// One full cycle starting from the balance of the span lord: the first
	// period is partial, the remaining lords follow in canonical order.
	periods := make([]Period, 0, len(system.Lords))
	cursor := ref
	for k := 0; k < len(system.Lords); k++ {
		lordIdx := (startLord + k) % len(system.Lords)
		years := system.Years[lordIdx]
		if k == 0 {
			years *= 1 - frac
		}
		period := Period{
			Lord:     system.Lords[lordIdx],
			Start:    cursor,
			Duration: yearsToDuration(years),
			Depth:    1,
		}
		if maxDepth > 1 {
			period.Children = subdivide(period, lordIdx, system, maxDepth)
		}
		cursor = period.End()
		periods = append(periods, period)
	}

	root := Period{
		Lord:     system.Name,
		Start:    ref,
		Duration: cursor.Sub(ref),
		Depth:    0,
		Children: periods,
	}
	return root, nil
}

// subdivide splits a period into one child per lord, rotated so the parent's
// own lord comes first. Child boundaries are fractions of the parent span, so
// consecutive children are exactly contiguous and the last child ends exactly
// at the parent's end.
func subdivide(parent Period, parentLordIdx int, system System, maxDepth int) []Period {
	n := len(system.Lords)
	children := make([]Period, 0, n)
	cumYears := 0.0
	prevOffset := time.Duration(0)
	for k := 0; k < n; k++ {
		lordIdx := (parentLordIdx + k) % n
		cumYears += system.Years[lordIdx]
		var offset time.Duration
		if k == n-1 {
			offset = parent.Duration
		} else {
			offset = time.Duration(float64(parent.Duration) * (cumYears / system.CycleYears))
		}
		child := Period{
			Lord:     system.Lords[lordIdx],
			Start:    parent.Start.Add(prevOffset),
			Duration: offset - prevOffset,
			Depth:    parent.Depth + 1,
		}
		if parent.Depth+1 < maxDepth {
			child.Children = subdivide(child, lordIdx, system, maxDepth)
		}
		prevOffset = offset
		children = append(children, child)
	}
	return children
}

// ComputeDashaByName resolves the system and depth names, then computes.
func ComputeDashaByName(ref time.Time, refLon float64, systemName, depthName string) (DashaResult, error) {
	system, err := SystemByName(systemName)
	if err != nil {
		return DashaResult{}, err
	}
	depth, err := DepthForName(depthName)
	if err != nil {
		return DashaResult{}, err
	}
	root, err := ComputeDasha(ref, refLon, system, depth)
	if err != nil {
		return DashaResult{}, err
	}
	return DashaResult{
		System:        system.Name,
		Depth:         depth,
		BirthDateTime: ref,
		Periods:       root.Children,
	}, nil
}
