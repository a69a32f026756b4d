package sector

import (
	"github.com/pkg/errors"

	"github.com/cyberwyvern/QuadtreePlanet/scene"
	"github.com/cyberwyvern/QuadtreePlanet/spatialmath"
	"github.com/cyberwyvern/QuadtreePlanet/utils"
)

// spherize moves every vertex along its ray from the origin onto the sphere of the given
// radius. Vertices are independent, so large grids are split across goroutines once they reach
// parallelThreshold vertices; the result does not depend on the split.
func spherize(grid *scene.GridGeometry, radius float64, parallelThreshold int) error {
	if parallelThreshold <= 0 || grid.Len() < parallelThreshold {
		for i, p := range grid.Positions {
			projected, err := spatialmath.ProjectToRadius(p, radius)
			if err != nil {
				return errors.Wrapf(err, "vertex %d", i)
			}
			grid.Positions[i] = projected
		}
		return nil
	}

	// groups cover ascending index ranges, so the first group error is the lowest index
	var groupErrs []error
	utils.GroupWorkParallel(
		grid.Len(),
		func(numGroups int) {
			groupErrs = make([]error, numGroups)
		},
		func(groupNum, groupSize, from, to int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc) {
			return func(memberNum, workNum int) {
				if groupErrs[groupNum] != nil {
					return
				}
				projected, err := spatialmath.ProjectToRadius(grid.Positions[workNum], radius)
				if err != nil {
					groupErrs[groupNum] = errors.Wrapf(err, "vertex %d", workNum)
					return
				}
				grid.Positions[workNum] = projected
			}, nil
		},
	)
	for _, err := range groupErrs {
		if err != nil {
			return err
		}
	}
	return nil
}
