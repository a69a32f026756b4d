package utils

import (
	"runtime"
	"sync"

	"go.viam.com/utils"
)

// ParallelFactor controls the max level of parallelization. This might be useful
// to set in tests where too much parallelism actually slows tests down in
// aggregate.
var ParallelFactor = runtime.GOMAXPROCS(0)

func init() {
	if ParallelFactor <= 0 {
		ParallelFactor = 1
	}
	quarterProcs := float64(ParallelFactor) * .25
	if quarterProcs > 8 {
		ParallelFactor = int(quarterProcs)
	}
}

type (
	// BeforeParallelGroupWorkFunc executes before any work starts with the number of groups.
	BeforeParallelGroupWorkFunc func(numGroups int)
	// MemberWorkFunc runs for each work item (member) of a group.
	MemberWorkFunc func(memberNum, workNum int)
	// GroupWorkDoneFunc runs when a single group's work is done; helpful for merge stages.
	GroupWorkDoneFunc func()
	// GroupWorkFunc runs to determine what work members should do, if any.
	GroupWorkFunc func(groupNum, groupSize, from, to int) (MemberWorkFunc, GroupWorkDoneFunc)
)

// GroupWorkParallel splits the work numbers [0, totalSize) into at most ParallelFactor
// contiguous groups and runs each group on its own goroutine. Every work number is handed to
// exactly one member; the last group absorbs the remainder. before, if set, is told the number
// of groups first.
func GroupWorkParallel(totalSize int, before BeforeParallelGroupWorkFunc, groupWork GroupWorkFunc) {
	numGroups := ParallelFactor
	if totalSize < numGroups {
		numGroups = totalSize
	}
	if numGroups <= 0 {
		return
	}
	if before != nil {
		before(numGroups)
	}

	groupSize := totalSize / numGroups
	var wait sync.WaitGroup
	wait.Add(numGroups)
	for groupNum := 0; groupNum < numGroups; groupNum++ {
		groupNum := groupNum
		from := groupSize * groupNum
		to := from + groupSize
		if groupNum == numGroups-1 {
			to = totalSize
		}
		utils.PanicCapturingGo(func() {
			defer wait.Done()
			memberWork, groupWorkDone := groupWork(groupNum, to-from, from, to)
			if memberWork != nil {
				for workNum := from; workNum < to; workNum++ {
					memberWork(workNum-from, workNum)
				}
			}
			if groupWorkDone != nil {
				groupWorkDone()
			}
		})
	}
	wait.Wait()
}
