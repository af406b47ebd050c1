package allocation

import (
	"fmt"
	"slices"
)

// planSizes returns the target size of every team for n participants: the
// fewest teams of sizes 4 and 5, or for an allowed total the split with the
// fewest size-3 teams. Sizes are ordered 4s, then 5s, then 3s.
func planSizes(n int, p Policy) ([]int, error) {
	if fours, fives, ok := splitFourFive(n); ok {
		return buildPlan(fours, fives, 0), nil
	}
	if p.allowsThrees(n) {
		for threes := 1; threes*MinTeamSize <= n; threes++ {
			if fours, fives, ok := splitFourFive(n - threes*MinTeamSize); ok {
				return buildPlan(fours, fives, threes), nil
			}
		}
	}
	return nil, fmt.Errorf("%d participants cannot be split into teams of %d to %d", n, MinTeamSize, MaxTeamSize)
}

// splitFourFive splits n into the minimum number of teams of sizes 4 and 5.
func splitFourFive(n int) (fours, fives int, ok bool) {
	if n == 0 {
		return 0, 0, true
	}
	teams := (n + MaxTeamSize - 1) / MaxTeamSize
	if NoviceHostSize*teams > n {
		return 0, 0, false
	}
	fives = n - NoviceHostSize*teams
	return teams - fives, fives, true
}

func buildPlan(fours, fives, threes int) []int {
	plan := make([]int, 0, fours+fives+threes)
	plan = append(plan, slices.Repeat([]int{NoviceHostSize}, fours)...)
	plan = append(plan, slices.Repeat([]int{MaxTeamSize}, fives)...)
	plan = append(plan, slices.Repeat([]int{MinTeamSize}, threes)...)
	return plan
}

// consolidatedPlan gives every supervisor one size-5 team.
func consolidatedPlan(supervisors int) []int {
	return slices.Repeat([]int{MaxTeamSize}, max(1, supervisors))
}
