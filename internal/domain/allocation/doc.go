// Package allocation partitions a classified roster into playable teams.
//
// One call runs a forward-only pipeline: plan team sizes, seed one anchor
// per team, distribute the remaining pools greedily, repair invariant
// violations with single-member moves, then validate. The engine keeps no
// state between calls and performs no I/O.
//
// Invariants, highest priority first:
//
//	supervision-coverage  a team with a Supervisor has an Expert or Competent member
//	novice-supervision    a team with a Novice has a Supervisor and an Expert or Competent member
//	novice-isolation      Novices sit only on size-4 teams, at most MaxNovicesPerTeam each
//	assisted-size         a Novice-assisted member without gear is not on a size-3 team
//	mixed-five            a size-5 team does not hold both a Novice and a Novice-assisted member
//	rare-training         at most one member per team wants rare training
//	team-size             every team has 3 to 5 members
//
// A result either satisfies all of them or the call fails with an
// *InfeasibleError naming the highest priority violation.
package allocation
