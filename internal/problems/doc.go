// Package problems provides reference right-hand sides with closed-form
// solutions, used to measure the integrators against exact trajectories.
package problems
