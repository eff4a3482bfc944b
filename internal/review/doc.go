// Package review implements the submission eligibility policy and the
// leaderboard ranking formula.
//
// Evaluate is a pure function over history snapshots provided by the caller;
// it holds no state and performs no I/O. Rank implements the adjusted-score
// formula shared with the SQL aggregate in the postgres store. The in-memory
// store backs single-instance dev mode and tests.
package review
