// Package astar finds paths on a grid.Grid with 8-directional movement.
//
// It exposes two main entry points:
//
//   - Search: run the algorithm to completion and get a Result.
//   - Stepper: iterate the search one expansion at a time to drive UIs or debugging tools.
//
// Diagonal steps are refused when either orthogonal cell they pass between is
// a wall, and every step costs the same. Frontier ties are broken by the order
// cells first joined the frontier. Progress is reported synchronously through
// a ProgressSink, and a cancelled context.Context ends the search with
// OutcomeCancelled at the next expansion.
package astar
