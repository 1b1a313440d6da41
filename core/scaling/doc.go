// Package scaling implements the boundary-search scaling engine: the
// feasibility prober, the quadratic envelope fitter, the demand scalers, the
// capacity allocator and the tie-flow estimator. Every function is a pure
// transformation from completed inputs to new immutable outputs; the only
// external effect is the oracle call inside Probe.
package scaling
