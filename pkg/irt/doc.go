// Package irt implements the deterministic probability core of the rating
// scale model and its generalized variant: the cumulative-sum category
// probability engine, the sum-to-zero identifiability derivations, and
// pointwise and total log-likelihood evaluation.
//
// The engine is pure and stateless; every call reads only its arguments and
// allocates only its output, so callers may evaluate person-item pairs in
// parallel without coordination. Sampling, gradients, and convergence
// monitoring belong to the external probabilistic engine that consumes
// these likelihood terms.
package irt
