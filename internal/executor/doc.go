// Package executor runs a parsed recipe as a strictly sequential state
// machine: steps in document order, actions within a step in document order
// with fail-fast semantics, and a per-step onerror policy (fail, continue,
// ignore) deciding how a step failure affects the rest of the build.
//
// Steps run one at a time on purpose: step N's filesystem state is the
// implicit input of step N+1. Cancellation is honored at step boundaries;
// in-flight external processes are killed through the context.
package executor
