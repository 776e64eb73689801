// Package testutil provides the shared harness and fakes for exercising the
// recipe engine end to end in tests: a recipe-to-build runner with captured
// engine logs, a recording RunContext for handler tests, and a scripted
// action module for state-machine scenarios.
package testutil
