// Package registry provides the central dispatch table for recipe actions.
//
// Every action element in a recipe is identified by a two-part
// namespace+name pair, for example sh:exec or svn:checkout. The registry
// maps those identifiers to Go handlers and records which attributes each
// action requires, so the parser can reject incomplete recipes before
// anything runs.
//
// The registry is populated once at startup from compiled-in modules and is
// open to third-party registration; no other part of the engine
// special-cases an action by name.
package registry
