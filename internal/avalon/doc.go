// Package avalon is the Avalon rules engine.
//
// A Game is advanced only through the transition functions in this package
// (or Apply). Each one is synchronous, performs no I/O, and returns either a
// fresh Game or a typed rejection. Callers serialize access per game.
package avalon
