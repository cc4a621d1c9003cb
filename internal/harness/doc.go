// Package harness executes declarative convergence scenarios for tests
// and the CLI. A scenario names a CUE field schema, a sequence of
// modification steps, and a set of reaction rules; running it produces a
// trace of squashed merges that can be checked against expectations or
// compared byte-for-byte against golden files.
package harness
