// Package pipeline wires the six stages together and runs them in order.
//
// Components builds every stage from a config. Driver executes stage
// descriptors strictly in sequence: optional failures become warnings, a
// failed mandatory stage halts the run, and the final Report carries a
// classification, artifact counts and next-step hints. AcquireLock keeps two
// invocations from writing the same data tree at once.
package pipeline
