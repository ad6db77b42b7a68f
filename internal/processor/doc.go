// Package processor contains the pipeline that turns a file of minimal
// pairs into an Anki package. The Expander resolves audio for each pair
// and emits its two card records; the Processor ties input parsing,
// expansion, deck assembly and packaging together.
package processor
