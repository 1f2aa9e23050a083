// Package synth generates synthetic EEG/ESI map sequences for tests and
// examples: orthogonal template sets, Gaussian-noise samples drawn
// around them, and polarity-flip helpers, as plain generator functions.
package synth
