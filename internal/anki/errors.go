package anki

import "errors"

// ErrPackaging marks failures while writing a package. They are fatal for
// the run and never retried.
var ErrPackaging = errors.New("packaging failed")
