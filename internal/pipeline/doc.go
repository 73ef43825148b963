// Package pipeline runs fields of candidate preprocessing paths against an
// image and keeps the best-scoring result of each field.
//
// The three layers mirror how a run is structured:
//   - RunPath applies one path's steps and scores the OCR of the result.
//   - RunField runs every path of a field against the same input image and
//     ranks the successful ones by score.
//   - RunFields runs the fields in order, feeding each field's winning image
//     into the next field.
//
// # Failure Policy
//
// Only a missing start image, an empty field set or a cancelled context stops
// a run. An unknown step abandons its path: the image is reset to the path's
// input, which is still recognized for diagnostics, and the path is excluded
// from ranking. A transform that degrades adds a warning and the path continues.
// An OCR failure or timeout fails only its path. A field with no successful
// path keeps the previous image and adds a warning to the run result.
//
// # Concurrency
//
// Config.Workers bounds how many paths of a field run at once. The ranking is
// identical for any worker count: results are collected by declaration index
// and sorted stably.
package pipeline
