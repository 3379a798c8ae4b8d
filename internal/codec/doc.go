// Package codec reads and writes the single persisted machine document.
//
// The format looks like JSON but is not parsed as JSON. The decoder locates
// fields by literal key search and extracts nested values by bracket counting:
//   - top-level keys are found by searching for `"key":`; their order does not
//     matter, but a key name occurring earlier as a value misdirects the search
//   - object and array values end at the matching balanced brace or bracket
//   - array elements are split at the exact sequence `},{`
//   - numbers are the run of digits, '.' and '-' that follows the key
//
// Encode only ever produces documents that satisfy these heuristics as long as
// names obey model.ValidateName and image paths obey model.ValidatePath.
// Documents that do not (hand-edited or legacy files) may decode to fewer
// entries than they contain; that is a limitation of the format, not
// something Decode tries to detect.
//
// Sale times are written as local wall-clock time with no zone or offset and
// read back in time.Local. A sale made during the repeated hour at a daylight
// saving fall-back therefore decodes as the first occurrence of that hour, one
// hour earlier than it happened.
package codec
