package parser

// MapArgs maps a 1-indexed parameter position (as a string key) to the
// Datum type the parameter has been bound or inferred to. Describe and
// the type system do not use it; they carry parameter types as
// map[int]types.Type.
type MapArgs map[string]Datum
