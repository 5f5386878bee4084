// Package ir provides the value types that flow through menukit.
//
// Menu state slots hold ir.Value instances; the codec turns them into wire
// tokens and back, and the trace store and harness serialize them to
// canonical JSON. This package imports nothing internal so every other
// package can depend on it.
//
// Key design constraints:
//   - Value is sealed: only Null, String, Int, Bool, Float, Array and Object
//   - Ints are always int64, floats always float64
//   - Object keys are ordered by UTF-16 code units when serialized
//   - All JSON tags use snake_case
package ir
