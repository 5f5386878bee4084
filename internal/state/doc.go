// Package state holds menu state between interactions without a session
// store.
//
// A Schema is the ordered slot list a menu declares at build time. A Vector
// is that schema's live values for one pass, carried between interactions as
// a text blob inside component identifiers. A Builder moves state from one
// menu's vector to another's when the visible menu changes.
//
// Slots are addressed by position only. The blob starts with a small header
// (schema version and a one-byte fingerprint of the slot types) so that a
// blob produced before a menu's slots changed fails with STALE_SCHEMA instead
// of decoding into the wrong slots.
package state
