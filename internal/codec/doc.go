// Package codec serializes typed slot values into compact, self-delimiting
// tokens and maps them into a character set that can live inside a chat
// platform component identifier.
//
// Tokens carry no length table: a list of Types is enough to split a
// concatenation back into its values. Each kind is either fixed width
// (bool, float) or prefixed (varints, length-prefixed strings, counted
// lists), and composite kinds recurse.
//
// Wire format per kind:
//
//	unit      0 bytes
//	bool      1 byte, 0x00 or 0x01
//	int       zig-zag varint
//	float     8 bytes, big-endian IEEE-754 bits
//	string    uvarint byte length, then UTF-8 bytes
//	enum      uvarint ordinal
//	nullable  0x00, or 0x01 followed by the element
//	list      uvarint count, then elements
//	record    fields in declared order
//
// The byte stream is rendered as unpadded base64url (ToText). Decoding a
// blob against a different type list than the one that produced it is a
// known hazard: it usually fails with TRUNCATED, MALFORMED or
// TRAILING_BYTES, but a layout that happens to align decodes to wrong
// values. The state package guards against that with a schema header.
package codec
