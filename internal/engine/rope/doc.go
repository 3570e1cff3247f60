// Package rope provides an immutable rope data structure for efficient text storage and manipulation.
//
// A rope is a B+ tree where leaf nodes contain text chunks and internal nodes
// cache aggregated metrics (bytes, characters, newlines) for each child. The
// metrics make character and line lookups logarithmic: a character index is
// resolved by descending on character counts, a line by descending on newline
// counts.
//
// Positions come in two flavours. ByteOffset addresses UTF-8 bytes and is what
// Split and Concat work on. CharOffset counts Unicode scalar values and is what
// editors address text by; the *Chars methods accept it directly.
//
// Basic usage:
//
//	r := rope.FromString("hello world")
//	r = r.InsertChars(5, ",")       // "hello, world"
//	r = r.DeleteChars(0, 7)         // "world"
//	p := r.CharToPoint(3)           // {Line: 0, Column: 3}
//
// An empty rope has exactly one (empty) line. Ropes are safe for concurrent
// reads; every edit returns a new rope that shares unchanged subtrees.
package rope
