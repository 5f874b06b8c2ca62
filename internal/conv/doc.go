// Package conv provides checked integer conversions.
//
// Row ids and keys travel as uint64 while slice indices are int. The
// helpers here reject values that would wrap instead of silently truncating.
// For conversions that are provably safe (loop indices, lengths of existing
// slices) use a plain type cast.
package conv
