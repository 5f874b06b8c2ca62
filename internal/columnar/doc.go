// Package columnar implements a row store that keeps every column in its
// own typed storage.
//
// Row ids are dense and start at 0. A numeric column is a vector indexed by
// row id plus a presence bitset; a string column keeps its bytes in an
// append-only arena and the (ref, length) of every cell in two vectors.
// Columns grow independently: a column only extends as far as the highest
// row written to it, and a row only has a value in the columns that were
// set for it.
//
// A Table has a single writer.
package columnar
