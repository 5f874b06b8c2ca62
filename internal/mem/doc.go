// Package mem provides memory allocation utilities.
//
// # Aligned Allocation
//
// Backing arrays for vectors and numeric columns start on a 64-byte (cache
// line) boundary so that striped parallel copies never share a line at the
// head of the array.
package mem
