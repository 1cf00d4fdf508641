// Package nodes discovers and parses per-node quaternion CSV files.
//
// Each input file whose name starts with "node" and ends in ".csv" becomes
// one Node named after the file's base name. The four quaternion columns
// (qw, qx, qy, qz) are validated and parsed at load time; every other column
// is carried along untyped.
package nodes
