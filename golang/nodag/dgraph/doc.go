// Package dgraph turns a learned adjacency matrix into a directed graph.
//
// The convention is row to column: a non-zero A[i][j] is the edge i -> j, the
// influence of variable i on variable j. Entries whose magnitude does not exceed the
// caller's tolerance are treated as zero, the diagonal is ignored.
package dgraph
