// Package pgl learns a sparse weighted adjacency matrix by proximal gradient descent.
//
// The smooth part of the objective is supplied by an Oracle. Each iteration takes a
// gradient step of length StepSize and then applies SoftThreshold with the threshold
// LambdaParam*StepSize, which is the exact proximal operator of the L1 penalty:
//
//	A_next = SoftThreshold(A - StepSize*Gradient(A), LambdaParam*StepSize)
//
// Entry A[i][j] is the weight of the directed influence of variable i on variable j.
// Acyclicity is not enforced.
package pgl
