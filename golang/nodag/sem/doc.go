// Package sem provides concrete loss/gradient oracles for pgl and the data plumbing
// they need: npy input and output, column centring and simulation of linear
// structural equation models.
package sem
