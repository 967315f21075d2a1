// Package sizecheck measures packaged build outputs and gates them against a
// byte budget.
//
// An Auditor walks a fixed, ordered list of tracked directories under a
// project root (dist/bin, dist/browser, dist/common and dist/native by
// default), sums the size of every file it finds, reports each directory's
// subtotal through a Reporter, and fails with a *SizeLimitExceededError when
// the grand total is strictly greater than the threshold. Directories that do
// not exist contribute zero bytes. The auditor never writes to the project.
package sizecheck
