// Package size_check wraps the package size auditor as a runnable module.
//
// The built-in crt-size-check measures dist/bin, dist/browser, dist/common and
// dist/native under the project root, prints each subtotal plus the size of
// any aws-crt-nodejs.node addon found in dist/bin, and fails once the total
// is strictly greater than 5,000,000 bytes. The same module type backs the
// checks declared under .sizegate/checks, each with its own directories and
// budget. Runs are recorded in the project logbook when .sizegate exists, and
// a markdown report is written to .sizegate/reports/<id>.md when reports are
// enabled.
package size_check
