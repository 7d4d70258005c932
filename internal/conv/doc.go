// Package conv converts between integer widths with bounds checks.
//
// Use it for values that cross a trust boundary: sizes parsed from
// configuration and lengths read from a shared header written by another
// process.
package conv
