// Package removeviewing implements the Remove Viewing use case: the viewed flag and the quick
// rating of a movie are cleared together. Removing a viewing that was never recorded is idempotent.
package removeviewing
