// Package textclean strips site-injected junk from chapter text: redundant
// leading chapter headers, promotional boilerplate, and spam lines. Cleaning
// is deterministic and idempotent, and never replaces text with an empty
// result.
package textclean
