// Package catalog persists the relational novel catalog in SQLite.
//
// Novels carry a globally unique slug derived from their title; chapters
// belong to exactly one novel and are unique per (novel, number), enforced by
// the schema. Chapter upsert updates title and text in place, which makes
// re-ingesting the same source converge instead of duplicating.
//
// Slug derivation and title normalization live here so every caller compares
// identity the same way.
package catalog
