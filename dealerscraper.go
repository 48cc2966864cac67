// Package dealerscraper extracts structured dealership location records
// (name, address, phone, brand, website) from heterogeneous dealer-group
// websites and produces a clean, deduplicated dataset.
//
// The pipeline is fetch → select+extract → normalize → dedupe: a fetch layer
// that falls back from plain HTTP to a rendering browser when a site blocks
// or requires JavaScript, a tiered strategy registry that picks exactly one
// extraction strategy per page, and a normalization/deduplication stage that
// reconciles inconsistent raw records into a canonical set.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, rod/, sqlite/).
package dealerscraper
