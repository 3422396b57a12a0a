// Package medreg harvests physician-directory listings from German
// healthcare-institution websites and normalizes them into flat records
// pushed to a dataset.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., htmlquery/, etree/, sqlite/, apify/).
package medreg
