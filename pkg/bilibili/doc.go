// Package bilibili provides a client for the Bilibili web dynamics API.
//
// The client wraps the paginated dynamics feed endpoint with typed error
// handling and structured request logging, and downloads image assets with
// bounded retry. Feed page requests are deliberately not retried: a
// pagination fault aborts the crawl pass and surfaces to the caller, while
// per-asset faults are absorbed by the download engine's failure ledger.
package bilibili
