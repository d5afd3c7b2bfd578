// Package ingestion imports a loaded question corpus into storage.
//
// The Importer type writes a corpus in three steps:
//   - Questions are written in batches, concurrently, with retries
//   - Questions no longer in the corpus are deleted
//   - The synonym dictionary is replaced
//
// The corpus metadata is saved last, together with a fingerprint of the
// imported content. An import whose fingerprint matches the stored one is
// skipped unless forced, and an interrupted import never records a
// fingerprint, so the next run writes everything again.
package ingestion
