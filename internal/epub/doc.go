// Package epub implements the packaging pipeline: concurrent staging of
// per-node and per-extra pages, sanitization of ids and internal link
// fragments, manifest/navigation rendering, and final archive assembly with
// the mimetype member first and stored uncompressed.
//
// The pipeline runs as an ordered sequence of stages over a fresh staging
// directory. Page generation within a batch fans out with no ordering
// guarantee; batches join before the next stage starts. Any stage failure
// aborts the run and leaves the staging directory in place for diagnosis.
package epub
