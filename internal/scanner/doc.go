// Package scanner snapshots the files eligible for organization in a source
// directory and extracts the metadata the classifier is allowed to see.
//
// Scan lists regular files directly inside the source directory, sorted by
// name, skipping directories, symlinks, the organized destination root, and the
// run log. Inspect stats a single file and produces a FileRecord carrying its
// name, extension, size, creation time, and MIME type guessed from the
// extension. File contents are never read.
package scanner
