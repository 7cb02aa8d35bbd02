// Package fileutil holds the filesystem primitives used when relocating files:
// collision-safe moves with a cross-device fallback and verified copies.
package fileutil
