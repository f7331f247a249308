// Package storage provides file management for downloaded feed assets.
//
// The Manager writes assets into a per-user directory using atomic
// temporary-file-plus-rename writes, then rewrites the file's modification
// and access time to the originating post's publish epoch so the archive
// sorts chronologically on disk.
package storage
