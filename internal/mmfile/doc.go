// Package mmfile provides platform-specific helpers for mapping raw memory
// regions outside the Go heap. Mappings are page aligned and zero filled.
package mmfile
