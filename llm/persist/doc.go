// Package persist stores generated images: payload decoding, Catmull-Rom
// resizing to the configured size, webp/png/jpeg encoding and atomic writes.
package persist
