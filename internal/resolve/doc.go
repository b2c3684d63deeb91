// Package resolve turns raw staging entries into resource specs.
//
// An entry is either "name=path" or a bare path whose basename becomes the
// logical name.
package resolve
