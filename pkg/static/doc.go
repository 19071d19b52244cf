// Package static serves files from a read-only document root.
//
// Only GET and HEAD are answered. A request path containing a ".."
// segment is forbidden outright; every other path is resolved with
// filepath-securejoin, so symbolic links inside the root cannot lead
// outside it. Regular files go through http.ServeContent, which handles
// content types, Range and conditional requests.
//
// Directories are redirected to their slash form, then served through the
// first configured index file, then listed when listing is enabled, and
// forbidden otherwise.
//
// Each request outcome is reported to an optional Recorder.
package static
