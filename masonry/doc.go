// Package masonry is the toolkit-independent core of the asset grid: it packs
// variable-aspect tiles into columns, culls them against a scrolling viewport,
// tracks rubber-band gestures and selection, and pages more records in from an
// external index as the user scrolls.
//
// Everything here runs on the caller's UI thread. The only asynchronous
// boundary is the page fetch started by Loader, whose result is handed back
// through the dispatcher supplied by the caller.
package masonry
