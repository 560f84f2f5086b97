// Package inlay turns a bundler's multi-file build output into a single
// embeddable HTML fragment: stylesheets, the mount anchor and scripts, with
// no document shell, ready to be injected as innerHTML of a container in a
// foreign page.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, fs/, fsnotify/).
package inlay
