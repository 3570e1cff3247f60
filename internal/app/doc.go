// Package app manages an editing session: an ordered set of tabs, each
// owning one text buffer, with background open and save, external change
// reconciliation, logging and file operation metrics.
package app
