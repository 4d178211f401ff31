// Package folio holds module-level metadata shared by the CLI and library.
package folio

// Version is the folio release version.
const Version = "0.1.0"
