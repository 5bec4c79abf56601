// Package sqlite provides the modernc.org/sqlite backed dialect.
//
// Importing the package registers the dialect under "sqlite" and "sqlite3".
package sqlite
