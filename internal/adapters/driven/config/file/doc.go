// Package file stores the knock configuration as TOML, by default in
// ~/.knock/config.toml, and watches it for edits while serve is running.
package file
