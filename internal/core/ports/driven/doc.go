// Package driven declares what the ingestion core needs from the outside:
// collectors that page through a source, the canonical record store, the
// category and film catalog stores, scheduler persistence and the config
// file.
//
// Notifier and MetricsRecorder are optional. A nil value means run
// summaries are only logged and nothing is exported.
//
// This package imports domain only.
package driven
