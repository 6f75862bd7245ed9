// Package lyrics defines the core types and contracts shared by the lyric
// scraping pipeline: queue items, line batches, and the fetcher, catalog,
// queue, and sink interfaces that the worker pool and writer depend on.
package lyrics
