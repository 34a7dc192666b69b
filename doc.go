// Package blobscan locates, validates and decodes compressed regions inside
// opaque binary containers, such as the segmented .gdb files of geophysical
// databases.
//
// A [Catalog] maps magic byte patterns to codecs. [Scan] and
// [Catalog.Matches] find candidate offsets in a buffer, [DecodeAt] decodes the
// region at an offset either to the end of the buffer or within a bounded
// window, and [Verify] checks the CRC-32 of decoded bytes. [ReadField] reads
// typed little endian fields at fixed offsets and [ExtractWindow] cuts raw
// windows around offsets of interest. All of these are pure functions over a
// read-only byte slice and safe for concurrent use.
//
// [Probe] combines scanning and decoding: every candidate is decoded
// concurrently and reported with its size, checksum, BLAKE3 digest and
// entropy. Decoded segments and raw windows can be persisted to a [Target],
// e.g. the local disk, memory or an S3 bucket.
//
// Configuration is done using the [Config], which sets the signature catalog,
// the decode limits, the logger and the telemetry hook. Every decode failure
// is a [*DecodeError] that matches one of [ErrMalformed], [ErrTruncated],
// [ErrUnsupportedCodec] or [ErrOutputTooLarge] with [errors.Is].
package blobscan
