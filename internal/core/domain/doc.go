// Package domain defines the core business entities for M365PowerKit.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SearchJob: A named server-side content search
//   - ExportJob: The server-side packaging of a completed search
//   - TransferDescriptor: Location + credential for fetching an export
//   - DownloadedArchive: An archive file produced by the transfer tool
//   - ExtractionResult: The outcome of one archive extraction run
//
// It also holds the pure algorithms of the pipeline: the search query
// builder, the transfer-descriptor parser and the collision-safe output
// naming scheme.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
