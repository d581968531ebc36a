// Package multipart assembles multipart/form-data request bodies whose
// exact length is known before any content is read.
//
// Parts are declared up front with their sizes; content is only opened
// while the body is written, so large files and blobs are streamed rather
// than held in memory:
//
//	b := multipart.NewBuilder()
//	_ = b.AddField("job", "42")
//	_ = b.AddFilePath("file", "/tmp/frame-0001.png")
//	body, err := b.Build()
//
// A [Body] satisfies [github.com/adamwoolhether/pacer/client/upload.Source].
package multipart
