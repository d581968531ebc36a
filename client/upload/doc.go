// Package upload paces request bodies to a bandwidth ceiling and reports
// upload progress while they are written to the wire.
//
// # Usage
//
// Wrap any [Source], typically a [github.com/adamwoolhether/pacer/client/multipart.Body],
// with [NewBody] and stream it with [Body.WriteTo]:
//
//	body, err := upload.NewBody(src,
//		upload.Config{MaxUploadSpeedKbps: 800},
//		upload.WithProgress(func(written, total int64) {
//			fmt.Printf("%d/%d\n", written, total)
//		}),
//	)
//	_, err = body.WriteToContext(ctx, conn)
//
// # Pacing
//
// The ceiling is quantized into chunks: the number of bytes allowed per
// [ChunkDelay] window. Every write is handed downstream first. Once the
// running total crosses one or more chunk boundaries, the writer pauses for
// one ChunkDelay per boundary crossed. Small writes therefore accumulate
// without delay until a boundary is reached, and the long-run rate stays at
// or below the ceiling even though short windows may burst.
//
// Pauses end early when the write context is cancelled. Once it is
// cancelled, pacing stops for the rest of that write: every later
// boundary crossing is forwarded without a pause. The write itself is not
// aborted; that is left to the destination, and the next write of the
// same Body paces again with its own context.
//
// A zero ceiling disables pacing and progress reporting entirely.
package upload
