// Package client sends multipart/form-data uploads over [net/http], paced
// to a bandwidth ceiling.
//
// # Building a Client
//
// Use [Build] with functional options:
//
//	c, err := client.Build(
//		client.WithTimeout(10 * time.Minute),
//		client.WithUserAgent("myapp/1.0"),
//		client.WithMaxUploadSpeed(800), // kbps
//		client.WithRequestRate(2, 1),   // uploads started per second
//	)
//
// # Uploading
//
// Assemble a body, create the request with [NewRequest] and send it with
// [Client.Upload]. Progress is reported while the body is paced:
//
//	b := client.NewMultipartBuilder()
//	_ = b.AddField("job", "42")
//	_ = b.AddFilePath("file", "/tmp/frame-0001.png")
//	body, err := b.Build()
//
//	req, err := client.NewRequest(ctx, http.MethodPost, "https://render.example.com/frames",
//		client.WithHeader("Authorization", "Bearer "+token),
//	)
//	err = c.Upload(req, http.StatusOK, body,
//		client.WithUploadProgress(client.LogProgress(logger, time.Second)),
//	)
//
// A per-upload ceiling can be set with [WithUploadSpeed]; zero sends the
// body as fast as the transport accepts it. A status other than the
// expected one is returned as an [*UnexpectedStatusError].
//
// For lower-level control see the
// [github.com/adamwoolhether/pacer/client/upload] and
// [github.com/adamwoolhether/pacer/client/multipart] packages.
package client
