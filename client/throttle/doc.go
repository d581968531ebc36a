// Package throttle limits how often uploads may start, using a token
// bucket from [golang.org/x/time/rate].
//
// It complements the bandwidth pacing in
// [github.com/adamwoolhether/pacer/client/upload]. Pacing bounds the bytes
// per second of one upload while the throttle bounds how many uploads, or
// replays of one, begin per second.
//
// Wrap a transport with [New]:
//
//	rt, err := throttle.New(throttle.Config{RPS: 2, Burst: 1}, http.DefaultTransport, logger)
//	httpClient := &http.Client{Transport: rt}
//
// A request waiting for a token gives up when its context ends and the
// token is returned to the bucket.
package throttle
