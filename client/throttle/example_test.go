package throttle_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/adamwoolhether/pacer/client/throttle"
)

func ExampleNew() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer ts.Close()

	// Two uploads start at once, the third waits for the next token.
	rt, err := throttle.New(throttle.Config{RPS: 10, Burst: 2}, http.DefaultTransport, nil)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	hc := &http.Client{Transport: rt}

	start := time.Now()
	for range 3 {
		resp, err := hc.Post(ts.URL, "text/plain", strings.NewReader("part"))
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		_ = resp.Body.Close()
	}

	fmt.Println(time.Since(start) >= 50*time.Millisecond)
	// Output: true
}
