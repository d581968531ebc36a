package pacer_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/adamwoolhether/pacer"
	"github.com/adamwoolhether/pacer/client"
)

func ExampleNewClient() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n, _ := io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"received":%d}`, n)
	}))
	defer ts.Close()

	c, err := pacer.NewClient(
		client.WithTimeout(5*time.Second),
		client.WithMaxUploadSpeed(4096),
	)
	if err != nil {
		fmt.Println("build error:", err)
		return
	}

	b := client.NewMultipartBuilder()
	_ = b.AddField("note", "hello")
	body, err := b.Build()
	if err != nil {
		fmt.Println("body error:", err)
		return
	}
	length, _ := body.ContentLength()

	req, err := client.NewRequest(context.Background(), http.MethodPost, ts.URL)
	if err != nil {
		fmt.Println("request error:", err)
		return
	}

	var resp struct{ Received int64 }
	if err := c.Upload(req, http.StatusCreated, body, client.WithUploadDestination(&resp)); err != nil {
		fmt.Println("upload error:", err)
		return
	}

	fmt.Println(resp.Received == length)
	// Output: true
}
