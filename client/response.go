package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// send runs req and requires expCode in the response. A matching
// response's JSON body is decoded into dest when dest is non-nil.
func (c *Client) send(req *http.Request, expCode int, dest any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer c.drain(resp)

	if resp.StatusCode != expCode {
		return statusError(resp)
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// drain discards the unread response so the connection can be reused.
func (c *Client) drain(resp *http.Response) {
	if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainSize)); err != nil {
		c.logger.Debug("discarding response body", "error", err)
	}
	if err := resp.Body.Close(); err != nil {
		c.logger.Error("closing response body", "error", err)
	}
}

// statusError captures the start of an unexpected response's body.
func statusError(resp *http.Response) *UnexpectedStatusError {
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
	if err != nil {
		b = []byte("unreadable body")
	}

	e := UnexpectedStatusError{
		StatusCode: resp.StatusCode,
		Body:       string(b),
		Err:        ErrUnexpectedStatusCode,
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		e.Err = fmt.Errorf("%w: %w", ErrAuthFailure, ErrUnexpectedStatusCode)
	}

	return &e
}
