// Package client calls a remote adder server over its websocket endpoint.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/skim-satellite/adder/internal/adder"
	"github.com/skim-satellite/adder/internal/wire"
)

var (
	// ErrRemote wraps error replies sent by the server.
	ErrRemote = errors.New("server rejected request")
	// ErrClosed is returned once the connection was closed, either by Close
	// or because an earlier request failed mid-flight.
	ErrClosed = errors.New("client closed")
)

// Client holds one websocket connection to an adder server. Calls are
// serialised; it is safe for concurrent use.
//
// A failed send or read leaves the stream out of step with its replies, so
// the connection is closed and every later call fails with ErrClosed.
type Client struct {
	conn     *websocket.Conn
	mu       sync.Mutex
	nextID   uint64
	closeErr error // set once the connection is unusable
}

// Dial connects to the websocket endpoint at url, e.g. ws://127.0.0.1:7432/add.
func Dial(ctx context.Context, url string) (*Client, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to connect to %s (status %d): %w", url, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}

	return &Client{conn: conn}, nil
}

// Add sends a JSON add request and waits for the result.
func (c *Client) Add(ctx context.Context, a, b int32) (adder.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpen(); err != nil {
		return adder.Result{}, err
	}

	c.nextID++
	id := strconv.FormatUint(c.nextID, 10)

	data, err := json.Marshal(wire.AddRequest{Type: wire.TypeAdd, ID: id, A: a, B: b})
	if err != nil {
		return adder.Result{}, fmt.Errorf("encode request: %w", err)
	}

	reply, err := c.roundTrip(ctx, websocket.TextMessage, data)
	if err != nil {
		return adder.Result{}, err
	}

	res, errMsg, err := wire.DecodeReply(reply)
	if err != nil {
		return adder.Result{}, err
	}
	if errMsg != nil {
		return adder.Result{}, fmt.Errorf("%w: %s", ErrRemote, errMsg.Error)
	}
	if res.ID != id {
		return adder.Result{}, fmt.Errorf("reply id %q does not match request id %q", res.ID, id)
	}

	return adder.Result{A: a, B: b, Sum: res.Sum, Overflow: res.Overflow}, nil
}

// AddBinary sends a binary add request and waits for the result.
func (c *Client) AddBinary(ctx context.Context, a, b int32) (adder.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpen(); err != nil {
		return adder.Result{}, err
	}

	bp := wire.PackRequest(a, b)
	reply, err := c.roundTrip(ctx, websocket.BinaryMessage, *bp)
	wire.Release(bp)
	if err != nil {
		return adder.Result{}, err
	}

	sum, overflowed, err := wire.UnpackResult(reply)
	if err != nil {
		// The server answers malformed binary frames with a JSON error.
		if _, errMsg, decodeErr := wire.DecodeReply(reply); decodeErr == nil && errMsg != nil {
			return adder.Result{}, fmt.Errorf("%w: %s", ErrRemote, errMsg.Error)
		}
		return adder.Result{}, err
	}

	return adder.Result{A: a, B: b, Sum: sum, Overflow: overflowed}, nil
}

// roundTrip writes one message and reads one reply. Must hold c.mu.
func (c *Client) roundTrip(ctx context.Context, msgType int, data []byte) ([]byte, error) {
	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		deadline = time.Now().Add(30 * time.Second)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_ = c.conn.SetWriteDeadline(deadline)
	if err := c.conn.WriteMessage(msgType, data); err != nil {
		c.closeWithErr(err)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	_ = c.conn.SetReadDeadline(deadline)
	// Unblock the read if ctx is cancelled before the deadline.
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	_, reply, err := c.conn.ReadMessage()
	if err != nil {
		// The reply may still arrive later and would answer the wrong request.
		c.closeWithErr(err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// The socket deadline can fire just before ctx's own timer.
		if hasDeadline && !time.Now().Before(deadline) {
			return nil, context.DeadlineExceeded
		}
		return nil, fmt.Errorf("failed to read reply: %w", err)
	}
	return reply, nil
}

// checkOpen reports ErrClosed, wrapping the original cause, once the
// connection is gone. Must hold c.mu.
func (c *Client) checkOpen() error {
	if c.closeErr == nil {
		return nil
	}
	if errors.Is(c.closeErr, ErrClosed) {
		return c.closeErr
	}
	return fmt.Errorf("%w: %w", ErrClosed, c.closeErr)
}

// closeWithErr closes the connection and records why. Must hold c.mu.
func (c *Client) closeWithErr(err error) {
	if c.closeErr != nil {
		return
	}
	if err == nil {
		err = ErrClosed
	}
	c.closeErr = err
	_ = c.conn.Close()
}

// Close sends a close frame and closes the connection. Closing twice is a
// no-op.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closeErr != nil {
		return nil
	}
	c.closeErr = ErrClosed

	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}
