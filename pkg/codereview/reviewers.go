package codereview

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/loayabdalslam/Orchestrator/pkg/changetracker"
)

// ConsoleReviewer prints the coloured diff and reads y/n from In.
//
// A read cannot be interrupted. When a review is cancelled the pending read
// is kept and its line answers the next review, so at most one goroutine is
// ever blocked on In.
type ConsoleReviewer struct {
	In  io.Reader
	Out io.Writer

	mu      sync.Mutex
	reader  *bufio.Reader
	pending chan answer
}

type answer struct {
	line string
	err  error
}

// NewConsoleReviewer creates a console reviewer.
func NewConsoleReviewer(in io.Reader, out io.Writer) *ConsoleReviewer {
	return &ConsoleReviewer{In: in, Out: out}
}

// Review asks once. Only "y" or "yes" approve; end of input rejects.
func (r *ConsoleReviewer) Review(ctx context.Context, changes *Changeset) (bool, error) {
	fmt.Fprintln(r.Out, "Proposed changes:")
	for _, s := range changes.Files {
		fmt.Fprintln(r.Out, "  "+changetracker.StatsLine(s))
	}
	if changes.Diff == "" {
		fmt.Fprintln(r.Out, "No changes detected.")
	} else {
		fmt.Fprint(r.Out, changetracker.Colorize(changes.Diff))
	}
	fmt.Fprint(r.Out, "Apply these changes? (yes/no): ")

	ch := r.readLine()
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-ch:
		r.mu.Lock()
		r.pending = nil
		r.mu.Unlock()
		if a.err != nil && !errors.Is(a.err, io.EOF) {
			return false, fmt.Errorf("failed to read answer: %w", a.err)
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}

// readLine returns the channel of the outstanding read, starting one if none
// is pending.
func (r *ConsoleReviewer) readLine() <-chan answer {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending != nil {
		return r.pending
	}
	if r.reader == nil {
		r.reader = bufio.NewReader(r.In)
	}
	ch := make(chan answer, 1)
	reader := r.reader
	go func() {
		line, err := reader.ReadString('\n')
		ch <- answer{line: line, err: err}
	}()
	r.pending = ch
	return ch
}

// reviewRequest is sent to a remote reviewer.
type reviewRequest struct {
	Type string `json:"type"`
	*Changeset
}

// reviewResponse is the remote reviewer's verdict.
type reviewResponse struct {
	Approved bool   `json:"approved"`
	Comment  string `json:"comment,omitempty"`
}

// WebSocketReviewer sends the changeset to a remote endpoint and waits for
// {"approved": bool}.
type WebSocketReviewer struct {
	URL    string
	Dialer *websocket.Dialer
}

// NewWebSocketReviewer creates a reviewer for the given ws:// or wss:// URL.
func NewWebSocketReviewer(url string) *WebSocketReviewer {
	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second
	return &WebSocketReviewer{URL: url, Dialer: &dialer}
}

// Review performs one request/response exchange over a fresh connection.
func (r *WebSocketReviewer) Review(ctx context.Context, changes *Changeset) (bool, error) {
	dialer := r.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	conn, _, err := dialer.DialContext(ctx, r.URL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to connect to %s: %w", r.URL, err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	if err := conn.WriteJSON(reviewRequest{Type: "review", Changeset: changes}); err != nil {
		return false, fmt.Errorf("failed to send review request: %w", err)
	}

	var resp reviewResponse
	if err := conn.ReadJSON(&resp); err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, fmt.Errorf("failed to read review response: %w", err)
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return resp.Approved, nil
}
