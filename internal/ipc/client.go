package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Eyra.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests the daemon to stop.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Eyra.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// NextSession asks the daemon for the reviewer's next assignment.
func (c *Client) NextSession(reviewerID int64) (*NextSessionResponse, error) {
	var resp NextSessionResponse
	req := NextSessionRequest{ReviewerID: reviewerID}
	if err := c.client.Call("Eyra.NextSession", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionDescribe returns details for a single session.
func (c *Client) SessionDescribe(id int64) (*SessionDescribeResponse, error) {
	var resp SessionDescribeResponse
	req := SessionDescribeRequest{ID: id}
	if err := c.client.Call("Eyra.SessionDescribe", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionRemove deletes a session.
func (c *Client) SessionRemove(id int64) (*SessionRemoveResponse, error) {
	var resp SessionRemoveResponse
	req := SessionRemoveRequest{ID: id}
	if err := c.client.Call("Eyra.SessionRemove", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionRelease clears a session's assignment locks.
func (c *Client) SessionRelease(id int64) (*SessionReleaseResponse, error) {
	var resp SessionReleaseResponse
	req := SessionReleaseRequest{ID: id}
	if err := c.client.Call("Eyra.SessionRelease", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RecordVerdict records a verdict on a recording.
func (c *Client) RecordVerdict(verdict VerdictRequest) (*RecordVerdictResponse, error) {
	var resp RecordVerdictResponse
	req := RecordVerdictRequest{Verdict: verdict}
	if err := c.client.Call("Eyra.RecordVerdict", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UndoVerdict removes a verdict and rolls back its flags.
func (c *Client) UndoVerdict(verificationID int64) (*UndoVerdictResponse, error) {
	var resp UndoVerdictResponse
	req := UndoVerdictRequest{VerificationID: verificationID}
	if err := c.client.Call("Eyra.UndoVerdict", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FlagPriority moves a recording into a fresh priority session.
func (c *Client) FlagPriority(recordingID int64) (*FlagPriorityResponse, error) {
	var resp FlagPriorityResponse
	req := FlagPriorityRequest{RecordingID: recordingID}
	if err := c.client.Call("Eyra.FlagPriority", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stats retrieves verification statistics.
func (c *Client) Stats(from, to string) (*StatsResponse, error) {
	var resp StatsResponse
	req := StatsRequest{From: from, To: to}
	if err := c.client.Call("Eyra.Stats", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LogTail reads daemon log lines.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	var resp LogTailResponse
	if err := c.client.Call("Eyra.LogTail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Export retrieves the TSV export of all verdicts.
func (c *Client) Export() (*ExportResponse, error) {
	var resp ExportResponse
	if err := c.client.Call("Eyra.Export", ExportRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
