package ipc

import (
	"bufio"
	"context"
	"fmt"
	"time"
)

// Client connects to a running helper.
type Client struct {
	timeout time.Duration
	address string
}

// NewClient creates a client for the default address.
func NewClient() *Client {
	return NewClientWithAddress(DefaultAddress())
}

// NewClientWithAddress creates a client for a custom pipe name or socket path.
func NewClientWithAddress(address string) *Client {
	return &Client{
		timeout: 5 * time.Second,
		address: address,
	}
}

// SetTimeout sets the connection timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

// sendRequest sends a request and receives a response.
func (c *Client) sendRequest(ctx context.Context, req *Request) (*Response, error) {
	conn, err := dial(ctx, c.address, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to hotspot helper at %s: %w", c.address, err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	data, err := req.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	data = append(data, '\n')

	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	resp, err := DecodeResponse(respData)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("server error: %s", resp.Error)
	}
	return resp, nil
}

// GetStatus retrieves the current reconciler status.
func (c *Client) GetStatus(ctx context.Context) (*StatusData, error) {
	resp, err := c.sendRequest(ctx, NewRequest(MsgGetStatus))
	if err != nil {
		return nil, err
	}
	status := resp.GetStatusData()
	if status == nil {
		return nil, fmt.Errorf("status response carried no data")
	}
	return status, nil
}

// GetRecentLogs retrieves up to count recent log entries.
func (c *Client) GetRecentLogs(ctx context.Context, count int) ([]LogEntryData, error) {
	resp, err := c.sendRequest(ctx, NewRecentLogsRequest(count))
	if err != nil {
		return nil, err
	}
	logs := resp.GetRecentLogsData()
	if logs == nil {
		return []LogEntryData{}, nil
	}
	return logs.Entries, nil
}

// ReloadConfig tells the helper to re-read its config file.
func (c *Client) ReloadConfig(ctx context.Context) (*ReloadConfigData, error) {
	resp, err := c.sendRequest(ctx, NewRequest(MsgReloadConfig))
	if err != nil {
		return nil, err
	}
	data := resp.GetReloadConfigData()
	if data == nil {
		return nil, fmt.Errorf("reload response carried no data")
	}
	if data.Error != "" {
		return data, fmt.Errorf("reload failed: %s", data.Error)
	}
	return data, nil
}

// SetHotspot asks the helper to turn the hotspot on or off through its
// executor.
func (c *Client) SetHotspot(ctx context.Context, enabled bool) (*SetHotspotData, error) {
	resp, err := c.sendRequest(ctx, NewSetHotspotRequest(enabled))
	if err != nil {
		return nil, err
	}
	data := resp.GetSetHotspotData()
	if data == nil {
		return nil, fmt.Errorf("set hotspot response carried no data")
	}
	return data, nil
}

// Shutdown asks the helper to stop.
func (c *Client) Shutdown(ctx context.Context) error {
	_, err := c.sendRequest(ctx, NewRequest(MsgShutdown))
	return err
}

// IsRunning checks whether a helper answers on the address.
func (c *Client) IsRunning(ctx context.Context) bool {
	_, err := c.GetStatus(ctx)
	return err == nil
}
