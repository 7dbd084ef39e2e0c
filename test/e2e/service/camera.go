package service

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

// Response is a parsed campi response.
type Response struct {
	Status  int
	Payload []byte
	Raw     []byte
}

// CameraSvc talks to the camera server: one request line per connection.
type CameraSvc struct {
	addr    string
	timeout time.Duration
}

func NewCameraService(addr string) *CameraSvc {
	return &CameraSvc{addr: addr, timeout: 30 * time.Second}
}

func (c *CameraSvc) Get(path string) (*Response, error) {
	return c.Send(fmt.Sprintf("GET %s HTTP/1.1\r\n\r\n", path))
}

// Send writes request as is and reads until the server closes the connection.
func (c *CameraSvc) Send(request string) (*Response, error) {
	conn, err := net.DialTimeout("tcp", c.addr, c.timeout)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, err
	}
	if _, err := io.WriteString(conn, request); err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(conn)
	if err != nil {
		return nil, err
	}
	return parseResponse(raw)
}

func parseResponse(raw []byte) (*Response, error) {
	head, payload, ok := strings.Cut(string(raw), "\r\n\r\n")
	if !ok {
		return nil, fmt.Errorf("malformed response: %q", raw)
	}

	lines := strings.Split(head, "\r\n")
	fields := strings.Fields(lines[0])
	if len(fields) < 2 || fields[0] != "HTTP/1.1" {
		return nil, fmt.Errorf("malformed status line: %q", lines[0])
	}
	status, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("malformed status code: %q", fields[1])
	}

	for _, l := range lines[1:] {
		if v, ok := strings.CutPrefix(l, "Content-Length: "); ok {
			n, err := strconv.Atoi(v)
			if err != nil || n != len(payload) {
				return nil, fmt.Errorf("content length %q does not match payload of %d bytes", v, len(payload))
			}
		}
	}

	return &Response{Status: status, Payload: []byte(payload), Raw: raw}, nil
}
