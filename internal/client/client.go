// Package client implements the query side of the pronoun protocol: one
// token out, one line back, over a fresh TCP connection.
package client

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultPort is the TCP port registered for this service.
	DefaultPort = 731

	// MaxResponseLen bounds replies, matching the server's line cap.
	MaxResponseLen = 256
)

// Target is a parsed <token>@<host>[:<port>] argument.
type Target struct {
	// Token is the account name or numeric user ID to query.
	Token string

	// Host is the server to query.
	Host string

	// Port is the server's TCP port.
	Port int
}

// ParseTarget parses an argument of the form <token>@<host>[:<port>].
// defaultPort is used when the target doesn't name a port; a port inside
// the target wins over it.
func ParseTarget(s string, defaultPort int) (Target, error) {
	token, hostport, ok := strings.Cut(s, "@")
	if !ok {
		return Target{}, fmt.Errorf("missing @ in %q", s)
	}
	if token == "" {
		return Target{}, errors.New("username or uid is required")
	}
	if hostport == "" {
		return Target{}, errors.New("hostname is required")
	}
	t := Target{Token: token, Host: hostport, Port: defaultPort}
	if host, port, err := net.SplitHostPort(hostport); err == nil {
		p, err := strconv.Atoi(port)
		if err != nil || p < 1 || p > 65535 {
			return Target{}, fmt.Errorf("invalid port %q", port)
		}
		t.Host = host
		t.Port = p
	}
	return t, nil
}

// Query sends the target's token to its server and returns the raw
// response. timeout bounds the whole exchange; zero means no timeout.
func (t Target) Query(timeout time.Duration) (string, error) {
	addr := net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return "", fmt.Errorf("connect to %v: %v", addr, err)
	}
	defer conn.Close()
	if timeout > 0 {
		conn.SetDeadline(time.Now().Add(timeout))
	}
	if _, err := fmt.Fprintf(conn, "%s\n", t.Token); err != nil {
		return "", fmt.Errorf("send: %v", err)
	}
	resp, err := io.ReadAll(io.LimitReader(conn, MaxResponseLen))
	if err != nil {
		return "", fmt.Errorf("receive: %v", err)
	}
	return string(resp), nil
}
