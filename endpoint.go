package lineq

import (
	"net"
	"strconv"
	"strings"
)

// Endpoint identifies the remote search service.
type Endpoint struct {
	Host string `json:"host" toml:"host"`
	Port int    `json:"port" toml:"port"`
}

// Address returns the endpoint in host:port form.
func (e Endpoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// String implements fmt.Stringer.
func (e Endpoint) String() string {
	return e.Address()
}

// Validate returns an error if the endpoint cannot be dialed as written.
// Name resolution is not attempted.
func (e Endpoint) Validate() error {
	if strings.TrimSpace(e.Host) == "" {
		return Errorf(EINVALID, "endpoint host required")
	}
	if e.Port < 1 || e.Port > 65535 {
		return Errorf(EINVALID, "endpoint port %d out of range", e.Port)
	}
	return nil
}
