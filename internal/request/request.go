package request

import (
	"net"
	"net/http"
)

// GetHostWithoutPort returns the host of the request, without the port
// when one is set
func GetHostWithoutPort(r *http.Request) string {
	return withoutPort(r.Host)
}

// GetRemoteAddrWithoutPort returns the IP of the client, without the port.
// Behind a PROXY protocol listener r.RemoteAddr already holds the address
// of the original client.
func GetRemoteAddrWithoutPort(r *http.Request) string {
	return withoutPort(r.RemoteAddr)
}

func withoutPort(hostport string) string {
	host, _, err := net.SplitHostPort(hostport)
	if err != nil {
		return hostport
	}

	return host
}
