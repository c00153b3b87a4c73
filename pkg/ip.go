package pkg

import (
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"
)

var localDockerIpRegex = regexp.MustCompile(`^172\.\d{1,3}\.0\.1:\d{1,5}`)

func IPIsLocal(ipAddr string) bool {
	if strings.HasPrefix(ipAddr, "127.0.0.1:") {
		return true
	}

	// request coming from within a docker container
	return localDockerIpRegex.MatchString(ipAddr)
}

// ReadUserIP resolves the client address, preferring the proxy-set headers
// over the raw remote address.
func ReadUserIP(r *http.Request) (string, error) {
	ipAddr := r.Header.Get("X-Real-Ip")
	if ipAddr == "" {
		ipAddr = r.Header.Get("X-Forwarded-For")
	}
	if ipAddr == "" {
		ipAddr = r.RemoteAddr
	}

	if IPIsLocal(ipAddr) {
		return "localhost", nil
	}

	if !strings.Contains(ipAddr, ":") {
		return ipAddr, nil
	}

	host, _, err := net.SplitHostPort(ipAddr)
	if err != nil {
		return "", fmt.Errorf("split host and port from %s: %w", ipAddr, err)
	}

	return host, nil
}
