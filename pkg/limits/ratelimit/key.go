package ratelimit

import "net"

// Key builds the limiter key "{principal}:{route}". An anonymous (empty or
// "anonymous") principal falls back to the client's network address, which
// is only as trustworthy as the address itself.
func Key(principal, route, remoteAddr string) string {
	if principal == "" || principal == "anonymous" {
		principal = clientHost(remoteAddr)
	}
	return principal + ":" + route
}

func clientHost(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	if remoteAddr == "" {
		return "unknown"
	}
	return remoteAddr
}
