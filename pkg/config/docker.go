package config

import (
	"os"
	"sync"
)

var (
	inContainerOnce sync.Once
	inContainer     bool
)

// IsRunningInDocker reports whether /.dockerenv exists. Cached after the first call.
func IsRunningInDocker() bool {
	inContainerOnce.Do(func() {
		_, err := os.Stat("/.dockerenv")
		inContainer = err == nil
	})
	return inContainer
}

// ResolveHostForDocker maps loopback database hosts to host.docker.internal
// when sqlsage itself runs in a container.
func ResolveHostForDocker(host string) string {
	if !IsRunningInDocker() {
		return host
	}
	switch host {
	case "localhost", "127.0.0.1":
		return "host.docker.internal"
	}
	return host
}
