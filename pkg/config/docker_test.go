package config

import "testing"

func TestResolveHostForDocker(t *testing.T) {
	remote := []string{"db.internal", "10.0.0.12", "host.docker.internal"}
	for _, host := range remote {
		if got := ResolveHostForDocker(host); got != host {
			t.Errorf("ResolveHostForDocker(%q) = %q, want unchanged", host, got)
		}
	}

	for _, host := range []string{"localhost", "127.0.0.1"} {
		want := host
		if IsRunningInDocker() {
			want = "host.docker.internal"
		}
		if got := ResolveHostForDocker(host); got != want {
			t.Errorf("ResolveHostForDocker(%q) = %q, want %q", host, got, want)
		}
	}
}
