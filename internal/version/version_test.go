package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestInfoString(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{
			name: "release build",
			info: Info{Version: "1.2.0", Commit: "0123456789abcdef", Date: "2026-01-02T03:04:05Z", GoVersion: "go1.25.1", Platform: "linux/amd64"},
			want: "pixelpick version 1.2.0 (commit: 01234567, built: 2026-01-02T03:04:05Z, go1.25.1, linux/amd64)",
		},
		{
			name: "short commit",
			info: Info{Version: "1.2.0", Commit: "abc", Date: "today", GoVersion: "go1.25.1", Platform: "linux/arm64"},
			want: "pixelpick version 1.2.0 (commit: abc, built: today, go1.25.1, linux/arm64)",
		},
		{
			name: "dev build",
			info: Info{Version: "dev", Commit: "unknown", Date: "unknown", GoVersion: "go1.25.1", Platform: "darwin/arm64"},
			want: "pixelpick version dev (go1.25.1, darwin/arm64)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "feedface"},
			{Key: "vcs.time", Value: "2026-05-01T00:00:00Z"},
		},
	}

	got := fromBuildInfo(Info{Version: "dev", Commit: "unknown", Date: "unknown"}, bi)
	if got.Version != "v0.3.1" || got.Commit != "feedface" || got.Date != "2026-05-01T00:00:00Z" {
		t.Errorf("fromBuildInfo() = %+v", got)
	}

	// ldflags win over build info.
	got = fromBuildInfo(Info{Version: "1.0.0", Commit: "cafe", Date: "then"}, bi)
	if got.Version != "1.0.0" || got.Commit != "cafe" || got.Date != "then" {
		t.Errorf("fromBuildInfo() overrode ldflags: %+v", got)
	}

	got = fromBuildInfo(Info{Version: "dev", Commit: "unknown", Date: "unknown"}, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	if !strings.HasPrefix(got.String(), "pixelpick version dev") {
		t.Errorf("devel build = %q", got.String())
	}
}
