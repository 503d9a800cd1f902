package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestMerge(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}

	tests := []struct {
		name string
		in   Info
		want Info
	}{
		{
			name: "defaults take toolchain stamps",
			in:   Info{Version: "dev", Commit: "none", Date: "unknown"},
			want: Info{Version: "v0.3.1", Commit: "abc123", Date: "2026-01-02T03:04:05Z"},
		},
		{
			name: "ldflags win",
			in:   Info{Version: "v1.0.0", Commit: "fff", Date: "today"},
			want: Info{Version: "v1.0.0", Commit: "fff", Date: "today"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := merge(tt.in, bi); got != tt.want {
				t.Errorf("merge = %+v, want %+v", got, tt.want)
			}
		})
	}

	devel := &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}
	if got := merge(Info{Version: "dev"}, devel); got.Version != "dev" {
		t.Errorf("(devel) should keep dev, got %q", got.Version)
	}
}

func TestTemplateAndUserAgent(t *testing.T) {
	i := Get()
	if !strings.Contains(Template(), i.Version) {
		t.Errorf("Template() = %q, missing version %q", Template(), i.Version)
	}
	if UserAgent() != "chronoline/"+i.Version {
		t.Errorf("UserAgent() = %q", UserAgent())
	}
	if !strings.HasPrefix(i.String(), "version: ") {
		t.Errorf("String() = %q", i.String())
	}
}
