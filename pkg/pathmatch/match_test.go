package pathmatch

import (
	"testing"

	"github.com/cuemby/bastion/pkg/tables"
	"github.com/cuemby/bastion/pkg/types"
)

func newTable(t *testing.T, paths ...string) *tables.Table[uint32, types.PathEntry] {
	t.Helper()
	tbl := tables.New[uint32, types.PathEntry](types.PathsCap)
	for i, p := range paths {
		e, err := types.NewPathEntry(p)
		if err != nil {
			t.Fatalf("NewPathEntry(%q): %v", p, err)
		}
		if err := tbl.Put(uint32(i), e); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	return tbl
}

func TestMatchPrefixLaw(t *testing.T) {
	tbl := newTable(t, "/var/lib/containers", "/tmp")

	tests := []struct {
		probe string
		want  bool
	}{
		{"/var/lib/containers", true},
		{"/var/lib/containers/foo", true},
		{"/var/lib/container", false},
		{"/tmp", true},
		{"/tmpfile", true}, // pure prefix test, no path-component boundary
		{"/tm", false},
		{"/root/secret", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := Match(tbl, []byte(tt.probe)); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.probe, got, tt.want)
		}
	}
}

func TestMatchEmptyEntrySkipped(t *testing.T) {
	// An all-zero entry must never match, not even the empty probe.
	tbl := newTable(t, "")
	if Match(tbl, []byte("")) {
		t.Error("empty entry matched empty probe")
	}
	if Match(tbl, []byte("/anything")) {
		t.Error("empty entry matched a probe")
	}
}

func TestMatchEmptyTable(t *testing.T) {
	tbl := newTable(t)
	if Match(tbl, []byte("/etc/passwd")) {
		t.Error("empty table produced a match")
	}
}

func TestMatchFullWidthEntry(t *testing.T) {
	// A 64-byte entry has no NUL terminator; its effective length is the
	// full fixed width.
	long := "/" + string(make([]byte, 0))
	for len(long) < types.PathLen {
		long += "a"
	}
	tbl := newTable(t, long)

	if !Match(tbl, []byte(long)) {
		t.Error("full-width entry did not match itself")
	}
	if !Match(tbl, []byte(long+"/child")) {
		t.Error("full-width entry did not match its extension")
	}
	if Match(tbl, []byte(long[:types.PathLen-1])) {
		t.Error("full-width entry matched a shorter probe")
	}
}
