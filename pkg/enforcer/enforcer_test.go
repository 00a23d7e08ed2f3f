package enforcer

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/cuemby/bastion/pkg/lineage"
	"github.com/cuemby/bastion/pkg/state"
	"github.com/cuemby/bastion/pkg/types"
)

type fixture struct {
	st  *state.State
	enf *Enforcer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := state.NewWithCaps(state.Caps{Containers: 32, Processes: 32, Runtimes: 4, Paths: 8})
	return &fixture{
		st:  st,
		enf: New(st, lineage.NewTracker(st), nil),
	}
}

func (f *fixture) container(t *testing.T, id uint32, level types.PolicyLevel, initPID int32) {
	t.Helper()
	if err := f.st.RegisterContainer(id, level); err != nil {
		t.Fatalf("RegisterContainer: %v", err)
	}
	if err := f.st.BindProcess(initPID, id); err != nil {
		t.Fatalf("BindProcess: %v", err)
	}
}

func (f *fixture) paths(t *testing.T, tbl *state.PathTable, paths ...string) {
	t.Helper()
	if err := state.ReplacePaths(tbl, paths); err != nil {
		t.Fatalf("ReplacePaths: %v", err)
	}
}

func TestFold(t *testing.T) {
	prevDeny := -types.Verdict(unix.EACCES)

	tests := []struct {
		name string
		prev types.Verdict
		cur  types.Verdict
		want types.Verdict
	}{
		{"identity", types.VerdictAllow, types.VerdictAllow, types.VerdictAllow},
		{"our deny passes", types.VerdictAllow, types.VerdictDenied, types.VerdictDenied},
		{"prior deny wins over allow", prevDeny, types.VerdictAllow, prevDeny},
		{"prior deny wins over deny", prevDeny, types.VerdictDenied, prevDeny},
		{"prior deny wins over fault", prevDeny, types.VerdictFault, prevDeny},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fold(tt.prev, tt.cur); got != tt.want {
				t.Errorf("Fold(%d, %d) = %d, want %d", tt.prev, tt.cur, got, tt.want)
			}
		})
	}
}

// Scenario: a baseline container's child, bound by fork inheritance, is
// refused kernel log access.
func TestForkInheritanceThenSyslogDenied(t *testing.T) {
	f := newFixture(t)
	f.container(t, 1, types.PolicyBaseline, 100)

	if err := f.enf.SchedProcessFork(100, 101); err != nil {
		t.Fatalf("SchedProcessFork: %v", err)
	}
	proc, ok := f.st.Processes.Get(101)
	if !ok || proc.ContainerID != 1 {
		t.Fatalf("child row = %+v, %v", proc, ok)
	}

	if got := f.enf.Syslog(101, 0, types.VerdictAllow); got != types.VerdictDenied {
		t.Errorf("Syslog = %v, want deny", got)
	}
}

func TestSyslogByTier(t *testing.T) {
	f := newFixture(t)
	f.container(t, 1, types.PolicyRestricted, 100)
	f.container(t, 2, types.PolicyBaseline, 200)
	f.container(t, 3, types.PolicyPrivileged, 300)

	tests := []struct {
		pid  int32
		want types.Verdict
	}{
		{100, types.VerdictDenied},
		{200, types.VerdictDenied},
		{300, types.VerdictAllow},
		{999, types.VerdictAllow}, // host process
	}
	for _, tt := range tests {
		if got := f.enf.Syslog(tt.pid, 0, types.VerdictAllow); got != tt.want {
			t.Errorf("Syslog(pid=%d) = %v, want %v", tt.pid, got, tt.want)
		}
	}
}

// Scenario: privileged tier allows a bind mount of /etc/shadow with
// every path table empty.
func TestPrivilegedBypassesMountPolicy(t *testing.T) {
	f := newFixture(t)
	f.container(t, 2, types.PolicyPrivileged, 200)

	got := f.enf.Mount(200, []byte("/etc/shadow"), []byte("/mnt"), []byte("bind"), 0, nil, types.VerdictAllow)
	if got != types.VerdictAllow {
		t.Errorf("Mount = %v, want allow", got)
	}
}

// Scenario: restricted tier bind mount against the mount allowlist.
func TestBindMountAllowlist(t *testing.T) {
	f := newFixture(t)
	f.container(t, 3, types.PolicyRestricted, 300)
	f.paths(t, f.st.AllowedPathsMountRestricted, "/var/lib/containers")

	got := f.enf.Mount(300, []byte("/var/lib/containers/foo"), []byte("/mnt"), []byte("bind"), 0, nil, types.VerdictAllow)
	if got != types.VerdictAllow {
		t.Errorf("allowlisted source = %v, want allow", got)
	}

	got = f.enf.Mount(300, []byte("/root/secret"), []byte("/mnt"), []byte("bind"), 0, nil, types.VerdictAllow)
	if got != types.VerdictDenied {
		t.Errorf("off-list source = %v, want deny", got)
	}
}

func TestBaselineMountUsesOwnAllowlist(t *testing.T) {
	f := newFixture(t)
	f.container(t, 4, types.PolicyBaseline, 400)
	f.paths(t, f.st.AllowedPathsMountRestricted, "/srv")

	// The restricted allowlist must not leak into baseline decisions.
	got := f.enf.Mount(400, []byte("/srv/data"), []byte("/mnt"), []byte("bind"), 0, nil, types.VerdictAllow)
	if got != types.VerdictDenied {
		t.Errorf("baseline with only restricted entry = %v, want deny", got)
	}

	f.paths(t, f.st.AllowedPathsMountBaseline, "/srv")
	got = f.enf.Mount(400, []byte("/srv/data"), []byte("/mnt"), []byte("bind"), 0, nil, types.VerdictAllow)
	if got != types.VerdictAllow {
		t.Errorf("baseline with baseline entry = %v, want allow", got)
	}
}

// Scenario: only bind mounts are policed.
func TestNonBindMountIgnored(t *testing.T) {
	f := newFixture(t)
	f.container(t, 4, types.PolicyRestricted, 400)

	got := f.enf.Mount(400, []byte("whatever"), []byte("/mnt"), []byte("tmpfs"), 0, nil, types.VerdictAllow)
	if got != types.VerdictAllow {
		t.Errorf("tmpfs mount = %v, want allow", got)
	}

	// "bindx" is not "bind" even though it shares the 4-byte prefix.
	got = f.enf.Mount(400, []byte("/x"), []byte("/mnt"), []byte("bindx"), 0, nil, types.VerdictAllow)
	if got != types.VerdictAllow {
		t.Errorf("bindx mount = %v, want allow", got)
	}
}

func TestMountNullInputs(t *testing.T) {
	f := newFixture(t)
	f.container(t, 5, types.PolicyRestricted, 500)

	// NULL type: sandboxing tools issue those, allow.
	got := f.enf.Mount(500, []byte("/x"), []byte("/mnt"), nil, 0, nil, types.VerdictAllow)
	if got != types.VerdictAllow {
		t.Errorf("NULL type = %v, want allow", got)
	}

	// NULL source on a bind mount: fault.
	got = f.enf.Mount(500, nil, []byte("/mnt"), []byte("bind"), 0, nil, types.VerdictAllow)
	if got != types.VerdictFault {
		t.Errorf("NULL dev_name = %v, want fault", got)
	}
}

// Scenario: setuid to root from an unprivileged uid.
func TestSetuidToRootDenied(t *testing.T) {
	f := newFixture(t)
	f.container(t, 5, types.PolicyBaseline, 500)

	got := f.enf.Setuid(500,
		types.Credentials{UID: 0},
		types.Credentials{UID: 1000},
		0, types.VerdictAllow)
	if got != types.VerdictDenied {
		t.Errorf("1000→0 = %v, want deny", got)
	}

	got = f.enf.Setuid(500,
		types.Credentials{UID: 1002},
		types.Credentials{UID: 1001},
		0, types.VerdictAllow)
	if got != types.VerdictAllow {
		t.Errorf("1001→1002 = %v, want allow", got)
	}

	// Root shedding privilege is fine.
	got = f.enf.Setuid(500,
		types.Credentials{UID: 1000},
		types.Credentials{UID: 0},
		0, types.VerdictAllow)
	if got != types.VerdictAllow {
		t.Errorf("0→1000 = %v, want allow", got)
	}

	// System accounts below the floor may still become root.
	got = f.enf.Setuid(500,
		types.Credentials{UID: 0},
		types.Credentials{UID: 999},
		0, types.VerdictAllow)
	if got != types.VerdictAllow {
		t.Errorf("999→0 = %v, want allow", got)
	}
}

func TestSetuidPrivilegedBypasses(t *testing.T) {
	f := newFixture(t)
	f.container(t, 6, types.PolicyPrivileged, 600)

	got := f.enf.Setuid(600,
		types.Credentials{UID: 0},
		types.Credentials{UID: 1000},
		0, types.VerdictAllow)
	if got != types.VerdictAllow {
		t.Errorf("privileged 1000→0 = %v, want allow", got)
	}
}

// Scenario: open of "/" always allowed, everything else default-denied
// with empty tables.
func TestOpenRootAndDefaultDeny(t *testing.T) {
	f := newFixture(t)
	f.container(t, 6, types.PolicyRestricted, 600)

	if got := f.enf.FileOpen(600, []byte("/"), types.VerdictAllow); got != types.VerdictAllow {
		t.Errorf(`open "/" = %v, want allow`, got)
	}
	if got := f.enf.FileOpen(600, []byte("/tmp/x"), types.VerdictAllow); got != types.VerdictDenied {
		t.Errorf("open /tmp/x = %v, want deny", got)
	}
}

func TestOpenDenyListBeatsAllowList(t *testing.T) {
	f := newFixture(t)
	f.container(t, 7, types.PolicyRestricted, 700)
	f.paths(t, f.st.AllowedPathsAccessRestricted, "/etc")
	f.paths(t, f.st.DeniedPathsAccessRestricted, "/etc/shadow")

	if got := f.enf.FileOpen(700, []byte("/etc/hostname"), types.VerdictAllow); got != types.VerdictAllow {
		t.Errorf("open /etc/hostname = %v, want allow", got)
	}
	if got := f.enf.FileOpen(700, []byte("/etc/shadow"), types.VerdictAllow); got != types.VerdictDenied {
		t.Errorf("open /etc/shadow = %v, want deny", got)
	}
}

func TestOpenBaselineTables(t *testing.T) {
	f := newFixture(t)
	f.container(t, 8, types.PolicyBaseline, 800)
	f.paths(t, f.st.AllowedPathsAccessBaseline, "/usr", "/lib")
	f.paths(t, f.st.DeniedPathsAccessBaseline, "/usr/local/secret")

	tests := []struct {
		path string
		want types.Verdict
	}{
		{"/usr/bin/env", types.VerdictAllow},
		{"/lib/libc.so.6", types.VerdictAllow},
		{"/usr/local/secret/key", types.VerdictDenied},
		{"/opt/tool", types.VerdictDenied},
	}
	for _, tt := range tests {
		if got := f.enf.FileOpen(800, []byte(tt.path), types.VerdictAllow); got != tt.want {
			t.Errorf("open %s = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestOpenUnresolvablePathAllowed(t *testing.T) {
	f := newFixture(t)
	f.container(t, 9, types.PolicyRestricted, 900)

	if got := f.enf.FileOpen(900, nil, types.VerdictAllow); got != types.VerdictAllow {
		t.Errorf("unresolvable path = %v, want allow", got)
	}
}

// Scenario: a prior module's verdict survives every handler.
func TestStacking(t *testing.T) {
	f := newFixture(t)
	f.container(t, 10, types.PolicyPrivileged, 1000)
	prev := -types.Verdict(unix.EACCES)

	if got := f.enf.Syslog(1000, 0, prev); got != prev {
		t.Errorf("Syslog folded prev to %v", got)
	}
	if got := f.enf.Mount(1000, []byte("/x"), []byte("/mnt"), []byte("bind"), 0, nil, prev); got != prev {
		t.Errorf("Mount folded prev to %v", got)
	}
	if got := f.enf.Setuid(1000, types.Credentials{}, types.Credentials{}, 0, prev); got != prev {
		t.Errorf("Setuid folded prev to %v", got)
	}
	if got := f.enf.FileOpen(1000, []byte("/"), prev); got != prev {
		t.Errorf("FileOpen folded prev to %v", got)
	}
	if got := f.enf.TaskAlloc(1000, 1001, 0, prev); got != prev {
		t.Errorf("TaskAlloc folded prev to %v", got)
	}
}

// Inconsistent bindings fail closed on every hook.
func TestLookupErrFailsClosed(t *testing.T) {
	f := newFixture(t)
	if err := f.st.Processes.Insert(1100, types.Process{ContainerID: 77}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if got := f.enf.Syslog(1100, 0, types.VerdictAllow); got != types.VerdictDenied {
		t.Errorf("Syslog = %v, want deny", got)
	}
	if got := f.enf.Mount(1100, []byte("/x"), []byte("/mnt"), []byte("tmpfs"), 0, nil, types.VerdictAllow); got != types.VerdictDenied {
		t.Errorf("Mount = %v, want deny", got)
	}
	if got := f.enf.Setuid(1100, types.Credentials{UID: 1001}, types.Credentials{UID: 1000}, 0, types.VerdictAllow); got != types.VerdictDenied {
		t.Errorf("Setuid = %v, want deny", got)
	}
	if got := f.enf.FileOpen(1100, []byte("/"), types.VerdictAllow); got != types.VerdictDenied {
		t.Errorf("FileOpen = %v, want deny", got)
	}
}

// Host processes pass through on every hook.
func TestHostPassthrough(t *testing.T) {
	f := newFixture(t)
	// Hostile-looking inputs, but pid 42 is not registered.
	if got := f.enf.Syslog(42, 0, types.VerdictAllow); got != types.VerdictAllow {
		t.Errorf("Syslog = %v, want allow", got)
	}
	if got := f.enf.Mount(42, []byte("/etc/shadow"), []byte("/mnt"), []byte("bind"), 0, nil, types.VerdictAllow); got != types.VerdictAllow {
		t.Errorf("Mount = %v, want allow", got)
	}
	if got := f.enf.Setuid(42, types.Credentials{UID: 0}, types.Credentials{UID: 1000}, 0, types.VerdictAllow); got != types.VerdictAllow {
		t.Errorf("Setuid = %v, want allow", got)
	}
	if got := f.enf.FileOpen(42, []byte("/etc/shadow"), types.VerdictAllow); got != types.VerdictAllow {
		t.Errorf("FileOpen = %v, want allow", got)
	}
}

// Replayed lineage events leave exactly one binding.
func TestTaskAllocIdempotentWithFork(t *testing.T) {
	f := newFixture(t)
	f.container(t, 11, types.PolicyBaseline, 1200)

	if err := f.enf.SchedProcessFork(1200, 1201); err != nil {
		t.Fatalf("SchedProcessFork: %v", err)
	}
	if got := f.enf.TaskAlloc(1200, 1201, 0, types.VerdictAllow); got != types.VerdictAllow {
		t.Errorf("TaskAlloc = %v, want allow", got)
	}

	proc, ok := f.st.Processes.Get(1201)
	if !ok || proc.ContainerID != 11 {
		t.Fatalf("child row = %+v, %v", proc, ok)
	}
}

func TestPathTruncationAtBufferWidth(t *testing.T) {
	f := newFixture(t)
	f.container(t, 12, types.PolicyRestricted, 1300)

	// An entry that fills the whole fixed width.
	long := "/deep"
	for len(long) < types.PathLen {
		long += "/x"
	}
	long = long[:types.PathLen]
	f.paths(t, f.st.AllowedPathsMountRestricted, long)

	// A probe longer than the buffer matches on its truncated prefix.
	probe := long + "/beyond-the-buffer"
	got := f.enf.Mount(1300, []byte(probe), []byte("/mnt"), []byte("bind"), 0, nil, types.VerdictAllow)
	if got != types.VerdictAllow {
		t.Errorf("truncated probe = %v, want allow", got)
	}
}
