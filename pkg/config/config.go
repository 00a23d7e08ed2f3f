package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cuemby/bastion/pkg/state"
	"github.com/cuemby/bastion/pkg/types"
)

// maxConfigPathLen leaves room for a NUL terminator inside the
// fixed-width table entry.
const maxConfigPathLen = types.PathLen - 1

// TierPaths holds the path lists for one policy tier.
type TierPaths struct {
	MountAllow  []string `yaml:"mount_allow"`
	AccessAllow []string `yaml:"access_allow"`
	AccessDeny  []string `yaml:"access_deny"`
}

// Limits overrides table capacities. Zero means the production default.
type Limits struct {
	Containers int `yaml:"containers"`
	Processes  int `yaml:"processes"`
}

// Config is the on-disk policy document.
type Config struct {
	Runtimes   []string  `yaml:"runtimes"`
	Restricted TierPaths `yaml:"restricted"`
	Baseline   TierPaths `yaml:"baseline"`
	Limits     Limits    `yaml:"limits"`
}

// Default returns the policy shipped when no configuration file exists:
// the usual container storage roots are mountable, and opens are limited
// to common system directories (binaries, libraries, /etc, /proc, /dev,
// /tmp, /home, ...) minus a short denylist.
func Default() *Config {
	return &Config{
		Runtimes: []string{"runc", "crun", "containerd-shim-runc-v2"},
		Restricted: TierPaths{
			MountAllow: []string{
				"/var/lib/containers",
				"/var/lib/docker",
				"/var/lib/kubelet",
				"/run/containerd",
				"/tmp",
			},
			AccessAllow: []string{
				"/usr",
				"/lib",
				"/lib64",
				"/bin",
				"/sbin",
				"/etc",
				"/var/lib/containers",
				"/var/lib/docker",
				"/proc",
				"/sys/fs/cgroup",
				"/dev",
				"/tmp",
				"/home",
			},
			AccessDeny: []string{
				"/etc/shadow",
				"/proc/kcore",
				"/sys/kernel",
			},
		},
		Baseline: TierPaths{
			MountAllow: []string{
				"/var/lib/containers",
				"/var/lib/docker",
				"/var/lib/kubelet",
				"/run/containerd",
				"/run/secrets",
				"/tmp",
				"/home",
			},
			AccessAllow: []string{
				"/usr",
				"/lib",
				"/lib64",
				"/bin",
				"/sbin",
				"/etc",
				"/var",
				"/run",
				"/proc",
				"/sys",
				"/dev",
				"/tmp",
				"/home",
				"/opt",
				"/srv",
			},
			AccessDeny: []string{
				"/etc/shadow",
				"/proc/kcore",
			},
		},
	}
}

// Load reads and validates a policy document. A missing file yields the
// default policy; a malformed one is an error, never a silent fallback.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every path list and the capacity overrides.
func (c *Config) Validate() error {
	lists := map[string][]string{
		"restricted.mount_allow":  c.Restricted.MountAllow,
		"restricted.access_allow": c.Restricted.AccessAllow,
		"restricted.access_deny":  c.Restricted.AccessDeny,
		"baseline.mount_allow":    c.Baseline.MountAllow,
		"baseline.access_allow":   c.Baseline.AccessAllow,
		"baseline.access_deny":    c.Baseline.AccessDeny,
	}
	for name, paths := range lists {
		if len(paths) > types.PathsCap {
			return fmt.Errorf("%s: %d entries exceed table capacity %d", name, len(paths), types.PathsCap)
		}
		for _, p := range paths {
			if p == "" {
				return fmt.Errorf("%s: empty path", name)
			}
			if !strings.HasPrefix(p, "/") {
				return fmt.Errorf("%s: path %q is not absolute", name, p)
			}
			if len(p) > maxConfigPathLen {
				return fmt.Errorf("%s: path %q exceeds %d bytes", name, p, maxConfigPathLen)
			}
			if strings.ContainsRune(p, 0) {
				return fmt.Errorf("%s: path %q contains a NUL byte", name, p)
			}
		}
	}

	for _, r := range c.Runtimes {
		if r == "" {
			return fmt.Errorf("runtimes: empty name")
		}
	}
	if len(c.Runtimes) > types.RuntimesCap {
		return fmt.Errorf("runtimes: %d entries exceed table capacity %d", len(c.Runtimes), types.RuntimesCap)
	}

	if c.Limits.Containers < 0 || c.Limits.Processes < 0 {
		return fmt.Errorf("limits: negative capacity")
	}
	return nil
}

// Caps translates the capacity overrides into table capacities.
func (c *Config) Caps() state.Caps {
	caps := state.DefaultCaps()
	if c.Limits.Containers > 0 {
		caps.Containers = c.Limits.Containers
	}
	if c.Limits.Processes > 0 {
		caps.Processes = c.Limits.Processes
	}
	return caps
}

// Apply populates the shared tables from the document. Path tables are
// replaced wholesale so a reload converges to the document, not to the
// union of every document ever loaded.
func (c *Config) Apply(st *state.State) error {
	for _, r := range c.Runtimes {
		if err := st.RegisterRuntime(r); err != nil {
			return err
		}
	}

	steps := []struct {
		table *state.PathTable
		paths []string
	}{
		{st.AllowedPathsMountRestricted, c.Restricted.MountAllow},
		{st.AllowedPathsMountBaseline, c.Baseline.MountAllow},
		{st.AllowedPathsAccessRestricted, c.Restricted.AccessAllow},
		{st.AllowedPathsAccessBaseline, c.Baseline.AccessAllow},
		{st.DeniedPathsAccessRestricted, c.Restricted.AccessDeny},
		{st.DeniedPathsAccessBaseline, c.Baseline.AccessDeny},
	}
	for _, s := range steps {
		if err := state.ReplacePaths(s.table, s.paths); err != nil {
			return err
		}
	}
	return nil
}
