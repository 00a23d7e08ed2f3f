package hooks

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/bastion/pkg/log"
)

// DefaultScanInterval is how often the scanner sweeps /proc.
const DefaultScanInterval = 2 * time.Second

// ProcScanner is the redundant lineage source: a periodic sweep of
// /proc that emits every pid not seen before, with its parent. It
// catches the children the fork stream loses (clone flag variants,
// short-lived intermediaries whose own children outlive them) at the
// cost of latency. Emitted events overlap the fork stream's; the
// tracker absorbs the duplication.
type ProcScanner struct {
	procRoot string
	interval time.Duration
	seen     map[int32]struct{}
	logger   zerolog.Logger
}

// NewProcScanner creates the scanner over /proc.
func NewProcScanner(interval time.Duration) *ProcScanner {
	if interval <= 0 {
		interval = DefaultScanInterval
	}
	return &ProcScanner{
		procRoot: "/proc",
		interval: interval,
		seen:     make(map[int32]struct{}),
		logger:   log.WithComponent("proc-scanner"),
	}
}

// Name implements Source.
func (s *ProcScanner) Name() string { return "task-alloc" }

// Run implements Source.
func (s *ProcScanner) Run(ctx context.Context, out chan<- TaskEvent) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx, out)
	for {
		select {
		case <-ticker.C:
			s.sweep(ctx, out)
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *ProcScanner) sweep(ctx context.Context, out chan<- TaskEvent) {
	entries, err := os.ReadDir(s.procRoot)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read proc root")
		return
	}

	live := make(map[int32]struct{}, len(entries))
	for _, entry := range entries {
		pid64, err := strconv.ParseInt(entry.Name(), 10, 32)
		if err != nil {
			continue
		}
		pid := int32(pid64)
		live[pid] = struct{}{}

		if _, ok := s.seen[pid]; ok {
			continue
		}
		ppid, err := s.parentOf(pid)
		if err != nil {
			// The process exited mid-sweep; it will not be back.
			continue
		}
		select {
		case out <- TaskEvent{ParentPID: ppid, ChildPID: pid, Alloc: true}:
		case <-ctx.Done():
			return
		}
	}

	// Forget exited pids so their numbers can be reported again after
	// the kernel recycles them.
	s.seen = live
}

// parentOf reads the ppid from /proc/<pid>/stat. The comm field may
// contain spaces and parentheses, so parsing starts after the last ')'.
func (s *ProcScanner) parentOf(pid int32) (int32, error) {
	data, err := os.ReadFile(filepath.Join(s.procRoot, strconv.Itoa(int(pid)), "stat"))
	if err != nil {
		return 0, err
	}
	return parseStatPPID(data)
}

func parseStatPPID(stat []byte) (int32, error) {
	end := bytes.LastIndexByte(stat, ')')
	if end < 0 || end+2 >= len(stat) {
		return 0, os.ErrInvalid
	}
	fields := bytes.Fields(stat[end+2:])
	// fields[0] is the state; fields[1] the ppid.
	if len(fields) < 2 {
		return 0, os.ErrInvalid
	}
	ppid, err := strconv.ParseInt(string(fields[1]), 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(ppid), nil
}
