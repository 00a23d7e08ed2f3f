package hooks

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"github.com/cuemby/bastion/pkg/log"
)

// Proc connector protocol constants (linux/cn_proc.h, linux/connector.h).
const (
	cnIdxProc         = 0x1
	cnValProc         = 0x1
	procCnMcastListen = 0x1
	procEventFork     = 0x00000001

	nlmsgHdrLen = 16 // struct nlmsghdr
	cnMsgLen    = 20 // struct cn_msg
	// struct proc_event: what, cpu, 8-aligned timestamp, then the
	// per-event union. The fork union member starts here.
	forkEventOff = 16
	forkEventLen = 16 // parent pid/tgid, child pid/tgid
)

// ProcConnector streams fork events from the kernel's proc connector
// over a netlink socket. This is the primary lineage source: it fires
// for every fork/clone on the host, microseconds after the fact.
// Requires CAP_NET_ADMIN.
type ProcConnector struct {
	logger zerolog.Logger
}

// NewProcConnector creates the fork event source.
func NewProcConnector() *ProcConnector {
	return &ProcConnector{logger: log.WithComponent("proc-connector")}
}

// Name implements Source.
func (p *ProcConnector) Name() string { return "fork" }

// Run implements Source. It subscribes to the proc connector multicast
// group and emits one TaskEvent per fork until ctx is cancelled.
func (p *ProcConnector) Run(ctx context.Context, out chan<- TaskEvent) error {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, unix.NETLINK_CONNECTOR)
	if err != nil {
		return fmt.Errorf("open netlink connector socket: %w", err)
	}
	defer unix.Close(fd)

	addr := &unix.SockaddrNetlink{
		Family: unix.AF_NETLINK,
		Groups: cnIdxProc,
		Pid:    uint32(os.Getpid()),
	}
	if err := unix.Bind(fd, addr); err != nil {
		return fmt.Errorf("bind netlink connector socket: %w", err)
	}

	if err := p.setListen(fd, procCnMcastListen); err != nil {
		return fmt.Errorf("subscribe to proc events: %w", err)
	}
	p.logger.Info().Msg("Fork event stream attached")

	// Unblock the read loop when the context ends.
	go func() {
		<-ctx.Done()
		unix.Shutdown(fd, unix.SHUT_RDWR)
	}()

	buf := make([]byte, 4096)
	for {
		n, _, err := unix.Recvfrom(fd, buf, 0)
		if ctx.Err() != nil {
			return nil
		}
		if err == unix.EINTR || err == unix.ENOBUFS {
			continue
		}
		if err != nil {
			return fmt.Errorf("read proc events: %w", err)
		}

		msgs, err := syscall.ParseNetlinkMessage(buf[:n])
		if err != nil {
			continue
		}
		for _, msg := range msgs {
			if msg.Header.Type != unix.NLMSG_DONE {
				continue
			}
			p.emit(ctx, msg.Data, out)
		}
	}
}

// setListen sends the mcast subscribe/unsubscribe control message.
func (p *ProcConnector) setListen(fd int, op uint32) error {
	msg := make([]byte, nlmsgHdrLen+cnMsgLen+4)

	// nlmsghdr
	binary.NativeEndian.PutUint32(msg[0:], uint32(len(msg)))
	binary.NativeEndian.PutUint16(msg[4:], unix.NLMSG_DONE)
	binary.NativeEndian.PutUint32(msg[12:], uint32(os.Getpid()))

	// cn_msg: cb_id{idx, val}, seq, ack, len, flags
	cn := msg[nlmsgHdrLen:]
	binary.NativeEndian.PutUint32(cn[0:], cnIdxProc)
	binary.NativeEndian.PutUint32(cn[4:], cnValProc)
	binary.NativeEndian.PutUint16(cn[16:], 4) // payload length

	// enum proc_cn_mcast_op
	binary.NativeEndian.PutUint32(cn[cnMsgLen:], op)

	return unix.Sendto(fd, msg, 0, &unix.SockaddrNetlink{Family: unix.AF_NETLINK})
}

// emit decodes one cn_msg payload and forwards fork events.
func (p *ProcConnector) emit(ctx context.Context, data []byte, out chan<- TaskEvent) {
	if len(data) < cnMsgLen+forkEventOff+forkEventLen {
		return
	}
	event := data[cnMsgLen:]

	what := binary.NativeEndian.Uint32(event[0:])
	if what != procEventFork {
		return
	}

	fork := event[forkEventOff:]
	parentTGID := int32(binary.NativeEndian.Uint32(fork[4:]))
	childTGID := int32(binary.NativeEndian.Uint32(fork[12:]))

	select {
	case out <- TaskEvent{ParentPID: parentTGID, ChildPID: childTGID}:
	case <-ctx.Done():
	}
}
