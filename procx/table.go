// Package procx implements the process handler set: a table of spawned
// children keyed by pid, with non-blocking stdio capture and independent
// alive/dead TTL budgets.
package procx

import (
	"context"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/chipsenkbeil/over-there-sub000/cmn/cos"
	"github.com/chipsenkbeil/over-there-sub000/msg"
)

const chunkSize = 4096

type proc struct {
	id  uint32
	cmd *exec.Cmd

	stdin  io.WriteCloser
	stdout chan []byte
	stderr chan []byte

	mu       sync.Mutex
	alive    bool
	exitCode int
	touched  *cos.TTLValue[struct{}]

	waitDone chan struct{}
}

// Table is the process table, guarded by a single mutex whose critical
// sections never span a blocking syscall -- stdio reads happen on
// per-process pump goroutines that feed buffered channels, so a pipe
// snapshot is just a channel drain.
type Table struct {
	mu       sync.Mutex
	byID     map[uint32]*proc
	aliveTTL time.Duration
	deadTTL  time.Duration
}

func NewTable(aliveTTL, deadTTL time.Duration) *Table {
	return &Table{byID: make(map[uint32]*proc), aliveTTL: aliveTTL, deadTTL: deadTTL}
}

func (t *Table) ExecProc(ctx context.Context, a msg.ExecProcArgs) (*msg.ProcStartedReplyArgs, error) {
	cmd := exec.Command(a.Command, a.Args...)
	if a.CurrentDir != nil {
		dir, err := canonicalize(*a.CurrentDir)
		if err != nil {
			return nil, cos.NewErrInvalidData("canonicalize %s: %v", *a.CurrentDir, err)
		}
		cmd.Dir = dir
	}

	p := &proc{touched: cos.NewTTLValue(struct{}{}), alive: true, waitDone: make(chan struct{})}

	if a.Stdin {
		w, err := cmd.StdinPipe()
		if err != nil {
			return nil, mapExecErr(err)
		}
		p.stdin = w
	}
	// Output pipes are plain os.Pipe pairs rather than StdoutPipe/StderrPipe:
	// cmd.Wait closes those read ends as soon as the child exits, which could
	// discard output a pump has not read yet. Here the read end belongs to
	// the pump alone and reaches EOF once the child's copy of the write end
	// closes; the parent's copy is closed when ExecProc returns.
	if a.Stdout {
		r, w, err := os.Pipe()
		if err != nil {
			return nil, mapExecErr(err)
		}
		defer w.Close()
		cmd.Stdout = w
		p.stdout = make(chan []byte, 256)
		go func() { pump(r, p.stdout); _ = r.Close() }()
	}
	if a.Stderr {
		r, w, err := os.Pipe()
		if err != nil {
			return nil, mapExecErr(err)
		}
		defer w.Close()
		cmd.Stderr = w
		p.stderr = make(chan []byte, 256)
		go func() { pump(r, p.stderr); _ = r.Close() }()
	}

	if err := cmd.Start(); err != nil {
		return nil, mapExecErr(err)
	}
	p.cmd = cmd
	p.id = uint32(cmd.Process.Pid)

	t.mu.Lock()
	t.byID[p.id] = p
	t.mu.Unlock()

	go t.awaitExit(p)

	return &msg.ProcStartedReplyArgs{ID: p.id}, nil
}

// pump reads r in chunks and forwards each to ch until EOF; it is the
// non-blocking-read mechanism's producer side -- callers never block on a
// pipe directly, only on draining ch.
func pump(r io.Reader, ch chan<- []byte) {
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			ch <- chunk
		}
		if err != nil {
			return
		}
	}
}

func (t *Table) awaitExit(p *proc) {
	err := p.cmd.Wait()
	code := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		} else {
			code = -1
		}
	}
	p.mu.Lock()
	p.alive = false
	p.exitCode = code
	p.touched.Touch() // dead-untouched budget starts now
	p.mu.Unlock()
	close(p.waitDone)
}

func (t *Table) lookup(id uint32) (*proc, error) {
	t.mu.Lock()
	p, ok := t.byID[id]
	t.mu.Unlock()
	if !ok {
		return nil, cos.NewErrNotFound("process %d", id)
	}
	return p, nil
}

func (t *Table) WriteProcStdin(ctx context.Context, a msg.WriteProcStdinArgs) (*msg.ProcStdinWrittenReplyArgs, error) {
	p, err := t.lookup(a.ID)
	if err != nil {
		return nil, err
	}
	if p.stdin == nil {
		return nil, cos.NewErrPermission("stdin", "write")
	}
	p.touched.Touch()
	if _, err := p.stdin.Write(a.Input); err != nil {
		return nil, cos.NewErrInvalidData("write stdin: %v", err)
	}
	return &msg.ProcStdinWrittenReplyArgs{ID: a.ID}, nil
}

// drain collects whatever is already queued on ch without blocking;
// empty output on would-block is expected, not an error.
func drain(ch chan []byte) []byte {
	if ch == nil {
		return nil
	}
	var out []byte
	for {
		select {
		case chunk := <-ch:
			out = append(out, chunk...)
		default:
			return out
		}
	}
}

func (t *Table) ReadProcStdout(ctx context.Context, a msg.ReadProcStdoutArgs) (*msg.ProcStdoutContentsReplyArgs, error) {
	p, err := t.lookup(a.ID)
	if err != nil {
		return nil, err
	}
	p.touched.Touch()
	return &msg.ProcStdoutContentsReplyArgs{ID: a.ID, Output: drain(p.stdout)}, nil
}

func (t *Table) ReadProcStderr(ctx context.Context, a msg.ReadProcStderrArgs) (*msg.ProcStderrContentsReplyArgs, error) {
	p, err := t.lookup(a.ID)
	if err != nil {
		return nil, err
	}
	p.touched.Touch()
	return &msg.ProcStderrContentsReplyArgs{ID: a.ID, Output: drain(p.stderr)}, nil
}

func (t *Table) ReadProcStatus(ctx context.Context, a msg.ReadProcStatusArgs) (*msg.ProcStatusReplyArgs, error) {
	p, err := t.lookup(a.ID)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	alive := p.alive
	code := p.exitCode
	p.mu.Unlock()

	if alive {
		return &msg.ProcStatusReplyArgs{ID: a.ID, Alive: true}, nil
	}
	c := code
	return &msg.ProcStatusReplyArgs{ID: a.ID, Alive: false, ExitCode: &c}, nil
}

func (t *Table) KillProc(ctx context.Context, a msg.KillProcArgs) (*msg.ProcKilledReplyArgs, error) {
	p, err := t.lookup(a.ID)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	alive := p.alive
	p.mu.Unlock()
	if alive {
		if err := p.cmd.Process.Kill(); err != nil {
			return nil, cos.NewErrInvalidData("kill process %d: %v", a.ID, err)
		}
	}
	<-p.waitDone

	p.mu.Lock()
	code := p.exitCode
	p.mu.Unlock()

	t.mu.Lock()
	delete(t.byID, a.ID)
	t.mu.Unlock()

	return &msg.ProcKilledReplyArgs{ID: a.ID, ExitCode: code}, nil
}

// EvictExpired closes out entries past their current TTL budget -- alive
// processes use aliveTTL, exited-but-unread processes use the shorter
// deadTTL -- called by the server's cleanup loop.
func (t *Table) EvictExpired() int {
	t.mu.Lock()
	var stale []*proc
	for id, p := range t.byID {
		p.mu.Lock()
		ttl := t.aliveTTL
		if !p.alive {
			ttl = t.deadTTL
		}
		expired := p.touched.Expired(ttl)
		p.mu.Unlock()
		if expired {
			stale = append(stale, p)
			delete(t.byID, id)
		}
	}
	t.mu.Unlock()

	for _, p := range stale {
		p.mu.Lock()
		alive := p.alive
		p.mu.Unlock()
		if alive {
			_ = p.cmd.Process.Kill()
			<-p.waitDone
		}
	}
	return len(stale)
}

// LiveCount reports the number of processes currently tracked (alive or
// dead-but-unreaped); used by the InternalDebug reply.
func (t *Table) LiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byID)
}

func mapExecErr(err error) error {
	return cos.NewErrInvalidData("exec: %v", err)
}
