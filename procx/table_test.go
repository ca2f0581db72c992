package procx

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/chipsenkbeil/over-there-sub000/msg"
)

func shellCmd(script string) (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C", script}
	}
	return "/bin/sh", []string{"-c", script}
}

func TestExecReadStdoutAndStatus(t *testing.T) {
	table := NewTable(time.Minute, 5*time.Second)
	cmdName, args := shellCmd("echo hi")

	started, err := table.ExecProc(context.Background(), msg.ExecProcArgs{Command: cmdName, Args: args, Stdout: true})
	if err != nil {
		t.Fatalf("ExecProc: %v", err)
	}

	var out []byte
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		r, err := table.ReadProcStdout(context.Background(), msg.ReadProcStdoutArgs{ID: started.ID})
		if err != nil {
			t.Fatalf("ReadProcStdout: %v", err)
		}
		out = append(out, r.Output...)
		if len(out) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if string(out) != "hi\n" {
		t.Fatalf("got stdout %q", out)
	}

	deadline = time.Now().Add(2 * time.Second)
	var status *msg.ProcStatusReplyArgs
	for time.Now().Before(deadline) {
		status, err = table.ReadProcStatus(context.Background(), msg.ReadProcStatusArgs{ID: started.ID})
		if err != nil {
			t.Fatalf("ReadProcStatus: %v", err)
		}
		if !status.Alive {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if status.Alive {
		t.Fatal("expected process to have exited")
	}
	if status.ExitCode == nil || *status.ExitCode != 0 {
		t.Fatalf("got exit code %v", status.ExitCode)
	}
}

func TestReadStdoutEmptyWhenWouldBlock(t *testing.T) {
	table := NewTable(time.Minute, 5*time.Second)
	cmdName, args := shellCmd("sleep 1")

	started, err := table.ExecProc(context.Background(), msg.ExecProcArgs{Command: cmdName, Args: args, Stdout: true})
	if err != nil {
		t.Fatalf("ExecProc: %v", err)
	}

	r, err := table.ReadProcStdout(context.Background(), msg.ReadProcStdoutArgs{ID: started.ID})
	if err != nil {
		t.Fatalf("ReadProcStdout: %v", err)
	}
	if len(r.Output) != 0 {
		t.Fatalf("expected empty output, got %q", r.Output)
	}

	if _, err := table.KillProc(context.Background(), msg.KillProcArgs{ID: started.ID}); err != nil {
		t.Fatalf("KillProc: %v", err)
	}
}

func TestKillProcRemovesFromTable(t *testing.T) {
	table := NewTable(time.Minute, 5*time.Second)
	cmdName, args := shellCmd("sleep 5")

	started, err := table.ExecProc(context.Background(), msg.ExecProcArgs{Command: cmdName, Args: args})
	if err != nil {
		t.Fatalf("ExecProc: %v", err)
	}
	if table.LiveCount() != 1 {
		t.Fatalf("expected 1 live process, got %d", table.LiveCount())
	}

	if _, err := table.KillProc(context.Background(), msg.KillProcArgs{ID: started.ID}); err != nil {
		t.Fatalf("KillProc: %v", err)
	}
	if table.LiveCount() != 0 {
		t.Fatalf("expected process removed after kill, got %d", table.LiveCount())
	}
}

func TestReadProcStatusUnknownPidIsNotFound(t *testing.T) {
	table := NewTable(time.Minute, 5*time.Second)
	_, err := table.ReadProcStatus(context.Background(), msg.ReadProcStatusArgs{ID: 999999})
	if err == nil {
		t.Fatal("expected error for unknown pid")
	}
}
