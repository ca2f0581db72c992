package server

import (
	"context"

	"github.com/chipsenkbeil/over-there-sub000/msg"
)

// handlers adapts Node's file/process tables to dispatch.Handlers. It is a
// thin pass-through for every filesystem and process operation; the
// interesting logic lives in fsx.Table and procx.Table themselves, which
// keeps each table unit-testable without a live socket.
type handlers struct {
	node *Node
}

func (h *handlers) Heartbeat(ctx context.Context) (*msg.HeartbeatReplyArgs, error) {
	return &msg.HeartbeatReplyArgs{}, nil
}

func (h *handlers) Version(ctx context.Context) (*msg.VersionReplyArgs, error) {
	return &msg.VersionReplyArgs{Version: version}, nil
}

func (h *handlers) Capabilities(ctx context.Context) (*msg.CapabilitiesReplyArgs, error) {
	transports := []string{"udp"}
	if h.node.tcpLn != nil || h.node.addrMgr != nil {
		transports = []string{"udp", "tcp"}
	}
	return &msg.CapabilitiesReplyArgs{
		Signer:            "hmac-sha256",
		Encryption:        h.node.codec.Encrypter.Encryption().String(),
		MaxCompositeDepth: h.node.cfg.MaxCompositeDepth,
		Transports:        transports,
	}, nil
}

func (h *handlers) CreateDir(ctx context.Context, a msg.CreateDirArgs) (*msg.DirCreatedReplyArgs, error) {
	return h.node.files.CreateDir(ctx, a)
}
func (h *handlers) RenameDir(ctx context.Context, a msg.RenameDirArgs) (*msg.DirRenamedReplyArgs, error) {
	return h.node.files.RenameDir(ctx, a)
}
func (h *handlers) RemoveDir(ctx context.Context, a msg.RemoveDirArgs) (*msg.DirRemovedReplyArgs, error) {
	return h.node.files.RemoveDir(ctx, a)
}
func (h *handlers) ListDirContents(ctx context.Context, a msg.ListDirContentsArgs) (*msg.DirContentsListReplyArgs, error) {
	return h.node.files.ListDirContents(ctx, a)
}

func (h *handlers) OpenFile(ctx context.Context, a msg.OpenFileArgs) (*msg.FileOpenedReplyArgs, error) {
	r, err := h.node.files.OpenFile(ctx, a)
	if err == nil {
		h.node.metrics.filesOpen.Set(float64(h.node.files.OpenCount()))
	}
	return r, err
}
func (h *handlers) CloseFile(ctx context.Context, a msg.CloseFileArgs) (*msg.FileClosedReplyArgs, error) {
	r, err := h.node.files.CloseFile(ctx, a)
	if err == nil {
		h.node.metrics.filesOpen.Set(float64(h.node.files.OpenCount()))
	}
	return r, err
}
func (h *handlers) RenameUnopenedFile(ctx context.Context, a msg.RenameUnopenedFileArgs) (*msg.UnopenedFileRenamedReplyArgs, error) {
	return h.node.files.RenameUnopenedFile(ctx, a)
}
func (h *handlers) RenameFile(ctx context.Context, a msg.RenameFileArgs) (*msg.FileRenamedReplyArgs, error) {
	return h.node.files.RenameFile(ctx, a)
}
func (h *handlers) RemoveUnopenedFile(ctx context.Context, a msg.RemoveUnopenedFileArgs) (*msg.UnopenedFileRemovedReplyArgs, error) {
	return h.node.files.RemoveUnopenedFile(ctx, a)
}
func (h *handlers) RemoveFile(ctx context.Context, a msg.RemoveFileArgs) (*msg.FileRemovedReplyArgs, error) {
	r, err := h.node.files.RemoveFile(ctx, a)
	if err == nil {
		h.node.metrics.filesOpen.Set(float64(h.node.files.OpenCount()))
	}
	return r, err
}
func (h *handlers) ReadFile(ctx context.Context, a msg.ReadFileArgs) (*msg.FileContentsReplyArgs, error) {
	return h.node.files.ReadFile(ctx, a)
}
func (h *handlers) WriteFile(ctx context.Context, a msg.WriteFileArgs) (*msg.FileWrittenReplyArgs, error) {
	return h.node.files.WriteFile(ctx, a)
}

func (h *handlers) ExecProc(ctx context.Context, a msg.ExecProcArgs) (*msg.ProcStartedReplyArgs, error) {
	r, err := h.node.procs.ExecProc(ctx, a)
	if err == nil {
		h.node.metrics.procsLive.Set(float64(h.node.procs.LiveCount()))
	}
	return r, err
}
func (h *handlers) WriteProcStdin(ctx context.Context, a msg.WriteProcStdinArgs) (*msg.ProcStdinWrittenReplyArgs, error) {
	return h.node.procs.WriteProcStdin(ctx, a)
}
func (h *handlers) ReadProcStdout(ctx context.Context, a msg.ReadProcStdoutArgs) (*msg.ProcStdoutContentsReplyArgs, error) {
	return h.node.procs.ReadProcStdout(ctx, a)
}
func (h *handlers) ReadProcStderr(ctx context.Context, a msg.ReadProcStderrArgs) (*msg.ProcStderrContentsReplyArgs, error) {
	return h.node.procs.ReadProcStderr(ctx, a)
}
func (h *handlers) KillProc(ctx context.Context, a msg.KillProcArgs) (*msg.ProcKilledReplyArgs, error) {
	r, err := h.node.procs.KillProc(ctx, a)
	if err == nil {
		h.node.metrics.procsLive.Set(float64(h.node.procs.LiveCount()))
	}
	return r, err
}
func (h *handlers) ReadProcStatus(ctx context.Context, a msg.ReadProcStatusArgs) (*msg.ProcStatusReplyArgs, error) {
	return h.node.procs.ReadProcStatus(ctx, a)
}

func (h *handlers) Custom(ctx context.Context, a msg.CustomArgs) (*msg.CustomReplyArgs, error) {
	// The core has no opinion on Custom's payload shape;
	// a bare echo is the only behavior that does not presume an
	// application protocol on top of this one.
	return &msg.CustomReplyArgs{Data: a.Data}, nil
}

func (h *handlers) InternalDebug(ctx context.Context, a msg.InternalDebugArgs) (*msg.InternalDebugReplyArgs, error) {
	return &msg.InternalDebugReplyArgs{
		Echo:      a.Input,
		UptimeNS:  h.node.Uptime().Nanoseconds(),
		OpenFiles: h.node.files.OpenCount(),
		LiveProcs: h.node.procs.LiveCount(),
	}, nil
}
