// Package dispatch implements the action dispatcher: it matches an
// inbound request's Kind to a handler, and additionally interprets the
// three composition variants -- Sequence, Batch, Forward -- recursively,
// enforcing the configured max composite depth and applying the
// path-rewrite engine between Sequence steps.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/chipsenkbeil/over-there-sub000/cmn/cos"
	"github.com/chipsenkbeil/over-there-sub000/msg"
)

// Handlers is implemented by whatever owns the filesystem and process
// tables (the server package's fsx/procx-backed node); Dispatcher never
// touches either table directly.
type Handlers interface {
	Heartbeat(ctx context.Context) (*msg.HeartbeatReplyArgs, error)
	Version(ctx context.Context) (*msg.VersionReplyArgs, error)
	Capabilities(ctx context.Context) (*msg.CapabilitiesReplyArgs, error)

	CreateDir(ctx context.Context, args msg.CreateDirArgs) (*msg.DirCreatedReplyArgs, error)
	RenameDir(ctx context.Context, args msg.RenameDirArgs) (*msg.DirRenamedReplyArgs, error)
	RemoveDir(ctx context.Context, args msg.RemoveDirArgs) (*msg.DirRemovedReplyArgs, error)
	ListDirContents(ctx context.Context, args msg.ListDirContentsArgs) (*msg.DirContentsListReplyArgs, error)

	OpenFile(ctx context.Context, args msg.OpenFileArgs) (*msg.FileOpenedReplyArgs, error)
	CloseFile(ctx context.Context, args msg.CloseFileArgs) (*msg.FileClosedReplyArgs, error)
	RenameUnopenedFile(ctx context.Context, args msg.RenameUnopenedFileArgs) (*msg.UnopenedFileRenamedReplyArgs, error)
	RenameFile(ctx context.Context, args msg.RenameFileArgs) (*msg.FileRenamedReplyArgs, error)
	RemoveUnopenedFile(ctx context.Context, args msg.RemoveUnopenedFileArgs) (*msg.UnopenedFileRemovedReplyArgs, error)
	RemoveFile(ctx context.Context, args msg.RemoveFileArgs) (*msg.FileRemovedReplyArgs, error)
	ReadFile(ctx context.Context, args msg.ReadFileArgs) (*msg.FileContentsReplyArgs, error)
	WriteFile(ctx context.Context, args msg.WriteFileArgs) (*msg.FileWrittenReplyArgs, error)

	ExecProc(ctx context.Context, args msg.ExecProcArgs) (*msg.ProcStartedReplyArgs, error)
	WriteProcStdin(ctx context.Context, args msg.WriteProcStdinArgs) (*msg.ProcStdinWrittenReplyArgs, error)
	ReadProcStdout(ctx context.Context, args msg.ReadProcStdoutArgs) (*msg.ProcStdoutContentsReplyArgs, error)
	ReadProcStderr(ctx context.Context, args msg.ReadProcStderrArgs) (*msg.ProcStderrContentsReplyArgs, error)
	KillProc(ctx context.Context, args msg.KillProcArgs) (*msg.ProcKilledReplyArgs, error)
	ReadProcStatus(ctx context.Context, args msg.ReadProcStatusArgs) (*msg.ProcStatusReplyArgs, error)

	Custom(ctx context.Context, args msg.CustomArgs) (*msg.CustomReplyArgs, error)
	InternalDebug(ctx context.Context, args msg.InternalDebugArgs) (*msg.InternalDebugReplyArgs, error)
}

// Forwarder sends op to a remote address and waits for its reply,
// backing ForwardRequest. The server package implements this with its
// client ask/tell machinery.
type Forwarder interface {
	Forward(ctx context.Context, addr string, op *msg.Msg) (*msg.Msg, error)
}

// Dispatcher routes one request at a time; it is stateless and safe for
// concurrent use across associations.
type Dispatcher struct {
	handlers  Handlers
	forwarder Forwarder
	maxDepth  int
}

func New(handlers Handlers, forwarder Forwarder, maxDepth int) *Dispatcher {
	return &Dispatcher{handlers: handlers, forwarder: forwarder, maxDepth: maxDepth}
}

// Dispatch routes a top-level inbound request and always returns a reply
// envelope -- handler and routing errors are folded into one of the three
// error reply kinds rather than surfaced to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, req *msg.Msg) *msg.Msg {
	return d.dispatch(ctx, req, 0)
}

func (d *Dispatcher) dispatch(ctx context.Context, req *msg.Msg, depth int) *msg.Msg {
	reply, err := d.route(ctx, req, depth)
	if err != nil {
		return d.errReply(req, err)
	}
	return reply
}

func (d *Dispatcher) route(ctx context.Context, req *msg.Msg, depth int) (*msg.Msg, error) {
	switch req.Kind {
	case msg.KindHeartbeatRequest:
		r, err := d.handlers.Heartbeat(ctx)
		return replyOrErr(req, msg.KindHeartbeatReply, r, err)
	case msg.KindVersionRequest:
		r, err := d.handlers.Version(ctx)
		return replyOrErr(req, msg.KindVersionReply, r, err)
	case msg.KindCapabilitiesRequest:
		r, err := d.handlers.Capabilities(ctx)
		return replyOrErr(req, msg.KindCapabilitiesReply, r, err)

	case msg.KindCreateDirRequest:
		var a msg.CreateDirArgs
		if err := req.DecodeArgs(&a); err != nil {
			return nil, err
		}
		r, err := d.handlers.CreateDir(ctx, a)
		return replyOrErr(req, msg.KindDirCreatedReply, r, err)
	case msg.KindRenameDirRequest:
		var a msg.RenameDirArgs
		if err := req.DecodeArgs(&a); err != nil {
			return nil, err
		}
		r, err := d.handlers.RenameDir(ctx, a)
		return replyOrErr(req, msg.KindDirRenamedReply, r, err)
	case msg.KindRemoveDirRequest:
		var a msg.RemoveDirArgs
		if err := req.DecodeArgs(&a); err != nil {
			return nil, err
		}
		r, err := d.handlers.RemoveDir(ctx, a)
		return replyOrErr(req, msg.KindDirRemovedReply, r, err)
	case msg.KindListDirContentsRequest:
		var a msg.ListDirContentsArgs
		if err := req.DecodeArgs(&a); err != nil {
			return nil, err
		}
		r, err := d.handlers.ListDirContents(ctx, a)
		return replyOrErr(req, msg.KindDirContentsListReply, r, err)

	case msg.KindOpenFileRequest:
		var a msg.OpenFileArgs
		if err := req.DecodeArgs(&a); err != nil {
			return nil, err
		}
		r, err := d.handlers.OpenFile(ctx, a)
		return replyOrErr(req, msg.KindFileOpenedReply, r, err)
	case msg.KindCloseFileRequest:
		var a msg.CloseFileArgs
		if err := req.DecodeArgs(&a); err != nil {
			return nil, err
		}
		r, err := d.handlers.CloseFile(ctx, a)
		return replyOrErr(req, msg.KindFileClosedReply, r, err)
	case msg.KindRenameUnopenedFileRequest:
		var a msg.RenameUnopenedFileArgs
		if err := req.DecodeArgs(&a); err != nil {
			return nil, err
		}
		r, err := d.handlers.RenameUnopenedFile(ctx, a)
		return replyOrErr(req, msg.KindUnopenedFileRenamedReply, r, err)
	case msg.KindRenameFileRequest:
		var a msg.RenameFileArgs
		if err := req.DecodeArgs(&a); err != nil {
			return nil, err
		}
		r, err := d.handlers.RenameFile(ctx, a)
		return replyOrErr(req, msg.KindFileRenamedReply, r, err)
	case msg.KindRemoveUnopenedFileRequest:
		var a msg.RemoveUnopenedFileArgs
		if err := req.DecodeArgs(&a); err != nil {
			return nil, err
		}
		r, err := d.handlers.RemoveUnopenedFile(ctx, a)
		return replyOrErr(req, msg.KindUnopenedFileRemovedReply, r, err)
	case msg.KindRemoveFileRequest:
		var a msg.RemoveFileArgs
		if err := req.DecodeArgs(&a); err != nil {
			return nil, err
		}
		r, err := d.handlers.RemoveFile(ctx, a)
		return replyOrErr(req, msg.KindFileRemovedReply, r, err)
	case msg.KindReadFileRequest:
		var a msg.ReadFileArgs
		if err := req.DecodeArgs(&a); err != nil {
			return nil, err
		}
		r, err := d.handlers.ReadFile(ctx, a)
		return replyOrErr(req, msg.KindFileContentsReply, r, err)
	case msg.KindWriteFileRequest:
		var a msg.WriteFileArgs
		if err := req.DecodeArgs(&a); err != nil {
			return nil, err
		}
		r, err := d.handlers.WriteFile(ctx, a)
		return replyOrErr(req, msg.KindFileWrittenReply, r, err)

	case msg.KindExecProcRequest:
		var a msg.ExecProcArgs
		if err := req.DecodeArgs(&a); err != nil {
			return nil, err
		}
		r, err := d.handlers.ExecProc(ctx, a)
		return replyOrErr(req, msg.KindProcStartedReply, r, err)
	case msg.KindWriteProcStdinRequest:
		var a msg.WriteProcStdinArgs
		if err := req.DecodeArgs(&a); err != nil {
			return nil, err
		}
		r, err := d.handlers.WriteProcStdin(ctx, a)
		return replyOrErr(req, msg.KindProcStdinWrittenReply, r, err)
	case msg.KindReadProcStdoutRequest:
		var a msg.ReadProcStdoutArgs
		if err := req.DecodeArgs(&a); err != nil {
			return nil, err
		}
		r, err := d.handlers.ReadProcStdout(ctx, a)
		return replyOrErr(req, msg.KindProcStdoutContentsReply, r, err)
	case msg.KindReadProcStderrRequest:
		var a msg.ReadProcStderrArgs
		if err := req.DecodeArgs(&a); err != nil {
			return nil, err
		}
		r, err := d.handlers.ReadProcStderr(ctx, a)
		return replyOrErr(req, msg.KindProcStderrContentsReply, r, err)
	case msg.KindKillProcRequest:
		var a msg.KillProcArgs
		if err := req.DecodeArgs(&a); err != nil {
			return nil, err
		}
		r, err := d.handlers.KillProc(ctx, a)
		return replyOrErr(req, msg.KindProcKilledReply, r, err)
	case msg.KindReadProcStatusRequest:
		var a msg.ReadProcStatusArgs
		if err := req.DecodeArgs(&a); err != nil {
			return nil, err
		}
		r, err := d.handlers.ReadProcStatus(ctx, a)
		return replyOrErr(req, msg.KindProcStatusReply, r, err)

	case msg.KindCustomRequest:
		var a msg.CustomArgs
		if err := req.DecodeArgs(&a); err != nil {
			return nil, err
		}
		r, err := d.handlers.Custom(ctx, a)
		return replyOrErr(req, msg.KindCustomReply, r, err)
	case msg.KindInternalDebugRequest:
		var a msg.InternalDebugArgs
		if err := req.DecodeArgs(&a); err != nil {
			return nil, err
		}
		r, err := d.handlers.InternalDebug(ctx, a)
		return replyOrErr(req, msg.KindInternalDebugReply, r, err)

	case msg.KindSequenceRequest:
		return d.dispatchSequence(ctx, req, depth)
	case msg.KindBatchRequest:
		return d.dispatchBatch(ctx, req, depth)
	case msg.KindForwardRequest:
		return d.dispatchForward(ctx, req, depth)

	default:
		return nil, &UnknownKind{Kind: req.Kind}
	}
}

// replyOrErr is the common tail of every simple (non-composite) case in
// route: build the named reply kind from a handler's result, or propagate
// its error untouched.
func replyOrErr[T any](req *msg.Msg, replyKind string, args *T, err error) (*msg.Msg, error) {
	if err != nil {
		return nil, err
	}
	return msg.NewReply(req, replyKind, *args)
}

func (d *Dispatcher) dispatchSequence(ctx context.Context, req *msg.Msg, depth int) (*msg.Msg, error) {
	if depth+1 > d.maxDepth {
		return nil, &MaxDepthExceeded{Depth: depth + 1, Max: d.maxDepth}
	}
	var args msg.SequenceArgs
	if err := req.DecodeArgs(&args); err != nil {
		return nil, err
	}

	replies := make([]msg.Msg, 0, len(args.Ops))
	for i := range args.Ops {
		op := args.Ops[i]
		if i > 0 && len(args.Rules) > 0 {
			rewritten, err := applyRewriteRules(&op, &replies[len(replies)-1], args.Rules)
			if err != nil {
				replies = append(replies, *d.errReply(&op, err))
				break
			}
			op = *rewritten
		}

		r := d.dispatch(ctx, &op, depth+1)
		replies = append(replies, *r)
		if isErrorReply(r) {
			break
		}
	}
	return msg.NewReply(req, msg.KindSequenceReply, msg.SequenceReplyArgs{Replies: replies})
}

func (d *Dispatcher) dispatchBatch(ctx context.Context, req *msg.Msg, depth int) (*msg.Msg, error) {
	if depth+1 > d.maxDepth {
		return nil, &MaxDepthExceeded{Depth: depth + 1, Max: d.maxDepth}
	}
	var args msg.BatchArgs
	if err := req.DecodeArgs(&args); err != nil {
		return nil, err
	}

	replies := make([]msg.Msg, len(args.Ops))
	g, gctx := errgroup.WithContext(ctx)
	for i := range args.Ops {
		i, op := i, args.Ops[i]
		g.Go(func() error {
			replies[i] = *d.dispatch(gctx, &op, depth+1)
			return nil
		})
	}
	_ = g.Wait() // per-op failures surface as error-kind replies, not group errors
	return msg.NewReply(req, msg.KindBatchReply, msg.BatchReplyArgs{Replies: replies})
}

func (d *Dispatcher) dispatchForward(ctx context.Context, req *msg.Msg, depth int) (*msg.Msg, error) {
	if depth+1 > d.maxDepth {
		return nil, &MaxDepthExceeded{Depth: depth + 1, Max: d.maxDepth}
	}
	var args msg.ForwardArgs
	if err := req.DecodeArgs(&args); err != nil {
		return nil, err
	}
	if d.forwarder == nil {
		return nil, fmt.Errorf("dispatch: forward requested but no forwarder configured")
	}
	inner, err := d.forwarder.Forward(ctx, args.Addr, &args.Op)
	if err != nil {
		return nil, err
	}
	// The inner reply's parent is the forwarded op's id; re-parent it to
	// the Forward request so the original asker's callback matches.
	parent := req.Header.ID
	out := *inner
	out.Header.ParentID = &parent
	return &out, nil
}

// errReply converts a handler/routing error into one of the three reply
// kinds common to every operation: FileSigChangedReply for a stale sig,
// IoErrorReply for anything implementing cos.IOError, and
// GenericErrorReply otherwise.
func (d *Dispatcher) errReply(req *msg.Msg, err error) *msg.Msg {
	var sigErr *cos.ErrSigMismatch
	if errors.As(err, &sigErr) {
		r, _ := msg.NewReply(req, msg.KindFileSigChangedReply, msg.FileSigChangedReplyArgs{ID: sigErr.ID, Sig: sigErr.CurrentSig})
		return r
	}

	var ioErr cos.IOError
	if errors.As(err, &ioErr) {
		r, _ := msg.NewReply(req, msg.KindIoErrorReply, msg.IoErrorReplyArgs{
			Kind:        ioErr.IOKind(),
			Description: ioErr.Error(),
		})
		return r
	}

	r, _ := msg.NewReply(req, msg.KindGenericErrorReply, msg.GenericErrorReplyArgs{Msg: err.Error()})
	return r
}

func isErrorReply(m *msg.Msg) bool {
	switch m.Kind {
	case msg.KindGenericErrorReply, msg.KindIoErrorReply, msg.KindFileSigChangedReply:
		return true
	default:
		return false
	}
}
