package dispatch

import "github.com/chipsenkbeil/over-there-sub000/msg"

// newArgs returns a fresh zero-value pointer to the concrete Args struct
// registered for kind, so generic code (the path-rewrite engine) can decode
// CBOR into it and re-marshal it as JSON without a type switch at every
// call site. Every Request/Reply Kind from msg.variants.go has an entry.
func newArgs(kind string) (any, bool) {
	switch kind {
	case msg.KindHeartbeatRequest:
		return &msg.HeartbeatArgs{}, true
	case msg.KindHeartbeatReply:
		return &msg.HeartbeatReplyArgs{}, true
	case msg.KindVersionRequest:
		return &msg.VersionArgs{}, true
	case msg.KindVersionReply:
		return &msg.VersionReplyArgs{}, true
	case msg.KindCapabilitiesRequest:
		return &msg.CapabilitiesArgs{}, true
	case msg.KindCapabilitiesReply:
		return &msg.CapabilitiesReplyArgs{}, true
	case msg.KindCreateDirRequest:
		return &msg.CreateDirArgs{}, true
	case msg.KindDirCreatedReply:
		return &msg.DirCreatedReplyArgs{}, true
	case msg.KindRenameDirRequest:
		return &msg.RenameDirArgs{}, true
	case msg.KindDirRenamedReply:
		return &msg.DirRenamedReplyArgs{}, true
	case msg.KindRemoveDirRequest:
		return &msg.RemoveDirArgs{}, true
	case msg.KindDirRemovedReply:
		return &msg.DirRemovedReplyArgs{}, true
	case msg.KindListDirContentsRequest:
		return &msg.ListDirContentsArgs{}, true
	case msg.KindDirContentsListReply:
		return &msg.DirContentsListReplyArgs{}, true
	case msg.KindOpenFileRequest:
		return &msg.OpenFileArgs{}, true
	case msg.KindFileOpenedReply:
		return &msg.FileOpenedReplyArgs{}, true
	case msg.KindCloseFileRequest:
		return &msg.CloseFileArgs{}, true
	case msg.KindFileClosedReply:
		return &msg.FileClosedReplyArgs{}, true
	case msg.KindRenameUnopenedFileRequest:
		return &msg.RenameUnopenedFileArgs{}, true
	case msg.KindUnopenedFileRenamedReply:
		return &msg.UnopenedFileRenamedReplyArgs{}, true
	case msg.KindRenameFileRequest:
		return &msg.RenameFileArgs{}, true
	case msg.KindFileRenamedReply:
		return &msg.FileRenamedReplyArgs{}, true
	case msg.KindRemoveUnopenedFileRequest:
		return &msg.RemoveUnopenedFileArgs{}, true
	case msg.KindUnopenedFileRemovedReply:
		return &msg.UnopenedFileRemovedReplyArgs{}, true
	case msg.KindRemoveFileRequest:
		return &msg.RemoveFileArgs{}, true
	case msg.KindFileRemovedReply:
		return &msg.FileRemovedReplyArgs{}, true
	case msg.KindReadFileRequest:
		return &msg.ReadFileArgs{}, true
	case msg.KindFileContentsReply:
		return &msg.FileContentsReplyArgs{}, true
	case msg.KindWriteFileRequest:
		return &msg.WriteFileArgs{}, true
	case msg.KindFileWrittenReply:
		return &msg.FileWrittenReplyArgs{}, true
	case msg.KindExecProcRequest:
		return &msg.ExecProcArgs{}, true
	case msg.KindProcStartedReply:
		return &msg.ProcStartedReplyArgs{}, true
	case msg.KindWriteProcStdinRequest:
		return &msg.WriteProcStdinArgs{}, true
	case msg.KindProcStdinWrittenReply:
		return &msg.ProcStdinWrittenReplyArgs{}, true
	case msg.KindReadProcStdoutRequest:
		return &msg.ReadProcStdoutArgs{}, true
	case msg.KindProcStdoutContentsReply:
		return &msg.ProcStdoutContentsReplyArgs{}, true
	case msg.KindReadProcStderrRequest:
		return &msg.ReadProcStderrArgs{}, true
	case msg.KindProcStderrContentsReply:
		return &msg.ProcStderrContentsReplyArgs{}, true
	case msg.KindKillProcRequest:
		return &msg.KillProcArgs{}, true
	case msg.KindProcKilledReply:
		return &msg.ProcKilledReplyArgs{}, true
	case msg.KindReadProcStatusRequest:
		return &msg.ReadProcStatusArgs{}, true
	case msg.KindProcStatusReply:
		return &msg.ProcStatusReplyArgs{}, true
	case msg.KindSequenceRequest:
		return &msg.SequenceArgs{}, true
	case msg.KindSequenceReply:
		return &msg.SequenceReplyArgs{}, true
	case msg.KindBatchRequest:
		return &msg.BatchArgs{}, true
	case msg.KindBatchReply:
		return &msg.BatchReplyArgs{}, true
	case msg.KindForwardRequest:
		return &msg.ForwardArgs{}, true
	case msg.KindCustomRequest:
		return &msg.CustomArgs{}, true
	case msg.KindCustomReply:
		return &msg.CustomReplyArgs{}, true
	case msg.KindInternalDebugRequest:
		return &msg.InternalDebugArgs{}, true
	case msg.KindInternalDebugReply:
		return &msg.InternalDebugReplyArgs{}, true
	case msg.KindGenericErrorReply:
		return &msg.GenericErrorReplyArgs{}, true
	case msg.KindIoErrorReply:
		return &msg.IoErrorReplyArgs{}, true
	case msg.KindFileSigChangedReply:
		return &msg.FileSigChangedReplyArgs{}, true
	default:
		return nil, false
	}
}
