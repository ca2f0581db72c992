package msg

// Kind names for every Request/Reply variant. Composition variants
// (Sequence/Batch/Forward) nest further Msg values in their Ops field;
// the dispatcher enforces the max-depth rule, not the wire format.
const (
	KindHeartbeatRequest = "HeartbeatRequest"
	KindHeartbeatReply   = "HeartbeatReply"

	KindVersionRequest = "VersionRequest"
	KindVersionReply   = "VersionReply"

	KindCapabilitiesRequest = "CapabilitiesRequest"
	KindCapabilitiesReply   = "CapabilitiesReply"

	KindCreateDirRequest = "CreateDirRequest"
	KindDirCreatedReply  = "DirCreatedReply"

	KindRenameDirRequest = "RenameDirRequest"
	KindDirRenamedReply  = "DirRenamedReply"

	KindRemoveDirRequest = "RemoveDirRequest"
	KindDirRemovedReply  = "DirRemovedReply"

	KindListDirContentsRequest = "ListDirContentsRequest"
	KindDirContentsListReply   = "DirContentsListReply"

	KindOpenFileRequest = "OpenFileRequest"
	KindFileOpenedReply = "FileOpenedReply"

	KindCloseFileRequest = "CloseFileRequest"
	KindFileClosedReply  = "FileClosedReply"

	KindRenameUnopenedFileRequest = "RenameUnopenedFileRequest"
	KindUnopenedFileRenamedReply  = "UnopenedFileRenamedReply"

	KindRenameFileRequest = "RenameFileRequest"
	KindFileRenamedReply  = "FileRenamedReply"

	KindRemoveUnopenedFileRequest = "RemoveUnopenedFileRequest"
	KindUnopenedFileRemovedReply  = "UnopenedFileRemovedReply"

	KindRemoveFileRequest = "RemoveFileRequest"
	KindFileRemovedReply  = "FileRemovedReply"

	KindReadFileRequest   = "ReadFileRequest"
	KindFileContentsReply = "FileContentsReply"

	KindWriteFileRequest = "WriteFileRequest"
	KindFileWrittenReply = "FileWrittenReply"

	KindExecProcRequest  = "ExecProcRequest"
	KindProcStartedReply = "ProcStartedReply"

	KindWriteProcStdinRequest = "WriteProcStdinRequest"
	KindProcStdinWrittenReply = "ProcStdinWrittenReply"

	KindReadProcStdoutRequest   = "ReadProcStdoutRequest"
	KindProcStdoutContentsReply = "ProcStdoutContentsReply"

	KindReadProcStderrRequest   = "ReadProcStderrRequest"
	KindProcStderrContentsReply = "ProcStderrContentsReply"

	KindKillProcRequest = "KillProcRequest"
	KindProcKilledReply = "ProcKilledReply"

	KindReadProcStatusRequest = "ReadProcStatusRequest"
	KindProcStatusReply       = "ProcStatusReply"

	KindSequenceRequest = "SequenceRequest"
	KindSequenceReply   = "SequenceReply"

	KindBatchRequest = "BatchRequest"
	KindBatchReply   = "BatchReply"

	KindForwardRequest = "ForwardRequest"

	KindCustomRequest = "CustomRequest"
	KindCustomReply   = "CustomReply"

	KindInternalDebugRequest = "InternalDebugRequest"
	KindInternalDebugReply   = "InternalDebugReply"

	// Error replies, common to every handler.
	KindGenericErrorReply   = "GenericErrorReply"
	KindIoErrorReply        = "IoErrorReply"
	KindFileSigChangedReply = "FileSigChangedReply"
)

// Every Args/Reply struct below carries both a cbor int-key tag (the wire
// format) and a json name tag. The json tags exist solely so dispatch's
// path-rewrite engine has stable field names to address with
// JSONPath-style strings; nothing encodes these structs as JSON over the
// wire.
type (
	HeartbeatArgs      struct{}
	HeartbeatReplyArgs struct{}

	VersionArgs      struct{}
	VersionReplyArgs struct {
		Version string `cbor:"1,keyasint" json:"version"`
	}

	CapabilitiesArgs      struct{}
	CapabilitiesReplyArgs struct {
		Signer            string   `cbor:"1,keyasint" json:"signer"`
		Encryption        string   `cbor:"2,keyasint" json:"encryption"`
		MaxCompositeDepth int      `cbor:"3,keyasint" json:"max_composite_depth"`
		Transports        []string `cbor:"4,keyasint" json:"transports"`
	}

	CreateDirArgs struct {
		Path              string `cbor:"1,keyasint" json:"path"`
		IncludeComponents bool   `cbor:"2,keyasint" json:"include_components"`
	}
	DirCreatedReplyArgs struct {
		Path string `cbor:"1,keyasint" json:"path"`
	}

	RenameDirArgs struct {
		From string `cbor:"1,keyasint" json:"from"`
		To   string `cbor:"2,keyasint" json:"to"`
	}
	DirRenamedReplyArgs struct {
		From string `cbor:"1,keyasint" json:"from"`
		To   string `cbor:"2,keyasint" json:"to"`
	}

	RemoveDirArgs struct {
		Path     string `cbor:"1,keyasint" json:"path"`
		NonEmpty bool   `cbor:"2,keyasint" json:"non_empty"`
	}
	DirRemovedReplyArgs struct {
		Path string `cbor:"1,keyasint" json:"path"`
	}

	ListDirContentsArgs struct {
		Path string `cbor:"1,keyasint" json:"path"`
	}
	DirEntry struct {
		Name  string `cbor:"1,keyasint" json:"name"`
		IsDir bool   `cbor:"2,keyasint" json:"is_dir"`
	}
	DirContentsListReplyArgs struct {
		Path    string     `cbor:"1,keyasint" json:"path"`
		Entries []DirEntry `cbor:"2,keyasint" json:"entries"`
	}

	OpenFileArgs struct {
		Path            string `cbor:"1,keyasint" json:"path"`
		CreateIfMissing bool   `cbor:"2,keyasint" json:"create_if_missing"`
		WriteAccess     bool   `cbor:"3,keyasint" json:"write_access"`
		ReadAccess      bool   `cbor:"4,keyasint" json:"read_access"`
	}
	FileOpenedReplyArgs struct {
		ID    uint32 `cbor:"1,keyasint" json:"id"`
		Sig   uint32 `cbor:"2,keyasint" json:"sig"`
		Path  string `cbor:"3,keyasint" json:"path"`
		Read  bool   `cbor:"4,keyasint" json:"read"`
		Write bool   `cbor:"5,keyasint" json:"write"`
	}

	CloseFileArgs struct {
		ID  uint32 `cbor:"1,keyasint" json:"id"`
		Sig uint32 `cbor:"2,keyasint" json:"sig"`
	}
	FileClosedReplyArgs struct {
		ID uint32 `cbor:"1,keyasint" json:"id"`
	}

	RenameUnopenedFileArgs struct {
		From string `cbor:"1,keyasint" json:"from"`
		To   string `cbor:"2,keyasint" json:"to"`
	}
	UnopenedFileRenamedReplyArgs struct {
		From string `cbor:"1,keyasint" json:"from"`
		To   string `cbor:"2,keyasint" json:"to"`
	}

	RenameFileArgs struct {
		ID  uint32 `cbor:"1,keyasint" json:"id"`
		Sig uint32 `cbor:"2,keyasint" json:"sig"`
		To  string `cbor:"3,keyasint" json:"to"`
	}
	FileRenamedReplyArgs struct {
		ID   uint32 `cbor:"1,keyasint" json:"id"`
		Sig  uint32 `cbor:"2,keyasint" json:"sig"`
		Path string `cbor:"3,keyasint" json:"path"`
	}

	RemoveUnopenedFileArgs struct {
		Path string `cbor:"1,keyasint" json:"path"`
	}
	UnopenedFileRemovedReplyArgs struct {
		Path string `cbor:"1,keyasint" json:"path"`
	}

	RemoveFileArgs struct {
		ID  uint32 `cbor:"1,keyasint" json:"id"`
		Sig uint32 `cbor:"2,keyasint" json:"sig"`
	}
	FileRemovedReplyArgs struct {
		ID uint32 `cbor:"1,keyasint" json:"id"`
	}

	ReadFileArgs struct {
		ID  uint32 `cbor:"1,keyasint" json:"id"`
		Sig uint32 `cbor:"2,keyasint" json:"sig"`
	}
	FileContentsReplyArgs struct {
		ID       uint32 `cbor:"1,keyasint" json:"id"`
		Contents []byte `cbor:"2,keyasint" json:"contents"`
	}

	WriteFileArgs struct {
		ID       uint32 `cbor:"1,keyasint" json:"id"`
		Sig      uint32 `cbor:"2,keyasint" json:"sig"`
		Contents []byte `cbor:"3,keyasint" json:"contents"`
	}
	FileWrittenReplyArgs struct {
		ID  uint32 `cbor:"1,keyasint" json:"id"`
		Sig uint32 `cbor:"2,keyasint" json:"sig"`
	}

	ExecProcArgs struct {
		Command    string   `cbor:"1,keyasint" json:"command"`
		Args       []string `cbor:"2,keyasint" json:"args"`
		Stdin      bool     `cbor:"3,keyasint" json:"stdin"`
		Stdout     bool     `cbor:"4,keyasint" json:"stdout"`
		Stderr     bool     `cbor:"5,keyasint" json:"stderr"`
		CurrentDir *string  `cbor:"6,keyasint,omitempty" json:"current_dir,omitempty"`
	}
	ProcStartedReplyArgs struct {
		ID uint32 `cbor:"1,keyasint" json:"id"`
	}

	WriteProcStdinArgs struct {
		ID    uint32 `cbor:"1,keyasint" json:"id"`
		Input []byte `cbor:"2,keyasint" json:"input"`
	}
	ProcStdinWrittenReplyArgs struct {
		ID uint32 `cbor:"1,keyasint" json:"id"`
	}

	ReadProcStdoutArgs struct {
		ID uint32 `cbor:"1,keyasint" json:"id"`
	}
	ProcStdoutContentsReplyArgs struct {
		ID     uint32 `cbor:"1,keyasint" json:"id"`
		Output []byte `cbor:"2,keyasint" json:"output"`
	}

	ReadProcStderrArgs struct {
		ID uint32 `cbor:"1,keyasint" json:"id"`
	}
	ProcStderrContentsReplyArgs struct {
		ID     uint32 `cbor:"1,keyasint" json:"id"`
		Output []byte `cbor:"2,keyasint" json:"output"`
	}

	KillProcArgs struct {
		ID uint32 `cbor:"1,keyasint" json:"id"`
	}
	ProcKilledReplyArgs struct {
		ID       uint32 `cbor:"1,keyasint" json:"id"`
		ExitCode int    `cbor:"2,keyasint" json:"exit_code"`
	}

	ReadProcStatusArgs struct {
		ID uint32 `cbor:"1,keyasint" json:"id"`
	}
	ProcStatusReplyArgs struct {
		ID       uint32 `cbor:"1,keyasint" json:"id"`
		Alive    bool   `cbor:"2,keyasint" json:"alive"`
		ExitCode *int   `cbor:"3,keyasint,omitempty" json:"exit_code,omitempty"`
	}

	// PathRewriteRule substitutes a scalar extracted from the preceding
	// reply at `Value` into the pending request at `Path`.
	PathRewriteRule struct {
		Path  string `cbor:"1,keyasint" json:"path"`
		Value string `cbor:"2,keyasint" json:"value"`
	}

	SequenceArgs struct {
		Ops   []Msg             `cbor:"1,keyasint" json:"ops"`
		Rules []PathRewriteRule `cbor:"2,keyasint" json:"rules"`
	}
	SequenceReplyArgs struct {
		Replies []Msg `cbor:"1,keyasint" json:"replies"`
	}

	BatchArgs struct {
		Ops []Msg `cbor:"1,keyasint" json:"ops"`
	}
	BatchReplyArgs struct {
		Replies []Msg `cbor:"1,keyasint" json:"replies"`
	}

	ForwardArgs struct {
		Addr string `cbor:"1,keyasint" json:"addr"`
		Op   Msg    `cbor:"2,keyasint" json:"op"`
	}

	CustomArgs struct {
		Data []byte `cbor:"1,keyasint" json:"data"`
	}
	CustomReplyArgs struct {
		Data []byte `cbor:"1,keyasint" json:"data"`
	}

	InternalDebugArgs struct {
		Input []byte `cbor:"1,keyasint" json:"input"`
	}
	InternalDebugReplyArgs struct {
		Echo      []byte `cbor:"1,keyasint" json:"echo"`
		UptimeNS  int64  `cbor:"2,keyasint" json:"uptime_ns"`
		OpenFiles int    `cbor:"3,keyasint" json:"open_files"`
		LiveProcs int    `cbor:"4,keyasint" json:"live_procs"`
	}

	GenericErrorReplyArgs struct {
		Msg string `cbor:"1,keyasint" json:"msg"`
	}
	IoErrorReplyArgs struct {
		Kind        string `cbor:"1,keyasint" json:"kind"`
		Description string `cbor:"2,keyasint" json:"description"`
		OSCode      *int   `cbor:"3,keyasint,omitempty" json:"os_code,omitempty"`
	}
	FileSigChangedReplyArgs struct {
		ID  uint32 `cbor:"1,keyasint" json:"id"`
		Sig uint32 `cbor:"2,keyasint" json:"sig"`
	}
)
