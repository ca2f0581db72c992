// Package fsx implements the FS handler set: a table of open file
// handles guarded by signatures, plus the directory operations that must
// refuse when an open file lives under the target path.
package fsx

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/karrick/godirwalk"

	"github.com/chipsenkbeil/over-there-sub000/cmn/cos"
	"github.com/chipsenkbeil/over-there-sub000/msg"
)

type entry struct {
	id    uint32
	sig   uint32
	path  string
	read  bool
	write bool
	file  *os.File

	touched *cos.TTLValue[struct{}]
}

// Table is the file handle table, guarded by a single mutex whose
// critical sections never span a filesystem syscall.
type Table struct {
	mu  sync.Mutex
	ttl time.Duration

	byID   map[uint32]*entry
	byPath map[string]uint32
}

func NewTable(ttl time.Duration) *Table {
	return &Table{
		ttl:    ttl,
		byID:   make(map[uint32]*entry),
		byPath: make(map[string]uint32),
	}
}

func flagsFor(read, write bool) int {
	switch {
	case read && write:
		return os.O_RDWR
	case write:
		return os.O_WRONLY
	default:
		return os.O_RDONLY
	}
}

// anyOpenUnder reports whether some open file's canonical path equals dir
// or is nested under it; used by the dir/unopened-file operations that
// must refuse in that case.
func (t *Table) anyOpenUnder(dir string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	prefix := dir + string(os.PathSeparator)
	for p := range t.byPath {
		if p == dir || strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

func (t *Table) OpenFile(ctx context.Context, a msg.OpenFileArgs) (*msg.FileOpenedReplyArgs, error) {
	path, err := canonicalize(a.Path)
	if err != nil {
		return nil, cos.NewErrInvalidData("canonicalize %s: %v", a.Path, err)
	}

	t.mu.Lock()
	if id, ok := t.byPath[path]; ok {
		e := t.byID[id]
		if (!a.ReadAccess || e.read) && (!a.WriteAccess || e.write) {
			e.touched.Touch()
			reply := &msg.FileOpenedReplyArgs{ID: e.id, Sig: e.sig, Path: e.path, Read: e.read, Write: e.write}
			t.mu.Unlock()
			return reply, nil
		}
		// Reopen policy: union requested and existing permissions,
		// preserving (id, sig).
		newRead := e.read || a.ReadAccess
		newWrite := e.write || a.WriteAccess
		oldFile := e.file
		t.mu.Unlock()

		f, err := os.OpenFile(path, flagsFor(newRead, newWrite), 0o644)
		if err != nil {
			return nil, mapOSErr(err)
		}
		oldFile.Close()

		t.mu.Lock()
		e.file, e.read, e.write = f, newRead, newWrite
		e.touched.Touch()
		reply := &msg.FileOpenedReplyArgs{ID: e.id, Sig: e.sig, Path: e.path, Read: e.read, Write: e.write}
		t.mu.Unlock()
		return reply, nil
	}
	t.mu.Unlock()

	flags := flagsFor(a.ReadAccess, a.WriteAccess)
	if a.CreateIfMissing {
		flags |= os.O_CREATE
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, mapOSErr(err)
	}

	t.mu.Lock()
	id, sig := cos.RandUint32(), cos.RandUint32()
	e := &entry{id: id, sig: sig, path: path, read: a.ReadAccess, write: a.WriteAccess, file: f, touched: cos.NewTTLValue(struct{}{})}
	t.byID[id] = e
	t.byPath[path] = id
	t.mu.Unlock()

	return &msg.FileOpenedReplyArgs{ID: id, Sig: sig, Path: path, Read: a.ReadAccess, Write: a.WriteAccess}, nil
}

func (t *Table) CloseFile(ctx context.Context, a msg.CloseFileArgs) (*msg.FileClosedReplyArgs, error) {
	t.mu.Lock()
	e, ok := t.byID[a.ID]
	if !ok {
		t.mu.Unlock()
		return nil, cos.NewErrNotFound("file %d", a.ID)
	}
	if e.sig != a.Sig {
		t.mu.Unlock()
		return nil, cos.NewErrSigMismatch(a.ID, e.sig)
	}
	delete(t.byID, a.ID)
	delete(t.byPath, e.path)
	t.mu.Unlock()

	e.file.Close()
	return &msg.FileClosedReplyArgs{ID: a.ID}, nil
}

func (t *Table) ReadFile(ctx context.Context, a msg.ReadFileArgs) (*msg.FileContentsReplyArgs, error) {
	t.mu.Lock()
	e, ok := t.byID[a.ID]
	if !ok {
		t.mu.Unlock()
		return nil, cos.NewErrNotFound("file %d", a.ID)
	}
	if e.sig != a.Sig {
		t.mu.Unlock()
		return nil, cos.NewErrSigMismatch(a.ID, e.sig)
	}
	if !e.read {
		t.mu.Unlock()
		return nil, cos.NewErrPermission(e.path, "read")
	}
	f := e.file
	e.touched.Touch()
	t.mu.Unlock()

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, mapOSErr(err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, mapOSErr(err)
	}
	return &msg.FileContentsReplyArgs{ID: a.ID, Contents: data}, nil
}

func (t *Table) WriteFile(ctx context.Context, a msg.WriteFileArgs) (*msg.FileWrittenReplyArgs, error) {
	t.mu.Lock()
	e, ok := t.byID[a.ID]
	if !ok {
		t.mu.Unlock()
		return nil, cos.NewErrNotFound("file %d", a.ID)
	}
	if e.sig != a.Sig {
		t.mu.Unlock()
		return nil, cos.NewErrSigMismatch(a.ID, e.sig)
	}
	if !e.write {
		t.mu.Unlock()
		return nil, cos.NewErrPermission(e.path, "write")
	}
	f := e.file
	t.mu.Unlock()

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, mapOSErr(err)
	}
	if err := f.Truncate(0); err != nil {
		return nil, mapOSErr(err)
	}
	if _, err := f.Write(a.Contents); err != nil {
		return nil, mapOSErr(err)
	}

	t.mu.Lock()
	e.sig = cos.RandUint32() // sig monotonicity on every successful mutation
	e.touched.Touch()
	newSig := e.sig
	t.mu.Unlock()

	return &msg.FileWrittenReplyArgs{ID: a.ID, Sig: newSig}, nil
}

func (t *Table) RenameFile(ctx context.Context, a msg.RenameFileArgs) (*msg.FileRenamedReplyArgs, error) {
	to, err := canonicalize(a.To)
	if err != nil {
		return nil, cos.NewErrInvalidData("canonicalize %s: %v", a.To, err)
	}

	t.mu.Lock()
	e, ok := t.byID[a.ID]
	if !ok {
		t.mu.Unlock()
		return nil, cos.NewErrNotFound("file %d", a.ID)
	}
	if e.sig != a.Sig {
		t.mu.Unlock()
		return nil, cos.NewErrSigMismatch(a.ID, e.sig)
	}
	from := e.path
	t.mu.Unlock()

	if err := os.Rename(from, to); err != nil {
		return nil, mapOSErr(err)
	}

	t.mu.Lock()
	delete(t.byPath, from)
	e.path = to
	t.byPath[to] = e.id
	e.sig = cos.RandUint32()
	e.touched.Touch()
	newSig := e.sig
	t.mu.Unlock()

	return &msg.FileRenamedReplyArgs{ID: a.ID, Sig: newSig, Path: to}, nil
}

func (t *Table) RemoveFile(ctx context.Context, a msg.RemoveFileArgs) (*msg.FileRemovedReplyArgs, error) {
	t.mu.Lock()
	e, ok := t.byID[a.ID]
	if !ok {
		t.mu.Unlock()
		return nil, cos.NewErrNotFound("file %d", a.ID)
	}
	if e.sig != a.Sig {
		t.mu.Unlock()
		return nil, cos.NewErrSigMismatch(a.ID, e.sig)
	}
	delete(t.byID, a.ID)
	delete(t.byPath, e.path)
	t.mu.Unlock()

	e.file.Close()
	if err := os.Remove(e.path); err != nil {
		return nil, mapOSErr(err)
	}
	return &msg.FileRemovedReplyArgs{ID: a.ID}, nil
}

func (t *Table) RenameUnopenedFile(ctx context.Context, a msg.RenameUnopenedFileArgs) (*msg.UnopenedFileRenamedReplyArgs, error) {
	from, err := canonicalize(a.From)
	if err != nil {
		return nil, cos.NewErrInvalidData("canonicalize %s: %v", a.From, err)
	}
	to, err := canonicalize(a.To)
	if err != nil {
		return nil, cos.NewErrInvalidData("canonicalize %s: %v", a.To, err)
	}
	if t.anyOpenUnder(from) {
		return nil, cos.NewErrInvalidData("refusing to rename %s: an open file is under it", from)
	}
	if err := os.Rename(from, to); err != nil {
		return nil, mapOSErr(err)
	}
	return &msg.UnopenedFileRenamedReplyArgs{From: from, To: to}, nil
}

func (t *Table) RemoveUnopenedFile(ctx context.Context, a msg.RemoveUnopenedFileArgs) (*msg.UnopenedFileRemovedReplyArgs, error) {
	path, err := canonicalize(a.Path)
	if err != nil {
		return nil, cos.NewErrInvalidData("canonicalize %s: %v", a.Path, err)
	}
	if t.anyOpenUnder(path) {
		return nil, cos.NewErrInvalidData("refusing to remove %s: an open file is under it", path)
	}
	if err := os.Remove(path); err != nil {
		return nil, mapOSErr(err)
	}
	return &msg.UnopenedFileRemovedReplyArgs{Path: path}, nil
}

func (t *Table) CreateDir(ctx context.Context, a msg.CreateDirArgs) (*msg.DirCreatedReplyArgs, error) {
	path, err := canonicalize(a.Path)
	if err != nil {
		return nil, cos.NewErrInvalidData("canonicalize %s: %v", a.Path, err)
	}
	if a.IncludeComponents {
		err = os.MkdirAll(path, 0o755)
	} else {
		err = os.Mkdir(path, 0o755)
	}
	if err != nil {
		return nil, mapOSErr(err)
	}
	return &msg.DirCreatedReplyArgs{Path: path}, nil
}

func (t *Table) RenameDir(ctx context.Context, a msg.RenameDirArgs) (*msg.DirRenamedReplyArgs, error) {
	from, err := canonicalize(a.From)
	if err != nil {
		return nil, cos.NewErrInvalidData("canonicalize %s: %v", a.From, err)
	}
	to, err := canonicalize(a.To)
	if err != nil {
		return nil, cos.NewErrInvalidData("canonicalize %s: %v", a.To, err)
	}
	if t.anyOpenUnder(from) {
		return nil, cos.NewErrInvalidData("refusing to rename %s: an open file is under it", from)
	}
	if err := os.Rename(from, to); err != nil {
		return nil, mapOSErr(err)
	}
	return &msg.DirRenamedReplyArgs{From: from, To: to}, nil
}

func (t *Table) RemoveDir(ctx context.Context, a msg.RemoveDirArgs) (*msg.DirRemovedReplyArgs, error) {
	path, err := canonicalize(a.Path)
	if err != nil {
		return nil, cos.NewErrInvalidData("canonicalize %s: %v", a.Path, err)
	}
	if t.anyOpenUnder(path) {
		return nil, cos.NewErrInvalidData("refusing to remove %s: an open file is under it", path)
	}
	if a.NonEmpty {
		err = os.RemoveAll(path)
	} else {
		err = os.Remove(path)
	}
	if err != nil {
		return nil, mapOSErr(err)
	}
	return &msg.DirRemovedReplyArgs{Path: path}, nil
}

func (t *Table) ListDirContents(ctx context.Context, a msg.ListDirContentsArgs) (*msg.DirContentsListReplyArgs, error) {
	path, err := canonicalize(a.Path)
	if err != nil {
		return nil, cos.NewErrInvalidData("canonicalize %s: %v", a.Path, err)
	}
	dirents, err := godirwalk.ReadDirents(path, nil)
	if err != nil {
		return nil, mapOSErr(err)
	}
	entries := make([]msg.DirEntry, 0, len(dirents))
	for _, de := range dirents {
		entries = append(entries, msg.DirEntry{Name: de.Name(), IsDir: de.IsDir()})
	}
	return &msg.DirContentsListReplyArgs{Path: path, Entries: entries}, nil
}

// EvictExpired closes every handle whose last touch is older than the
// table's ttl, returning the count closed; called by the server's cleanup
// loop.
func (t *Table) EvictExpired() int {
	t.mu.Lock()
	var stale []*entry
	for id, e := range t.byID {
		if e.touched.Expired(t.ttl) {
			stale = append(stale, e)
			delete(t.byID, id)
			delete(t.byPath, e.path)
		}
	}
	t.mu.Unlock()

	for _, e := range stale {
		e.file.Close()
	}
	return len(stale)
}

// OpenCount reports the number of currently open handles; used by the
// InternalDebug reply.
func (t *Table) OpenCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byID)
}
