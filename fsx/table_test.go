package fsx

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/chipsenkbeil/over-there-sub000/cmn/cos"
	"github.com/chipsenkbeil/over-there-sub000/msg"
)

var _ = Describe("Table", func() {
	var (
		dir string
		t   *Table
		ctx = context.Background()
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		t = NewTable(time.Hour)
	})

	It("rotates sig on every successful write and rejects a stale sig", func() {
		path := filepath.Join(dir, "f.txt")
		Expect(os.WriteFile(path, []byte("hello"), 0o644)).To(Succeed())

		opened, err := t.OpenFile(ctx, msg.OpenFileArgs{Path: path, ReadAccess: true, WriteAccess: true})
		Expect(err).NotTo(HaveOccurred())
		originalSig := opened.Sig

		written, err := t.WriteFile(ctx, msg.WriteFileArgs{ID: opened.ID, Sig: opened.Sig, Contents: []byte("world")})
		Expect(err).NotTo(HaveOccurred())
		Expect(written.Sig).NotTo(Equal(originalSig))

		_, err = t.WriteFile(ctx, msg.WriteFileArgs{ID: opened.ID, Sig: originalSig, Contents: []byte("stale")})
		Expect(err).To(HaveOccurred())
		Expect(cos.IsErrSigMismatch(err)).To(BeTrue())

		contents, err := t.ReadFile(ctx, msg.ReadFileArgs{ID: opened.ID, Sig: written.Sig})
		Expect(err).NotTo(HaveOccurred())
		Expect(string(contents.Contents)).To(Equal("world"))
	})

	It("reopens with the union of permissions while preserving id and sig", func() {
		path := filepath.Join(dir, "g.txt")
		Expect(os.WriteFile(path, []byte("x"), 0o644)).To(Succeed())

		first, err := t.OpenFile(ctx, msg.OpenFileArgs{Path: path, ReadAccess: true})
		Expect(err).NotTo(HaveOccurred())

		second, err := t.OpenFile(ctx, msg.OpenFileArgs{Path: path, WriteAccess: true})
		Expect(err).NotTo(HaveOccurred())

		Expect(second.ID).To(Equal(first.ID))
		Expect(second.Sig).To(Equal(first.Sig))
		Expect(second.Read).To(BeTrue())
		Expect(second.Write).To(BeTrue())
	})

	It("refuses to rename a directory containing an open file", func() {
		sub := filepath.Join(dir, "a")
		Expect(os.Mkdir(sub, 0o755)).To(Succeed())
		path := filepath.Join(sub, "f.txt")
		Expect(os.WriteFile(path, []byte("x"), 0o644)).To(Succeed())

		_, err := t.OpenFile(ctx, msg.OpenFileArgs{Path: path, ReadAccess: true})
		Expect(err).NotTo(HaveOccurred())

		_, err = t.RenameDir(ctx, msg.RenameDirArgs{From: sub, To: filepath.Join(dir, "b")})
		Expect(err).To(HaveOccurred())
		var invalidData *cos.ErrInvalidData
		Expect(err).To(BeAssignableToTypeOf(invalidData))

		_, statErr := os.Stat(sub)
		Expect(statErr).NotTo(HaveOccurred())
	})

	It("evicts handles past their ttl", func() {
		path := filepath.Join(dir, "h.txt")
		Expect(os.WriteFile(path, []byte("x"), 0o644)).To(Succeed())
		t.ttl = time.Millisecond

		_, err := t.OpenFile(ctx, msg.OpenFileArgs{Path: path, ReadAccess: true})
		Expect(err).NotTo(HaveOccurred())
		Expect(t.OpenCount()).To(Equal(1))

		time.Sleep(5 * time.Millisecond)
		Expect(t.EvictExpired()).To(Equal(1))
		Expect(t.OpenCount()).To(Equal(0))
	})
})
