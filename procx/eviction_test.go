package procx

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/chipsenkbeil/over-there-sub000/msg"
)

var _ = Describe("Table eviction", func() {
	ctx := context.Background()

	It("keeps an alive process within its alive-untouched budget", func() {
		table := NewTable(time.Hour, time.Millisecond)
		cmdName, args := shellCmd("sleep 5")

		started, err := table.ExecProc(ctx, msg.ExecProcArgs{Command: cmdName, Args: args})
		Expect(err).NotTo(HaveOccurred())
		defer table.KillProc(ctx, msg.KillProcArgs{ID: started.ID})

		// The dead TTL is tiny, but the process is alive, so the long
		// alive budget applies and nothing is reaped.
		time.Sleep(10 * time.Millisecond)
		Expect(table.EvictExpired()).To(Equal(0))
		Expect(table.LiveCount()).To(Equal(1))
	})

	It("switches to the short dead-untouched budget once the process exits", func() {
		table := NewTable(time.Hour, 150*time.Millisecond)
		cmdName, args := shellCmd("true")

		started, err := table.ExecProc(ctx, msg.ExecProcArgs{Command: cmdName, Args: args})
		Expect(err).NotTo(HaveOccurred())

		Eventually(func() bool {
			status, err := table.ReadProcStatus(ctx, msg.ReadProcStatusArgs{ID: started.ID})
			return err == nil && !status.Alive
		}, "2s", "10ms").Should(BeTrue())

		// Within the dead grace period the entry survives, so a client
		// can still collect status and final output.
		Expect(table.EvictExpired()).To(Equal(0))

		time.Sleep(200 * time.Millisecond)
		Expect(table.EvictExpired()).To(Equal(1))
		Expect(table.LiveCount()).To(Equal(0))
	})

	It("resets the budget when stdio is read", func() {
		table := NewTable(time.Hour, 200*time.Millisecond)
		cmdName, args := shellCmd("echo out")

		started, err := table.ExecProc(ctx, msg.ExecProcArgs{Command: cmdName, Args: args, Stdout: true})
		Expect(err).NotTo(HaveOccurred())

		Eventually(func() bool {
			status, err := table.ReadProcStatus(ctx, msg.ReadProcStatusArgs{ID: started.ID})
			return err == nil && !status.Alive
		}, "2s", "10ms").Should(BeTrue())

		// Touching the handle by reading stdout keeps it alive past the
		// point where an untouched handle would have been reaped.
		time.Sleep(120 * time.Millisecond)
		_, err = table.ReadProcStdout(ctx, msg.ReadProcStdoutArgs{ID: started.ID})
		Expect(err).NotTo(HaveOccurred())

		time.Sleep(120 * time.Millisecond)
		Expect(table.EvictExpired()).To(Equal(0))
	})

	It("kills alive processes it evicts", func() {
		table := NewTable(time.Millisecond, time.Millisecond)
		cmdName, args := shellCmd("sleep 30")

		_, err := table.ExecProc(ctx, msg.ExecProcArgs{Command: cmdName, Args: args})
		Expect(err).NotTo(HaveOccurred())

		time.Sleep(10 * time.Millisecond)
		Expect(table.EvictExpired()).To(Equal(1))
		Expect(table.LiveCount()).To(Equal(0))
	})
})
