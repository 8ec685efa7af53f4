package pane_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/joe/dual-pane/internal/pane"
	"github.com/joe/dual-pane/internal/transfer"
	"github.com/joe/dual-pane/pkg/fileops"
	"github.com/joe/dual-pane/pkg/filesystem"
)

// gatedFS holds every Open until the gate is closed.
type gatedFS struct {
	*filesystem.MockFileSystem
	gate    chan struct{}
	entered chan string
}

func (g *gatedFS) Open(path string) (filesystem.File, error) {
	select {
	case g.entered <- path:
	default:
	}
	<-g.gate

	return g.MockFileSystem.Open(path)
}

func awaitDone(c *pane.Coordinator) pane.Update {
	deadline := time.After(5 * time.Second)

	for {
		select {
		case update, ok := <-c.Updates():
			Expect(ok).To(BeTrue(), "updates closed before completion")

			if update.Done {
				return update
			}
		case <-deadline:
			Fail("transfer did not complete")
			return pane.Update{}
		}
	}
}

var _ = Describe("Coordinator", func() {
	var (
		mock        *filesystem.MockFileSystem
		coordinator *pane.Coordinator
		left, right *pane.State
	)

	newCoordinator := func(fs filesystem.FileSystem) {
		left = pane.NewState(pane.Left, fs)
		right = pane.NewState(pane.Right, fs)
		engine := transfer.NewEngine(fileops.NewFileOps(fs, 0), zerolog.Nop())
		coordinator = pane.NewCoordinator(left, right, engine, zerolog.Nop())
	}

	BeforeEach(func() {
		now := time.Now()
		mock = filesystem.NewMockFileSystem()
		mock.AddFile("/src/report.txt", []byte("0123456789"), now)
		mock.AddFile("/src/data/a.bin", nil, now)
		mock.AddFile("/src/data/sub/b.bin", []byte("bbbbb"), now)
		mock.AddDir("/dst", now)
		newCoordinator(mock)
	})

	AfterEach(func() {
		coordinator.Close()
	})

	Describe("preconditions", func() {
		It("rejects an empty selection", func() {
			Expect(left.SetRoot("/src")).To(Succeed())
			Expect(right.SetRoot("/dst")).To(Succeed())

			_, err := coordinator.Copy(pane.Left)
			Expect(errors.Is(err, transfer.ErrPreconditionFailed)).To(BeTrue())
		})

		It("rejects a sibling without a directory", func() {
			Expect(left.SetRoot("/src")).To(Succeed())
			Expect(left.Select("report.txt")).To(Succeed())

			_, err := coordinator.Move(pane.Left)
			Expect(errors.Is(err, transfer.ErrPreconditionFailed)).To(BeTrue())
			Expect(mock.Exists("/src/report.txt")).To(BeTrue())
		})

		It("reports unknown transfers as not cancelled", func() {
			Expect(coordinator.Cancel("t999")).To(BeFalse())
		})
	})

	Describe("copy", func() {
		BeforeEach(func() {
			Expect(left.SetRoot("/src")).To(Succeed())
			Expect(right.SetRoot("/dst")).To(Succeed())
			Expect(left.Select("report.txt")).To(Succeed())
			Expect(left.Select("data")).To(Succeed())
		})

		It("transfers in the background and refreshes the destination", func() {
			id, err := coordinator.Copy(pane.Left)
			Expect(err).ToNot(HaveOccurred())
			Expect(id).ToNot(BeEmpty())

			done := awaitDone(coordinator)
			Expect(done.TransferID).To(Equal(id))
			Expect(done.Pane).To(Equal(pane.Right))
			Expect(done.Source).To(Equal(pane.Left))
			Expect(done.Err).ToNot(HaveOccurred())
			Expect(done.Outcome.Succeeded).To(Equal(3))
			Expect(done.Outcome.Failed).To(BeEmpty())

			Expect(names(right.Entries())).To(Equal([]string{"data/", "report.txt"}))
			Expect(right.Progress().IsZero()).To(BeTrue())
			Expect(left.Selection()).To(HaveLen(2), "copy keeps the selection")
			Expect(coordinator.Running()).To(BeEmpty())
		})

		It("streams progress for the destination pane before completion", func() {
			_, err := coordinator.Copy(pane.Left)
			Expect(err).ToNot(HaveOccurred())

			var sawProgress bool

			Eventually(func() bool {
				update := <-coordinator.Updates()
				if !update.Done {
					sawProgress = true
					Expect(update.Pane).To(Equal(pane.Right))
					Expect(update.Progress.Total).To(Equal(uint64(3)))
				}

				return update.Done
			}).WithTimeout(5 * time.Second).Should(BeTrue())

			Expect(sawProgress).To(BeTrue())
		})
	})

	Describe("move", func() {
		It("removes sources and prunes the selection", func() {
			Expect(left.SetRoot("/src")).To(Succeed())
			Expect(right.SetRoot("/dst")).To(Succeed())
			Expect(left.Select("report.txt")).To(Succeed())

			_, err := coordinator.Move(pane.Left)
			Expect(err).ToNot(HaveOccurred())

			done := awaitDone(coordinator)
			Expect(done.Mode).To(Equal(transfer.Move))
			Expect(done.Outcome.Succeeded).To(Equal(1))

			Expect(mock.Exists("/src/report.txt")).To(BeFalse())
			Expect(mock.Exists("/dst/report.txt")).To(BeTrue())
			Expect(left.Selection()).To(BeEmpty())
			Expect(names(left.Entries())).To(Equal([]string{"data/"}))
		})

		It("works from right to left", func() {
			Expect(left.SetRoot("/dst")).To(Succeed())
			Expect(right.SetRoot("/src/data")).To(Succeed())
			Expect(right.Select("sub")).To(Succeed())

			_, err := coordinator.Move(pane.Right)
			Expect(err).ToNot(HaveOccurred())

			done := awaitDone(coordinator)
			Expect(done.Pane).To(Equal(pane.Left))
			Expect(mock.Exists("/dst/sub/b.bin")).To(BeTrue())
		})
	})

	Describe("busy panes and cancellation", func() {
		var gated *gatedFS

		BeforeEach(func() {
			coordinator.Close()

			gated = &gatedFS{MockFileSystem: mock, gate: make(chan struct{}), entered: make(chan string, 1)}
			newCoordinator(gated)

			Expect(left.SetRoot("/src")).To(Succeed())
			Expect(right.SetRoot("/dst")).To(Succeed())
			Expect(left.Select("report.txt")).To(Succeed())
		})

		It("rejects a second transfer touching either pane", func() {
			id, err := coordinator.Copy(pane.Left)
			Expect(err).ToNot(HaveOccurred())
			Eventually(gated.entered).WithTimeout(5 * time.Second).Should(Receive())

			holder, busy := right.Busy()
			Expect(busy).To(BeTrue())
			Expect(holder).To(Equal(id))

			_, err = coordinator.Copy(pane.Left)
			Expect(err).To(MatchError(pane.ErrPaneBusy))

			mock.AddFile("/dst/other.txt", []byte("o"), time.Now())
			Expect(right.Refresh()).To(Succeed())
			Expect(right.Select("other.txt")).To(Succeed())

			_, err = coordinator.Copy(pane.Right)
			Expect(err).To(MatchError(pane.ErrPaneBusy))

			close(gated.gate)

			done := awaitDone(coordinator)
			Expect(done.Outcome.Succeeded).To(Equal(1))

			_, busy = right.Busy()
			Expect(busy).To(BeFalse())
		})

		It("cancels a running transfer", func() {
			id, err := coordinator.Copy(pane.Left)
			Expect(err).ToNot(HaveOccurred())
			Eventually(gated.entered).WithTimeout(5 * time.Second).Should(Receive())

			Expect(coordinator.Cancel(id)).To(BeTrue())
			close(gated.gate)

			done := awaitDone(coordinator)
			Expect(done.Outcome.Cancelled).To(BeTrue())
			Expect(done.Outcome.Succeeded).To(BeZero())
			Expect(done.Outcome.Failed).To(HaveLen(1))
			Expect(done.Outcome.Failed[0].Reason).To(MatchError(transfer.ErrCancelled))
		})

		It("closes the update stream after cancelling on shutdown", func() {
			_, err := coordinator.Copy(pane.Left)
			Expect(err).ToNot(HaveOccurred())
			Eventually(gated.entered).WithTimeout(5 * time.Second).Should(Receive())

			go func() {
				defer GinkgoRecover()
				time.Sleep(10 * time.Millisecond)
				close(gated.gate)
			}()

			coordinator.Close()
			Eventually(coordinator.Updates()).Should(BeClosed())

			_, err = coordinator.Copy(pane.Left)
			Expect(err).To(HaveOccurred())
		})
	})
})
