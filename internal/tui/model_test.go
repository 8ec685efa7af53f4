package tui_test

import (
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/joe/dual-pane/internal/pane"
	"github.com/joe/dual-pane/internal/transfer"
	"github.com/joe/dual-pane/internal/tui"
	"github.com/joe/dual-pane/internal/tui/shared"
	"github.com/joe/dual-pane/pkg/fileops"
	"github.com/joe/dual-pane/pkg/filesystem"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(m tui.Model, keys ...string) tui.Model {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(tui.Model)
	}

	return m
}

func send(m tui.Model, msg tea.Msg) tui.Model {
	next, _ := m.Update(msg)
	return next.(tui.Model)
}

func nextDone(c *pane.Coordinator) pane.Update {
	deadline := time.After(5 * time.Second)

	for {
		select {
		case update := <-c.Updates():
			if update.Done {
				return update
			}
		case <-deadline:
			Fail("transfer did not complete")
			return pane.Update{}
		}
	}
}

var _ = Describe("Model", func() {
	var (
		mock        *filesystem.MockFileSystem
		coordinator *pane.Coordinator
		model       tui.Model
	)

	BeforeEach(func() {
		now := time.Now()
		mock = filesystem.NewMockFileSystem()
		mock.AddFile("/src/report.txt", []byte("0123456789"), now)
		mock.AddFile("/src/notes.md", []byte("n"), now)
		mock.AddFile("/src/.hidden", []byte("h"), now)
		mock.AddFile("/src/data/a.bin", []byte("a"), now)
		mock.AddDir("/dst", now)

		left := pane.NewState(pane.Left, mock)
		right := pane.NewState(pane.Right, mock)
		Expect(left.SetRoot("/src")).To(Succeed())
		Expect(right.SetRoot("/dst")).To(Succeed())

		engine := transfer.NewEngine(fileops.NewFileOps(mock, 0), zerolog.Nop())
		coordinator = pane.NewCoordinator(left, right, engine, zerolog.Nop())
		model = tui.NewModel(coordinator, zerolog.Nop())
		model = send(model, tea.WindowSizeMsg{Width: 120, Height: 30})
	})

	AfterEach(func() {
		coordinator.Close()
	})

	It("switches focus with tab", func() {
		Expect(model.Active()).To(Equal(pane.Left))
		model = press(model, "tab")
		Expect(model.Active()).To(Equal(pane.Right))
		model = press(model, "tab")
		Expect(model.Active()).To(Equal(pane.Left))
	})

	It("keeps the cursor inside the listing", func() {
		// data/, notes.md, report.txt
		model = press(model, "up")
		Expect(model.Cursor(pane.Left)).To(Equal(0))

		model = press(model, "down", "down", "down", "down")
		Expect(model.Cursor(pane.Left)).To(Equal(2))

		model = press(model, "g")
		Expect(model.Cursor(pane.Left)).To(Equal(0))
	})

	It("enters a directory and returns to it", func() {
		model = press(model, "enter")
		Expect(coordinator.Pane(pane.Left).Root()).To(Equal("/src/data"))
		Expect(model.Cursor(pane.Left)).To(Equal(0))

		model = press(model, "down", "backspace")
		Expect(coordinator.Pane(pane.Left).Root()).To(Equal("/src"))
		Expect(model.Cursor(pane.Left)).To(Equal(0))
		Expect(model.View()).To(ContainSubstring("data/"))
	})

	It("selects with space and shows the summary", func() {
		model = press(model, "down", " ")

		Expect(coordinator.Pane(pane.Left).IsSelected("/src/notes.md")).To(BeTrue())
		Expect(model.Cursor(pane.Left)).To(Equal(2))
		Expect(model.View()).To(ContainSubstring("1 selected (1 files, 0 folders)"))

		model = press(model, "a")
		Expect(coordinator.Pane(pane.Left).Selection()).To(HaveLen(3))

		model = press(model, "u")
		Expect(coordinator.Pane(pane.Left).Selection()).To(BeEmpty())
		Expect(model.View()).To(ContainSubstring("nothing selected"))
	})

	It("reports a refused transfer in the status line", func() {
		model = press(model, "c")

		Expect(model.Status()).To(ContainSubstring("nothing selected"))
		Expect(coordinator.Running()).To(BeEmpty())
	})

	It("copies the selection and flashes the destination", func() {
		model = press(model, "G", " ", "c")
		Expect(model.Status()).To(ContainSubstring("copy of 1 item(s) to right pane started"))

		done := nextDone(coordinator)
		Expect(done.Pane).To(Equal(pane.Right))

		model = send(model, shared.PaneUpdateMsg{Update: done})
		Expect(model.Flashing(pane.Right)).To(BeTrue())
		Expect(model.Status()).To(ContainSubstring("copy done: 1 files"))
		Expect(model.LastOutcome()).To(BeNil())
		Expect(model.View()).To(ContainSubstring("Done"))
		Expect(mock.Exists("/dst/report.txt")).To(BeTrue())

		model = send(model, shared.FlashExpiredMsg{Pane: pane.Right, TransferID: "stale"})
		Expect(model.Flashing(pane.Right)).To(BeTrue())

		model = send(model, shared.FlashExpiredMsg{Pane: pane.Right, TransferID: done.TransferID})
		Expect(model.Flashing(pane.Right)).To(BeFalse())
	})

	It("shows a grouped report when files fail", func() {
		mock.Fail(filesystem.OpOpen, "/src/report.txt", os.ErrPermission)

		model = press(model, "G", " ", "c")
		model = send(model, shared.PaneUpdateMsg{Update: nextDone(coordinator)})

		Expect(model.LastOutcome()).ToNot(BeNil())
		Expect(model.LastOutcome().Failed).To(HaveLen(1))
		Expect(model.Status()).To(ContainSubstring("finished with problems"))
		Expect(model.View()).To(ContainSubstring("Permission denied"))
		Expect(model.View()).To(ContainSubstring("/src/report.txt"))
	})

	It("moves the selection out of the source pane", func() {
		model = press(model, "down", " ", "m")
		model = send(model, shared.PaneUpdateMsg{Update: nextDone(coordinator)})

		Expect(mock.Exists("/src/notes.md")).To(BeFalse())
		Expect(mock.Exists("/dst/notes.md")).To(BeTrue())
		Expect(coordinator.Pane(pane.Left).Selection()).To(BeEmpty())
		Expect(names(coordinator.Pane(pane.Left))).ToNot(ContainElement("notes.md"))
		Expect(names(coordinator.Pane(pane.Right))).To(ContainElement("notes.md"))
	})

	It("filters as the user types and clears on esc", func() {
		model = press(model, "/")
		Expect(model.Filtering()).To(BeTrue())

		model = press(model, "*", ".", "m", "d")
		Expect(names(coordinator.Pane(pane.Left))).To(Equal([]string{"data", "notes.md"}))

		model = press(model, "enter")
		Expect(model.Filtering()).To(BeFalse())
		Expect(coordinator.Pane(pane.Left).Options().Pattern).To(Equal("*.md"))

		model = press(model, "/", "esc")
		Expect(coordinator.Pane(pane.Left).Options().Pattern).To(BeEmpty())
		Expect(names(coordinator.Pane(pane.Left))).To(HaveLen(3))
	})

	It("uses plain text as a substring query", func() {
		model = press(model, "/", "R", "E", "P", "enter")

		Expect(coordinator.Pane(pane.Left).Options().Query).To(Equal("REP"))
		Expect(names(coordinator.Pane(pane.Left))).To(Equal([]string{"report.txt"}))
	})

	It("toggles hidden files", func() {
		model = press(model, ".")
		Expect(names(coordinator.Pane(pane.Left))).To(ContainElement(".hidden"))

		model = press(model, ".")
		Expect(names(coordinator.Pane(pane.Left))).ToNot(ContainElement(".hidden"))
	})

	It("quits on q", func() {
		next, cmd := model.Update(key("q"))
		model = next.(tui.Model)

		Expect(model.Quitting()).To(BeTrue())
		Expect(cmd).ToNot(BeNil())
		Expect(model.View()).To(BeEmpty())
	})
})

func names(state *pane.State) []string {
	var out []string
	for _, entry := range state.Entries() {
		out = append(out, entry.Name)
	}

	return out
}
