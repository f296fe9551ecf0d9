package receipt

import (
	"fmt"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoltStore", func() {
	var (
		tmpDir string
		dbPath string
		store  *BoltStore
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "test.db")
		var err error
		store, err = NewBoltStore(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if store != nil {
			store.Close()
		}
	})

	Describe("raw slot", func() {
		When("nothing has been stored", func() {
			It("should report the slot as absent", func() {
				_, present, err := store.GetRaw()
				Expect(err).NotTo(HaveOccurred())
				Expect(present).To(BeFalse())
			})
		})

		When("a result has been stored", func() {
			BeforeEach(func() {
				Expect(store.SetRaw("Milk, $3.29")).To(Succeed())
			})

			It("should return the stored text", func() {
				raw, present, err := store.GetRaw()
				Expect(err).NotTo(HaveOccurred())
				Expect(present).To(BeTrue())
				Expect(raw).To(Equal("Milk, $3.29"))
			})

			It("should replace the text wholesale on the next write", func() {
				Expect(store.SetRaw("Eggs, $4.99")).To(Succeed())
				raw, _, err := store.GetRaw()
				Expect(err).NotTo(HaveOccurred())
				Expect(raw).To(Equal("Eggs, $4.99"))
			})
		})
	})

	Describe("overlay slot", func() {
		When("the ledger has not been edited", func() {
			It("should report the slot as absent", func() {
				_, present, err := store.GetOverlay()
				Expect(err).NotTo(HaveOccurred())
				Expect(present).To(BeFalse())
			})
		})

		When("an edited list has been stored", func() {
			BeforeEach(func() {
				Expect(store.SetOverlay([]Item{{Name: "Milk", Price: "$3.29", Quantity: 2}})).To(Succeed())
			})

			It("should return the stored items", func() {
				items, present, err := store.GetOverlay()
				Expect(err).NotTo(HaveOccurred())
				Expect(present).To(BeTrue())
				Expect(items).To(HaveLen(1))
				Expect(items[0].Quantity).To(Equal(2))
			})

			It("should read as absent after ClearOverlay", func() {
				Expect(store.ClearOverlay()).To(Succeed())
				_, present, err := store.GetOverlay()
				Expect(err).NotTo(HaveOccurred())
				Expect(present).To(BeFalse())
			})
		})

		When("clearing an already absent overlay", func() {
			It("should not return an error", func() {
				Expect(store.ClearOverlay()).To(Succeed())
			})
		})
	})

	Describe("history", func() {
		var receipt Receipt

		BeforeEach(func() {
			receipt = Receipt{
				ID:    "1",
				Date:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
				Items: []Item{{Name: "Milk", Price: "$3.29", Quantity: 1}},
				Total: 3.29,
			}
		})

		When("empty", func() {
			It("should return an empty list", func() {
				history, err := store.GetHistory()
				Expect(err).NotTo(HaveOccurred())
				Expect(history).To(BeEmpty())
			})
		})

		When("receipts are prepended", func() {
			BeforeEach(func() {
				Expect(store.PrependToHistory(receipt)).To(Succeed())
				second := receipt
				second.ID = "2"
				Expect(store.PrependToHistory(second)).To(Succeed())
			})

			It("should return the newest first", func() {
				history, err := store.GetHistory()
				Expect(err).NotTo(HaveOccurred())
				Expect(history).To(HaveLen(2))
				Expect(history[0].ID).To(Equal("2"))
				Expect(history[1].ID).To(Equal("1"))
			})

			It("should round-trip items and stored total", func() {
				history, err := store.GetHistory()
				Expect(err).NotTo(HaveOccurred())
				Expect(history[1].Items).To(HaveLen(1))
				Expect(history[1].Total).To(Equal(3.29))
			})
		})

		When("more receipts than the cap are inserted", func() {
			BeforeEach(func() {
				for i := 1; i <= historyLimit+1; i++ {
					r := receipt
					r.ID = fmt.Sprintf("%d", i)
					Expect(store.PrependToHistory(r)).To(Succeed())
				}
			})

			It("should keep exactly the cap", func() {
				history, err := store.GetHistory()
				Expect(err).NotTo(HaveOccurred())
				Expect(history).To(HaveLen(historyLimit))
			})

			It("should evict the oldest entry", func() {
				history, _ := store.GetHistory()
				Expect(history[0].ID).To(Equal(fmt.Sprintf("%d", historyLimit+1)))
				for _, r := range history {
					Expect(r.ID).NotTo(Equal("1"))
				}
			})
		})

		Describe("RemoveFromHistory", func() {
			BeforeEach(func() {
				Expect(store.PrependToHistory(receipt)).To(Succeed())
			})

			It("should remove the matching receipt", func() {
				Expect(store.RemoveFromHistory("1")).To(Succeed())
				history, err := store.GetHistory()
				Expect(err).NotTo(HaveOccurred())
				Expect(history).To(BeEmpty())
			})

			It("should ignore unknown IDs", func() {
				Expect(store.RemoveFromHistory("missing")).To(Succeed())
				history, _ := store.GetHistory()
				Expect(history).To(HaveLen(1))
			})
		})
	})

	Describe("persistence across reopen", func() {
		It("should keep slots after closing and reopening", func() {
			Expect(store.SetRaw("Milk, $3.29")).To(Succeed())
			Expect(store.SetOverlay([]Item{{Name: "Milk", Price: "$3.29", Quantity: 2}})).To(Succeed())
			Expect(store.Close()).To(Succeed())

			reopened, err := NewBoltStore(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer reopened.Close()

			raw, present, err := reopened.GetRaw()
			Expect(err).NotTo(HaveOccurred())
			Expect(present).To(BeTrue())
			Expect(raw).To(Equal("Milk, $3.29"))

			items, present, err := reopened.GetOverlay()
			Expect(err).NotTo(HaveOccurred())
			Expect(present).To(BeTrue())
			Expect(items[0].Quantity).To(Equal(2))

			store = nil
		})
	})
})
