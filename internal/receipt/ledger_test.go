package receipt

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Ledger", func() {
	var (
		store  *mockStore
		ledger *Ledger
	)

	BeforeEach(func() {
		store = newMockStore()
		ledger = NewLedger(store)
	})

	Describe("Load", func() {
		When("neither slot is present", func() {
			It("should produce an empty, unmodified ledger", func() {
				Expect(ledger.Load()).To(Succeed())
				Expect(ledger.Items()).To(BeEmpty())
				Expect(ledger.IsModified()).To(BeFalse())
			})
		})

		When("only the raw slot is present", func() {
			BeforeEach(func() {
				store.SetRaw("Milk, $3.29\nEggs, $4.99")
			})

			It("should parse the raw text", func() {
				Expect(ledger.Load()).To(Succeed())
				Expect(ledger.Items()).To(HaveLen(2))
				Expect(ledger.IsModified()).To(BeFalse())
			})
		})

		When("an overlay is present", func() {
			BeforeEach(func() {
				store.SetRaw("Milk, $3.29")
				store.SetOverlay([]Item{{Name: "Oat Milk", Price: "$4.50", Quantity: 2}})
			})

			It("should take the overlay over the raw parse", func() {
				Expect(ledger.Load()).To(Succeed())
				Expect(ledger.Items()).To(HaveLen(1))
				Expect(ledger.Items()[0].Name).To(Equal("Oat Milk"))
				Expect(ledger.IsModified()).To(BeTrue())
			})

			It("should keep the overlay even when the raw slot changes afterwards", func() {
				store.SetRaw("Eggs, $4.99")
				Expect(ledger.Load()).To(Succeed())
				Expect(ledger.Items()[0].Name).To(Equal("Oat Milk"))
			})
		})

		When("the store read fails", func() {
			BeforeEach(func() {
				store.getRawErr = errors.New("io failure")
			})

			It("returns the error", func() {
				Expect(ledger.Load()).NotTo(Succeed())
			})
		})
	})

	Describe("mutations", func() {
		BeforeEach(func() {
			store.SetRaw("Milk, $3.29\nEggs, $4.99")
			Expect(ledger.Load()).To(Succeed())
		})

		Describe("UpdateName", func() {
			It("should rename the item and write through", func() {
				Expect(ledger.UpdateName(0, "Whole Milk")).To(Succeed())
				Expect(ledger.Items()[0].Name).To(Equal("Whole Milk"))
				Expect(store.overlayPresent).To(BeTrue())
				Expect(store.overlay[0].Name).To(Equal("Whole Milk"))
				Expect(ledger.IsModified()).To(BeTrue())
			})

			It("should reject an out-of-range index", func() {
				Expect(ledger.UpdateName(5, "x")).NotTo(Succeed())
				Expect(store.overlayPresent).To(BeFalse())
			})
		})

		Describe("UpdatePrice", func() {
			It("should store the price string as given", func() {
				Expect(ledger.UpdatePrice(1, "5.10")).To(Succeed())
				Expect(ledger.Items()[1].Price).To(Equal("5.10"))
				Expect(store.overlay[1].Price).To(Equal("5.10"))
			})
		})

		Describe("UpdateQuantity", func() {
			It("should apply a positive delta", func() {
				Expect(ledger.UpdateQuantity(0, 2)).To(Succeed())
				Expect(ledger.Items()[0].Quantity).To(Equal(3))
			})

			It("should clamp at 1 regardless of delta", func() {
				Expect(ledger.UpdateQuantity(0, -5)).To(Succeed())
				Expect(ledger.Items()[0].Quantity).To(Equal(1))
			})

			It("should write the whole list through on every change", func() {
				Expect(ledger.UpdateQuantity(0, 1)).To(Succeed())
				Expect(store.overlay).To(HaveLen(2))
			})
		})

		Describe("DeleteItem", func() {
			It("should remove the item and persist the remainder", func() {
				Expect(ledger.DeleteItem(0)).To(Succeed())
				Expect(ledger.Items()).To(HaveLen(1))
				Expect(ledger.Items()[0].Name).To(Equal("Eggs"))
				Expect(store.overlay).To(HaveLen(1))
			})
		})

		When("the overlay write fails", func() {
			BeforeEach(func() {
				store.setOverlayErr = errors.New("io failure")
			})

			It("returns the error", func() {
				Expect(ledger.UpdateName(0, "x")).NotTo(Succeed())
			})
		})
	})

	Describe("ResetToOriginal", func() {
		BeforeEach(func() {
			store.SetRaw("Milk, $3.29\nEggs, $4.99")
			Expect(ledger.Load()).To(Succeed())
			Expect(ledger.DeleteItem(0)).To(Succeed())
		})

		It("should revert to the raw parse", func() {
			Expect(ledger.ResetToOriginal()).To(Succeed())
			Expect(ledger.Items()).To(HaveLen(2))
			Expect(ledger.IsModified()).To(BeFalse())
		})

		It("should remove the overlay slot rather than rewrite it", func() {
			Expect(ledger.ResetToOriginal()).To(Succeed())
			Expect(store.overlayPresent).To(BeFalse())
		})

		When("the raw slot is also absent", func() {
			BeforeEach(func() {
				store.rawPresent = false
				store.raw = ""
			})

			It("should leave an empty ledger", func() {
				Expect(ledger.ResetToOriginal()).To(Succeed())
				Expect(ledger.Items()).To(BeEmpty())
			})
		})
	})

	Describe("Total", func() {
		BeforeEach(func() {
			store.SetOverlay([]Item{
				{Name: "Milk", Price: "$2.00", Quantity: 2},
				{Name: "Eggs", Price: "$1.50", Quantity: 1},
			})
			Expect(ledger.Load()).To(Succeed())
		})

		It("should sum price times quantity", func() {
			Expect(ledger.Total()).To(BeNumerically("~", 5.50, 0.001))
		})

		It("should recompute after every mutation", func() {
			Expect(ledger.DeleteItem(0)).To(Succeed())
			Expect(ledger.Total()).To(BeNumerically("~", 1.50, 0.001))
		})

		It("should count unparseable prices as zero", func() {
			Expect(ledger.UpdatePrice(0, "N/A")).To(Succeed())
			Expect(ledger.Total()).To(BeNumerically("~", 1.50, 0.001))
		})
	})
})
