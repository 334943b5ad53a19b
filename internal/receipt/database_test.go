package receipt

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoltDB", func() {
	var db *BoltDB

	BeforeEach(func() {
		var err error
		db, err = NewBoltDB(filepath.Join(GinkgoT().TempDir(), "test.db"))
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(db.Close()).To(Succeed())
	})

	newTx := func(id string) *Transaction {
		return &Transaction{
			ID:       id,
			Merchant: "CORNER DELI",
			Amount:   1250,
			Date:     time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			Items:    []TransactionItem{{Name: "SANDWICH", Price: 1250}},
		}
	}

	It("round-trips a transaction", func() {
		Expect(db.SaveTransaction(newTx("tx-1"))).To(Succeed())

		got, err := db.GetTransaction("tx-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Merchant).To(Equal("CORNER DELI"))
		Expect(got.Items).To(HaveLen(1))
		Expect(got.Date.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))).To(BeTrue())
	})

	It("errors for a missing transaction", func() {
		_, err := db.GetTransaction("nope")
		Expect(err).To(HaveOccurred())
	})

	It("lists all transactions", func() {
		Expect(db.SaveTransaction(newTx("tx-1"))).To(Succeed())
		Expect(db.SaveTransaction(newTx("tx-2"))).To(Succeed())

		transactions, err := db.ListTransactions()
		Expect(err).NotTo(HaveOccurred())
		Expect(transactions).To(HaveLen(2))
	})

	It("returns an empty list for a fresh database", func() {
		transactions, err := db.ListTransactions()
		Expect(err).NotTo(HaveOccurred())
		Expect(transactions).To(BeEmpty())
	})

	It("deletes a transaction", func() {
		Expect(db.SaveTransaction(newTx("tx-1"))).To(Succeed())
		Expect(db.DeleteTransaction("tx-1")).To(Succeed())

		_, err := db.GetTransaction("tx-1")
		Expect(err).To(HaveOccurred())
	})

	It("overwrites on save with the same id", func() {
		Expect(db.SaveTransaction(newTx("tx-1"))).To(Succeed())
		updated := newTx("tx-1")
		updated.Amount = 2000
		Expect(db.SaveTransaction(updated)).To(Succeed())

		got, err := db.GetTransaction("tx-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Amount).To(Equal(2000))
	})
})
