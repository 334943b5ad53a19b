package receipt

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		storage Storage
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		var err error
		storage, err = NewLocalStorage(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	It("saves and retrieves a file", func() {
		path, err := storage.Save("receipt.jpg", []byte("content"))
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("receipt.jpg"))
		Expect(filepath.Join(tmpDir, "receipt.jpg")).To(BeAnExistingFile())

		data, err := storage.Get("receipt.jpg")
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal([]byte("content")))
	})

	It("strips directory components from stored names", func() {
		path, err := storage.Save("../escape.jpg", []byte("content"))
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("escape.jpg"))
		Expect(filepath.Join(tmpDir, "escape.jpg")).To(BeAnExistingFile())
	})

	It("deletes a file", func() {
		_, err := storage.Save("receipt.jpg", []byte("content"))
		Expect(err).NotTo(HaveOccurred())
		Expect(storage.Delete("receipt.jpg")).To(Succeed())

		_, err = storage.Get("receipt.jpg")
		Expect(err).To(HaveOccurred())
	})

	It("errors when getting a missing file", func() {
		_, err := storage.Get("missing.jpg")
		Expect(err).To(HaveOccurred())
	})

	It("errors when deleting a missing file", func() {
		Expect(storage.Delete("missing.jpg")).NotTo(Succeed())
	})
})
