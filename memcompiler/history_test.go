package memcompiler

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("history", func() {
	var (
		dir string
		src string
		now time.Time
		h   *history
	)

	BeforeEach(func() {
		dir = filepath.Join(GinkgoT().TempDir(), "history")
		src = filepath.Join(GinkgoT().TempDir(), "x_SRAM.cfg")
		Expect(os.WriteFile(src, []byte("-size (bytes) 64\n"), 0o644)).
			To(Succeed())

		now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		h = &history{
			dir:   dir,
			limit: 3,
			now: func() time.Time {
				now = now.Add(time.Second)
				return now
			},
		}
	})

	It("should copy the configuration", func() {
		archived, err := h.archive(src)

		Expect(err).NotTo(HaveOccurred())
		Expect(filepath.Base(archived)).
			To(Equal("x_SRAM.cfg_03_01_12_00_01.000000000"))
		Expect(os.ReadFile(archived)).To(Equal([]byte("-size (bytes) 64\n")))
	})

	It("should keep only the newest files", func() {
		var all []string

		for i := 0; i < 5; i++ {
			archived, err := h.archive(src)
			Expect(err).NotTo(HaveOccurred())

			old := time.Now().Add(time.Duration(i-10) * time.Minute)
			Expect(os.Chtimes(archived, old, old)).To(Succeed())

			all = append(all, archived)
		}

		entries, err := os.ReadDir(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(3))

		for _, p := range all[:2] {
			Expect(p).NotTo(BeAnExistingFile())
		}

		for _, p := range all[2:] {
			Expect(p).To(BeAnExistingFile())
		}
	})
})
