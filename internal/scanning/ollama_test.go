package scanning

import (
	"bytes"
	"image/jpeg"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("Ollama", func() {
	var (
		server    *ghttp.Server
		extractor *Ollama
		imageData []byte
		text      string
		err       error
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		extractor, err = NewOllama(server.URL(), "llava")
		Expect(err).NotTo(HaveOccurred())

		var buf bytes.Buffer
		Expect(jpeg.Encode(&buf, makeTestImage(), nil)).To(Succeed())
		imageData = buf.Bytes()
	})

	AfterEach(func() {
		server.Close()
	})

	JustBeforeEach(func() {
		text, err = extractor.ExtractItems(imageData, "image/jpeg")
	})

	When("the API responds with extracted text", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("POST", "/api/chat"),
				ghttp.VerifyContentType("application/json"),
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
					"message": map[string]string{"role": "assistant", "content": "Milk, $3.29\nEggs, $4.99"},
					"done":    true,
				}),
			))
		})

		It("should return the raw text", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("Milk, $3.29\nEggs, $4.99"))
		})
	})

	When("the API responds with empty content", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
				"message": map[string]string{"role": "assistant", "content": ""},
				"done":    true,
			}))
		})

		It("should return ErrBadResponseShape", func() {
			Expect(err).To(MatchError(ErrBadResponseShape))
		})
	})

	When("the API responds with an error status", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusServiceUnavailable, "overloaded"))
		})

		It("returns the error", func() {
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("status 503"))
		})
	})

	When("the image cannot be decoded", func() {
		BeforeEach(func() {
			imageData = []byte("not an image")
		})

		It("should fail before calling the API", func() {
			Expect(err).To(HaveOccurred())
			Expect(server.ReceivedRequests()).To(BeEmpty())
		})
	})
})
