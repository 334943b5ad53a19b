package scanning

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// stubBackend stands in for the Tesseract client and records how many
// recognitions ever ran at the same time.
type stubBackend struct {
	mu        sync.Mutex
	active    int
	maxActive int
	calls     int
	closed    bool

	delay  time.Duration
	result *RecognitionResult
	err    error
}

func (s *stubBackend) Recognize(image []byte) (*RecognitionResult, error) {
	s.mu.Lock()
	s.active++
	if s.active > s.maxActive {
		s.maxActive = s.active
	}
	s.mu.Unlock()

	time.Sleep(s.delay)

	s.mu.Lock()
	s.active--
	s.calls++
	s.mu.Unlock()
	return s.result, s.err
}

func (s *stubBackend) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var _ = Describe("TesseractRecognizer", func() {
	var (
		stub         *stubBackend
		factoryCalls int
		recognizer   *TesseractRecognizer
	)

	BeforeEach(func() {
		stub = &stubBackend{result: &RecognitionResult{RawText: "ok", OverallConfidence: 91}}
		factoryCalls = 0
		recognizer = NewTesseractRecognizer("eng", 4)
		recognizer.newBackend = func() (engineBackend, error) {
			factoryCalls++
			return stub, nil
		}
	})

	Describe("Initialize", func() {
		It("creates the engine exactly once", func() {
			Expect(recognizer.Initialize(context.Background())).To(Succeed())
			Expect(recognizer.Initialize(context.Background())).To(Succeed())
			Expect(factoryCalls).To(Equal(1))
		})

		It("is safe under concurrent callers", func() {
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					Expect(recognizer.Initialize(context.Background())).To(Succeed())
				}()
			}
			wg.Wait()
			Expect(factoryCalls).To(Equal(1))
		})

		It("wraps engine start failures in ErrEngineInit", func() {
			recognizer.newBackend = func() (engineBackend, error) {
				return nil, errors.New("no tessdata")
			}
			err := recognizer.Initialize(context.Background())
			Expect(err).To(MatchError(ErrEngineInit))
		})
	})

	Describe("Recognize", func() {
		It("initializes lazily on first use", func() {
			result, err := recognizer.Recognize(context.Background(), []byte("img"))
			Expect(err).NotTo(HaveOccurred())
			Expect(result.RawText).To(Equal("ok"))
			Expect(factoryCalls).To(Equal(1))
		})

		It("never runs two recognitions concurrently", func() {
			stub.delay = 20 * time.Millisecond

			var wg sync.WaitGroup
			for i := 0; i < 5; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := recognizer.Recognize(context.Background(), []byte("img"))
					Expect(err).NotTo(HaveOccurred())
				}()
			}
			wg.Wait()

			Expect(stub.calls).To(Equal(5))
			Expect(stub.maxActive).To(Equal(1))
		})

		It("wraps engine failures in ErrRecognition", func() {
			stub.err = errors.New("boom")
			_, err := recognizer.Recognize(context.Background(), []byte("img"))
			Expect(err).To(MatchError(ErrRecognition))
		})

		It("stops waiting when the context is canceled", func() {
			stub.delay = 200 * time.Millisecond
			go recognizer.Recognize(context.Background(), []byte("slow")) //nolint:errcheck

			// Give the first job time to occupy the worker.
			time.Sleep(20 * time.Millisecond)

			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			_, err := recognizer.Recognize(ctx, []byte("img"))
			Expect(err).To(MatchError(context.DeadlineExceeded))
		})
	})

	Describe("Cleanup", func() {
		It("is a no-op when never initialized", func() {
			Expect(recognizer.Cleanup()).To(Succeed())
			Expect(stub.closed).To(BeFalse())
		})

		It("releases the engine and resets state", func() {
			Expect(recognizer.Initialize(context.Background())).To(Succeed())
			Expect(recognizer.Cleanup()).To(Succeed())
			Expect(stub.closed).To(BeTrue())

			// A later use starts a fresh engine.
			_, err := recognizer.Recognize(context.Background(), []byte("img"))
			Expect(err).NotTo(HaveOccurred())
			Expect(factoryCalls).To(Equal(2))
		})

		It("can be called twice", func() {
			Expect(recognizer.Initialize(context.Background())).To(Succeed())
			Expect(recognizer.Cleanup()).To(Succeed())
			Expect(recognizer.Cleanup()).To(Succeed())
		})
	})
})
