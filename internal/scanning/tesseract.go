package scanning

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// engineWhitelist restricts recognition to characters that actually occur on
// receipts, which cuts down on punctuation mis-reads.
const engineWhitelist = "0123456789" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz" +
	".,$/:-#%*()&@+ "

const defaultQueueDepth = 8

// engineBackend is the minimal contract against the underlying OCR client,
// indirected so tests can observe serialization without Tesseract installed.
type engineBackend interface {
	Recognize(image []byte) (*RecognitionResult, error)
	Close() error
}

// TesseractRecognizer implements Recognizer on top of a single gosseract
// client. The client is stateful and not safe for concurrent use, so all
// recognition runs through one worker goroutine fed by a bounded job queue;
// overlapping callers execute strictly one after another.
type TesseractRecognizer struct {
	newBackend func() (engineBackend, error)

	mu          sync.Mutex
	initialized bool
	backend     engineBackend
	jobs        chan recognitionJob
	stop        chan struct{}
	done        chan struct{}
	queueDepth  int
}

type recognitionJob struct {
	image []byte
	reply chan recognitionReply
}

type recognitionReply struct {
	result *RecognitionResult
	err    error
}

// NewTesseractRecognizer creates a recognizer for the given Tesseract
// language ("eng" when empty). Nothing is started until Initialize or the
// first Recognize call.
func NewTesseractRecognizer(language string, queueDepth int) *TesseractRecognizer {
	if queueDepth <= 0 {
		queueDepth = defaultQueueDepth
	}
	return &TesseractRecognizer{
		newBackend: func() (engineBackend, error) { return newTesseractBackend(language) },
		queueDepth: queueDepth,
	}
}

// Initialize starts the engine once per process lifetime. A second caller
// blocks until the first in-flight initialization finishes, then returns.
func (r *TesseractRecognizer) Initialize(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.initialized {
		return nil
	}

	backend, err := r.newBackend()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEngineInit, err)
	}

	r.backend = backend
	r.jobs = make(chan recognitionJob, r.queueDepth)
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	go worker(backend, r.jobs, r.stop, r.done)
	r.initialized = true
	return nil
}

func worker(backend engineBackend, jobs chan recognitionJob, stop, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			// Fail whatever is still queued so no caller is left hanging.
			for {
				select {
				case job := <-jobs:
					job.reply <- recognitionReply{err: fmt.Errorf("%w: engine released", ErrRecognition)}
				default:
					return
				}
			}
		case job := <-jobs:
			result, err := backend.Recognize(job.image)
			if err != nil {
				err = fmt.Errorf("%w: %v", ErrRecognition, err)
			}
			job.reply <- recognitionReply{result: result, err: err}
		}
	}
}

// Recognize submits a preprocessed image and waits for its turn on the
// engine. Abandoning the wait via ctx does not interrupt in-flight work.
func (r *TesseractRecognizer) Recognize(ctx context.Context, image []byte) (*RecognitionResult, error) {
	if err := r.Initialize(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	jobs, stop := r.jobs, r.stop
	r.mu.Unlock()

	job := recognitionJob{image: image, reply: make(chan recognitionReply, 1)}
	select {
	case jobs <- job:
	case <-stop:
		return nil, fmt.Errorf("%w: engine released", ErrRecognition)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case reply := <-job.reply:
		return reply.result, reply.err
	case <-stop:
		// The worker may have replied just before stopping.
		select {
		case reply := <-job.reply:
			return reply.result, reply.err
		default:
			return nil, fmt.Errorf("%w: engine released", ErrRecognition)
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cleanup stops the worker, releases the engine and resets initialization
// state so a later Initialize starts fresh. No-op when never initialized.
func (r *TesseractRecognizer) Cleanup() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initialized {
		return nil
	}

	close(r.stop)
	<-r.done
	err := r.backend.Close()

	r.backend = nil
	r.jobs = nil
	r.stop = nil
	r.done = nil
	r.initialized = false
	return err
}

// tesseractBackend adapts a configured gosseract client to engineBackend.
type tesseractBackend struct {
	client *gosseract.Client
}

func newTesseractBackend(language string) (engineBackend, error) {
	client := gosseract.NewClient()

	configure := func() error {
		if language != "" {
			if err := client.SetLanguage(language); err != nil {
				return fmt.Errorf("set language: %w", err)
			}
		}
		// Receipts are one variable-width column; table detection and
		// preserved spacing keep the item/price alignment recoverable.
		if err := client.SetPageSegMode(gosseract.PSM_SINGLE_COLUMN); err != nil {
			return fmt.Errorf("set page segmentation mode: %w", err)
		}
		if err := client.SetWhitelist(engineWhitelist); err != nil {
			return fmt.Errorf("set whitelist: %w", err)
		}
		for name, value := range map[string]string{
			"preserve_interword_spaces":          "1",
			"textord_tabfind_find_tables":        "1",
			"textord_tablefind_recognize_tables": "1",
		} {
			if err := client.SetVariable(gosseract.SettableVariable(name), value); err != nil {
				return fmt.Errorf("set %s: %w", name, err)
			}
		}
		return nil
	}

	if err := configure(); err != nil {
		client.Close()
		return nil, err
	}
	return &tesseractBackend{client: client}, nil
}

func (b *tesseractBackend) Recognize(image []byte) (*RecognitionResult, error) {
	if err := b.client.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}

	text, err := b.client.Text()
	if err != nil {
		return nil, fmt.Errorf("recognize text: %w", err)
	}

	boxes, err := b.client.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, fmt.Errorf("word boxes: %w", err)
	}

	lines, confidence := groupWords(boxes)
	return &RecognitionResult{
		RawText:           strings.TrimSpace(text),
		Lines:             lines,
		OverallConfidence: confidence,
	}, nil
}

func (b *tesseractBackend) Close() error {
	return b.client.Close()
}

// groupWords converts gosseract's flat word list into per-line token groups,
// keyed by the engine's block/paragraph/line numbering, plus the mean word
// confidence on the 0-100 scale.
func groupWords(boxes []gosseract.BoundingBox) ([][]WordToken, float64) {
	type lineKey struct{ block, par, line int }

	var lines [][]WordToken
	index := make(map[lineKey]int)
	var confidenceSum float64

	for _, box := range boxes {
		key := lineKey{box.BlockNum, box.ParNum, box.LineNum}
		i, ok := index[key]
		if !ok {
			i = len(lines)
			index[key] = i
			lines = append(lines, nil)
		}
		lines[i] = append(lines[i], WordToken{
			Text: box.Word,
			Box: BoundingBox{
				X0: box.Box.Min.X,
				Y0: box.Box.Min.Y,
				X1: box.Box.Max.X,
				Y1: box.Box.Max.Y,
			},
			LineIndex: i,
		})
		confidenceSum += box.Confidence
	}

	if len(boxes) == 0 {
		return lines, 0
	}
	return lines, confidenceSum / float64(len(boxes))
}
