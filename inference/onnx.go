// Package inference runs the optional learned policy through ONNX Runtime.
// Clients batch concurrent Predict calls into single session runs; a pool
// spreads callers across sessions when many AI entities decide at once.
package inference

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/brensch/gridlock/behavior"
)

const (
	// InputSize matches the plane encoding produced by behavior.EncodeView.
	InputSize = behavior.NeuralInput
	// PolicySize is one logit per heading.
	PolicySize = 4
)

const (
	DefaultBatchSize    = 64
	DefaultBatchTimeout = time.Millisecond
)

// ClientConfig tunes request batching.
type ClientConfig struct {
	BatchSize    int
	BatchTimeout time.Duration
}

type request struct {
	input []float32
	resp  chan response
}

type response struct {
	policy []float32
	err    error
}

// Client owns one ONNX session and a batching loop. It implements
// behavior.Predictor.
type Client struct {
	session  *ort.DynamicAdvancedSession
	requests chan request
	cfg      ClientConfig
}

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// NewClient loads the model at modelPath with default batching.
func NewClient(modelPath string) (*Client, error) {
	return NewClientWithConfig(modelPath, ClientConfig{})
}

// NewClientWithConfig loads the model at modelPath. ONNX Runtime
// environment initialization is process-global and happens on the first
// client.
func NewClientWithConfig(modelPath string, cfg ClientConfig) (*Client, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = DefaultBatchTimeout
	}

	if runtime.GOOS == "linux" {
		if p := os.Getenv("ORT_SHARED_LIBRARY_PATH"); p != "" {
			ort.SetSharedLibraryPath(p)
		} else if cwd, err := os.Getwd(); err == nil {
			for _, name := range []string{"libonnxruntime.so", "libonnxruntime.so.1"} {
				abs := filepath.Join(cwd, name)
				if _, err := os.Stat(abs); err == nil {
					ort.SetSharedLibraryPath(abs)
					break
				}
			}
		}
	}

	ortInitOnce.Do(func() {
		ortInitErr = ort.InitializeEnvironment()
	})
	if ortInitErr != nil {
		return nil, fmt.Errorf("init onnxruntime: %w", ortInitErr)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, err
	}
	defer options.Destroy()

	// One intra-op thread per session: parallelism comes from the pool.
	options.SetIntraOpNumThreads(1)
	options.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(modelPath, []string{"input"}, []string{"policy"}, options)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	c := &Client{
		session:  session,
		cfg:      cfg,
		requests: make(chan request, cfg.BatchSize*2),
	}
	go c.batchLoop()
	return c, nil
}

func (c *Client) Close() error {
	return c.session.Destroy()
}

// Predict scores one encoded view, returning four policy logits. It blocks
// until the batch containing the request has run.
func (c *Client) Predict(input []float32) ([]float32, error) {
	if len(input) != InputSize {
		return nil, fmt.Errorf("input size %d, want %d", len(input), InputSize)
	}
	resp := make(chan response, 1)
	c.requests <- request{input: input, resp: resp}
	r := <-resp
	return r.policy, r.err
}

func (c *Client) batchLoop() {
	batch := make([]float32, 0, c.cfg.BatchSize*InputSize)
	pending := make([]request, 0, c.cfg.BatchSize)

	ticker := time.NewTicker(c.cfg.BatchTimeout)
	defer ticker.Stop()

	flush := func() {
		if len(pending) == 0 {
			return
		}
		c.runBatch(pending, batch)
		pending = pending[:0]
		batch = batch[:0]
	}

	for {
		select {
		case req, ok := <-c.requests:
			if !ok {
				flush()
				return
			}
			pending = append(pending, req)
			batch = append(batch, req.input...)
			if len(pending) >= c.cfg.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (c *Client) runBatch(pending []request, batch []float32) {
	n := int64(len(pending))

	inputTensor, err := ort.NewTensor(ort.NewShape(n, behavior.NeuralPlanes, behavior.NeuralGrid, behavior.NeuralGrid), batch)
	if err != nil {
		c.failBatch(pending, err)
		return
	}
	defer inputTensor.Destroy()

	policyTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(n, PolicySize))
	if err != nil {
		c.failBatch(pending, err)
		return
	}
	defer policyTensor.Destroy()

	if err := c.session.Run([]ort.Value{inputTensor}, []ort.Value{policyTensor}); err != nil {
		c.failBatch(pending, err)
		return
	}

	data := policyTensor.GetData()
	for i, req := range pending {
		policy := make([]float32, PolicySize)
		copy(policy, data[i*PolicySize:(i+1)*PolicySize])
		req.resp <- response{policy: policy}
	}
}

func (c *Client) failBatch(pending []request, err error) {
	slog.Debug("inference batch failed", "size", len(pending), "err", err)
	for _, req := range pending {
		req.resp <- response{err: err}
	}
}
