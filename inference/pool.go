package inference

import (
	"fmt"
	"sync/atomic"
)

// Pool fans Predict calls out over several clients round-robin. Each client
// has its own session and batching loop, so sessions run in parallel.
//
// Environment initialization is process-global; Client handles it.
type Pool struct {
	clients []*Client
	rr      atomic.Uint64
}

// NewPool creates sessions clients over one model file.
func NewPool(modelPath string, sessions int) (*Pool, error) {
	return NewPoolWithConfig(modelPath, sessions, ClientConfig{})
}

func NewPoolWithConfig(modelPath string, sessions int, cfg ClientConfig) (*Pool, error) {
	if sessions <= 0 {
		sessions = 1
	}
	clients := make([]*Client, 0, sessions)
	for i := 0; i < sessions; i++ {
		c, err := NewClientWithConfig(modelPath, cfg)
		if err != nil {
			for _, created := range clients {
				_ = created.Close()
			}
			return nil, fmt.Errorf("create client %d/%d: %w", i+1, sessions, err)
		}
		clients = append(clients, c)
	}
	return &Pool{clients: clients}, nil
}

// Predict implements behavior.Predictor.
func (p *Pool) Predict(input []float32) ([]float32, error) {
	if len(p.clients) == 0 {
		return nil, fmt.Errorf("pool has no clients")
	}
	idx := int(p.rr.Add(1)-1) % len(p.clients)
	return p.clients[idx].Predict(input)
}

// Close destroys every session. The first error wins.
func (p *Pool) Close() error {
	var firstErr error
	for _, c := range p.clients {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
