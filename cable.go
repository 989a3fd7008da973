/*
 * Copyright 2024 ScopeDB, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package influxdb

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PointCable batches data points sent from many goroutines into few writes.
//
// A batch is written when it holds BatchSize points or every BatchInterval,
// whichever comes first. Set both fields before calling Start.
type PointCable struct {
	c      *Client
	params *WriteParams

	mu      sync.RWMutex
	closed  bool
	sendCh  chan *pointSend
	stopped chan struct{}
	wg      sync.WaitGroup

	BatchSize     int
	BatchInterval time.Duration
}

type pointSend struct {
	point *DataPoint
	err   chan error
}

// PointCable creates a cable writing with the given parameters, merged over
// the client defaults.
func (c *Client) PointCable(params *WriteParams) *PointCable {
	return &PointCable{
		c:             c,
		params:        params,
		sendCh:        make(chan *pointSend),
		stopped:       make(chan struct{}),
		BatchSize:     5000,
		BatchInterval: time.Second,
	}
}

// Start runs the batching loop until Close is called or ctx is done. Pending
// points are flushed before the loop exits. Writes carry ctx's values but not
// its cancellation, so the last flush still goes out after ctx is done; each
// attempt is bounded by the client timeout.
func (p *PointCable) Start(ctx context.Context) {
	writeCtx := context.WithoutCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer close(p.stopped)

		interval := p.BatchInterval
		if interval <= 0 {
			interval = time.Second
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var pending []*pointSend
		flush := func() {
			if len(pending) == 0 {
				return
			}
			batch := pending
			pending = nil
			p.wg.Add(1)
			go func() {
				defer p.wg.Done()
				p.write(writeCtx, batch)
			}()
		}
		defer flush()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				flush()
			case s, more := <-p.sendCh:
				if !more {
					return
				}
				pending = append(pending, s)
				if len(pending) >= p.BatchSize {
					flush()
				}
			}
		}
	}()
}

func (p *PointCable) write(ctx context.Context, batch []*pointSend) {
	points := make([]*DataPoint, len(batch))
	for i, s := range batch {
		points[i] = s.point
	}
	err := p.c.WriteMany(ctx, points, p.params)
	if err != nil {
		p.c.logger.Warn("failed to write batch", zap.Int("points", len(points)), zap.Error(err))
	}
	for _, s := range batch {
		if err != nil {
			s.err <- err
		}
		close(s.err)
	}
}

// Send queues a point. The returned channel yields the write error, if any,
// and is closed once the batch holding the point has been written. Send
// blocks until the cable is started.
func (p *PointCable) Send(point *DataPoint) <-chan error {
	s := &pointSend{point: point, err: make(chan error, 1)}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		s.err <- ErrCableClosed
		close(s.err)
		return s.err
	}
	select {
	case p.sendCh <- s:
	case <-p.stopped:
		s.err <- ErrCableClosed
		close(s.err)
	}
	return s.err
}

// Close stops the cable and waits for every in-flight write.
func (p *PointCable) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.sendCh)
	}
	p.mu.Unlock()
	p.wg.Wait()
}
