package audio

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
)

type countingSource struct {
	mu     sync.Mutex
	frames int
	closed bool
}

func (s *countingSource) NextFrame() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames++
	return []byte{0x01}, nil
}

func (s *countingSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func TestCaptureStartStop(t *testing.T) {
	src := &countingSource{}
	c := NewCapture(func() (FrameSource, error) { return src, nil })

	track, err := c.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if track == nil {
		t.Fatal("nil track")
	}
	if err := c.Stop(); err != nil {
		t.Fatal(err)
	}
	src.mu.Lock()
	defer src.mu.Unlock()
	if !src.closed {
		t.Fatal("source not released on Stop")
	}
}

func TestCaptureRejectsDoubleStart(t *testing.T) {
	c := NewCapture(func() (FrameSource, error) { return &countingSource{}, nil })
	if _, err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer c.Stop()
	if _, err := c.Start(context.Background()); err == nil {
		t.Fatal("second Start must fail while active")
	}
}

func TestCaptureOpenFailure(t *testing.T) {
	wantErr := errors.New("device busy")
	c := NewCapture(func() (FrameSource, error) { return nil, wantErr })
	if _, err := c.Start(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
	// a failed start leaves the capture reusable
	if err := c.Stop(); err != nil {
		t.Fatal(err)
	}
}

func TestStopIdempotent(t *testing.T) {
	c := NewCapture(func() (FrameSource, error) { return &countingSource{}, nil })
	if _, err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := c.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := c.Stop(); err != nil {
		t.Fatal(err)
	}
}

func TestStaticGate(t *testing.T) {
	if err := (StaticGate{Allowed: true}).RequestCapture(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := (StaticGate{}).RequestCapture(context.Background()); err == nil {
		t.Fatal("want denial")
	}
}

func TestSilenceSourceFrames(t *testing.T) {
	var s SilenceSource
	frame, err := s.NextFrame()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(frame, opusSilence) {
		t.Fatalf("frame = %x", frame)
	}
	// frames must be independent copies
	frame[0] = 0x00
	again, _ := s.NextFrame()
	if !bytes.Equal(again, opusSilence) {
		t.Fatal("silence frame aliased")
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}
