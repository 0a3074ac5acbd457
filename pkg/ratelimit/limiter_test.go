package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestTokenBucket(t *testing.T) {
	tb := NewTokenBucket(5, time.Second)

	// Test initial capacity
	for i := 0; i < 5; i++ {
		if !tb.Allow() {
			t.Errorf("Expected token %d to be available", i+1)
		}
	}

	// Test exhaustion
	if tb.Allow() {
		t.Error("Expected no more tokens to be available")
	}

	// Test refill after waiting
	time.Sleep(time.Second + 100*time.Millisecond)
	if !tb.Allow() {
		t.Error("Expected tokens to be refilled after waiting")
	}

	// Test reset
	tb.tokens = 0
	tb.Reset()
	if tb.tokens != tb.capacity {
		t.Error("Expected tokens to be reset to capacity")
	}
}

func TestTokenBucketWait(t *testing.T) {
	tb := NewTokenBucket(1, 200*time.Millisecond)
	ctx := context.Background()

	if err := tb.Wait(ctx); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := tb.Wait(ctx); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Errorf("Expected second wait to block for the refill period, took %v", elapsed)
	}
}

func TestTokenBucketWaitCancelled(t *testing.T) {
	tb := NewTokenBucket(1, time.Hour)
	tb.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := tb.Wait(ctx); err == nil {
		t.Error("Expected wait to fail when context is cancelled")
	}
}

func TestPerMinute(t *testing.T) {
	tb := PerMinute(30)
	if tb.capacity != 30 || tb.refillPeriod != time.Minute {
		t.Errorf("Expected 30 tokens per minute, got %d per %v", tb.capacity, tb.refillPeriod)
	}
}

func TestPacer(t *testing.T) {
	p := NewPacer(150 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	if err := p.Wait(ctx); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	if err := p.Wait(ctx); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("Expected waits without a mark to return immediately, took %v", elapsed)
	}

	p.Mark()
	if p.Allow() {
		t.Error("Expected pacer to deny before the delay has elapsed")
	}

	if err := p.Wait(ctx); err != nil {
		t.Fatalf("paced wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 140*time.Millisecond {
		t.Errorf("Expected wait to honour the delay, took %v", elapsed)
	}
	if !p.Allow() {
		t.Error("Expected pacer to allow once the delay has elapsed")
	}

	p.Mark()
	p.Reset()
	if !p.Allow() {
		t.Error("Expected pacer to allow after reset")
	}
}

func TestPacerCancelled(t *testing.T) {
	p := NewPacer(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	p.Mark()
	cancel()

	if err := p.Wait(ctx); err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestSleepZero(t *testing.T) {
	if err := Sleep(context.Background(), 0); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
}
