package input

import (
	"context"
	"errors"
	"io"
	"testing"
)

// chunkReader 每次 Read 返回一个预设的数据块，模拟原始模式下的逐键输入
type chunkReader struct {
	chunks []string
	err    error
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks = r.chunks[1:]
	return n, nil
}

func TestListenCountsChunksAsKeys(t *testing.T) {
	r := &chunkReader{chunks: []string{"a", "b", "\x1b[A", " "}}

	keys := 0
	interrupted := false
	err := Listen(context.Background(), r, Handlers{
		OnKey:       func() error { keys++; return nil },
		OnInterrupt: func() { interrupted = true },
	})
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	if keys != 4 {
		t.Fatalf("expected 4 keys, got %d", keys)
	}
	if interrupted {
		t.Fatal("expected no interrupt on EOF")
	}
}

func TestListenStopsOnCtrlC(t *testing.T) {
	r := &chunkReader{chunks: []string{"a", "\x03", "b"}}

	keys := 0
	interrupts := 0
	err := Listen(context.Background(), r, Handlers{
		OnKey:       func() error { keys++; return nil },
		OnInterrupt: func() { interrupts++ },
	})
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	if keys != 1 || interrupts != 1 {
		t.Fatalf("expected 1 key and 1 interrupt, got %d and %d", keys, interrupts)
	}
	if len(r.chunks) != 1 {
		t.Fatalf("expected reading to stop after Ctrl+C, %d chunks left", len(r.chunks))
	}
}

func TestListenPropagatesErrors(t *testing.T) {
	readErr := errors.New("stdin closed")
	err := Listen(context.Background(), &chunkReader{err: readErr}, Handlers{})
	if !errors.Is(err, readErr) {
		t.Fatalf("expected read error, got %v", err)
	}

	keyErr := errors.New("controller stopped")
	err = Listen(context.Background(), &chunkReader{chunks: []string{"a", "b"}}, Handlers{
		OnKey: func() error { return keyErr },
	})
	if !errors.Is(err, keyErr) {
		t.Fatalf("expected key handler error, got %v", err)
	}
}

func TestListenStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	keys := 0
	err := Listen(ctx, &chunkReader{chunks: []string{"a"}}, Handlers{
		OnKey: func() error { keys++; return nil },
	})
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	if keys != 0 {
		t.Fatalf("expected no keys after cancel, got %d", keys)
	}
}
