package protocol

import "context"

// Reader is the byte-stream capability the codec reads from. Fill
// must deliver exactly len(buf) bytes into buf or return an error;
// looping until the buffer is full (or signalling failure) is the
// capability's responsibility, not the codec's.
type Reader interface {
	Fill(ctx context.Context, buf []byte) error
}

// Writer is the byte-stream capability the codec writes to. Emit
// must transmit exactly len(buf) bytes or return an error.
type Writer interface {
	Emit(ctx context.Context, buf []byte) error
}

// ReaderFunc adapts a plain function to a Reader.
type ReaderFunc func(ctx context.Context, buf []byte) error

func (f ReaderFunc) Fill(ctx context.Context, buf []byte) error { return f(ctx, buf) }

// WriterFunc adapts a plain function to a Writer.
type WriterFunc func(ctx context.Context, buf []byte) error

func (f WriterFunc) Emit(ctx context.Context, buf []byte) error { return f(ctx, buf) }
