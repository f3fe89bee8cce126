package internal

import (
	"context"
	"io"
	"os"
)

type stdioKey int

const (
	stdoutKey stdioKey = iota
	stderrKey
	stdinKey
)

func WithStdout(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stdoutKey, w)
}

func Stdout(ctx context.Context) io.Writer {
	return fromContext[io.Writer](ctx, stdoutKey, os.Stdout)
}

func WithStderr(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stderrKey, w)
}

func Stderr(ctx context.Context) io.Writer {
	return fromContext[io.Writer](ctx, stderrKey, os.Stderr)
}

func WithStdin(ctx context.Context, r io.Reader) context.Context {
	return context.WithValue(ctx, stdinKey, r)
}

func Stdin(ctx context.Context) io.Reader {
	return fromContext[io.Reader](ctx, stdinKey, os.Stdin)
}

func fromContext[T any](ctx context.Context, key stdioKey, fallback T) T {
	if value, ok := ctx.Value(key).(T); ok {
		return value
	}
	return fallback
}
