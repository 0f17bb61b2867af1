package async

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// EnterKey is closed once a line has been read from r. It stays open when r
// ends or fails first, so a closed or redirected stdin never fires it.
func EnterKey(r io.Reader) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		if _, err := bufio.NewReader(r).ReadBytes('\n'); err == nil {
			close(done)
		}
	}()
	return done
}

// Interrupt returns a context canceled on SIGINT, SIGTERM or when Enter is
// pressed on stdin.
func Interrupt(parent context.Context) (context.Context, context.CancelFunc) {
	return interrupt(parent, os.Stdin)
}

func interrupt(parent context.Context, stdin io.Reader) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(ctx)
	enter := EnterKey(stdin)
	go func() {
		select {
		case <-enter:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		cancel()
		stop()
	}
}
