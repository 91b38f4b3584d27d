// SPDX-License-Identifier: MIT

//go:build unix

package eventcycle

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sys/unix"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newPipe(t *testing.T) (*os.File, *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() {
		r.Close()
		w.Close()
	})
	return r, w
}

func newCycle(t *testing.T) *Cycle {
	t.Helper()
	c, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

// start runs the cycle on its own goroutine and returns the channel carrying
// Run's result.
func start(c *Cycle) chan error {
	errc := make(chan error, 1)
	go func() { errc <- c.Run(context.Background()) }()
	return errc
}

func waitStopped(t *testing.T, c *Cycle, errc chan error) error {
	t.Helper()
	c.Close()
	select {
	case err := <-errc:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("cycle did not stop")
		return nil
	}
}

func recvString(t *testing.T, ch chan string) string {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
		return ""
	}
}

func TestReadHandlerFires(t *testing.T) {
	r, w := newPipe(t)
	c := newCycle(t)

	got := make(chan string, 4)
	require.NoError(t, c.Watch(r, WithExtra("payload"), OnRead(
		func(target Source, extra any, done DoneFunc) (Action, error) {
			buf := make([]byte, 16)
			n, err := target.(*os.File).Read(buf)
			if err != nil {
				return Detach, err
			}
			got <- string(buf[:n]) + "/" + extra.(string)
			return Continue, nil
		})))

	errc := start(c)
	w.Write([]byte("ping"))
	assert.Equal(t, "ping/payload", recvString(t, got))
	w.Write([]byte("pong"))
	assert.Equal(t, "pong/payload", recvString(t, got))
	require.NoError(t, waitStopped(t, c, errc))
}

func TestDetachStopsDelivery(t *testing.T) {
	r, w := newPipe(t)
	c := newCycle(t)

	got := make(chan string, 4)
	require.NoError(t, c.Watch(r, OnRead(
		func(target Source, _ any, _ DoneFunc) (Action, error) {
			buf := make([]byte, 16)
			n, _ := target.(*os.File).Read(buf)
			got <- string(buf[:n])
			return Detach, nil
		})))

	errc := start(c)
	w.Write([]byte("first"))
	assert.Equal(t, "first", recvString(t, got))

	w.Write([]byte("second"))
	select {
	case s := <-got:
		t.Fatalf("detached handler fired with %q", s)
	case <-time.After(100 * time.Millisecond):
	}
	require.NoError(t, waitStopped(t, c, errc))
}

func TestAsyncHandlerResumes(t *testing.T) {
	r, w := newPipe(t)
	c := newCycle(t)

	got := make(chan string, 4)
	release := make(chan struct{})
	require.NoError(t, c.Watch(r, OnRead(
		func(target Source, _ any, done DoneFunc) (Action, error) {
			buf := make([]byte, 16)
			n, _ := target.(*os.File).Read(buf)
			got <- string(buf[:n])
			go func() {
				<-release
				done(true)
			}()
			return Async, nil
		})))

	errc := start(c)
	w.Write([]byte("one"))
	assert.Equal(t, "one", recvString(t, got))

	// While pending, further readiness is ignored.
	w.Write([]byte("two"))
	select {
	case s := <-got:
		t.Fatalf("pending handler fired with %q", s)
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	assert.Equal(t, "two", recvString(t, got))
	require.NoError(t, waitStopped(t, c, errc))
}

func TestWriteHandlerFires(t *testing.T) {
	_, w := newPipe(t)
	c := newCycle(t)

	got := make(chan string, 1)
	require.NoError(t, c.Watch(w, OnWrite(
		func(Source, any, DoneFunc) (Action, error) {
			got <- "writable"
			return Detach, nil
		})))

	errc := start(c)
	assert.Equal(t, "writable", recvString(t, got))
	require.NoError(t, waitStopped(t, c, errc))
}

func TestBrokenWriteTargetReachesHandler(t *testing.T) {
	r, w := newPipe(t)
	c := newCycle(t)

	// A full pipe with its read end closed reports only an error
	// condition, not writability. The write handler must still run so it
	// can detach.
	require.NoError(t, unix.SetNonblock(int(w.Fd()), true))
	chunk := make([]byte, 4096)
	for {
		if _, err := w.Write(chunk); err != nil {
			break
		}
	}
	require.NoError(t, r.Close())

	got := make(chan string, 1)
	require.NoError(t, c.Watch(w, OnWrite(
		func(Source, any, DoneFunc) (Action, error) {
			got <- "broken"
			return Detach, nil
		})))

	errc := start(c)
	assert.Equal(t, "broken", recvString(t, got))
	require.NoError(t, waitStopped(t, c, errc))
}

func TestUnwatchRemovesSource(t *testing.T) {
	r, w := newPipe(t)
	c := newCycle(t)

	got := make(chan string, 4)
	require.NoError(t, c.Watch(r, OnRead(
		func(target Source, _ any, _ DoneFunc) (Action, error) {
			buf := make([]byte, 16)
			n, _ := target.(*os.File).Read(buf)
			got <- string(buf[:n])
			return Continue, nil
		})))

	errc := start(c)
	w.Write([]byte("live"))
	assert.Equal(t, "live", recvString(t, got))

	require.NoError(t, c.Unwatch(r))
	time.Sleep(50 * time.Millisecond)
	w.Write([]byte("dead"))
	select {
	case s := <-got:
		t.Fatalf("unwatched source fired with %q", s)
	case <-time.After(100 * time.Millisecond):
	}
	require.NoError(t, waitStopped(t, c, errc))
}

func TestHandlerErrorReachesErrorFunc(t *testing.T) {
	r, w := newPipe(t)
	c := newCycle(t)

	boom := errors.New("boom")
	seen := make(chan error, 1)
	require.NoError(t, c.Watch(r,
		OnRead(func(target Source, _ any, _ DoneFunc) (Action, error) {
			buf := make([]byte, 16)
			target.(*os.File).Read(buf)
			return Continue, boom
		}),
		OnError(func(err error, contexts *Contexts, target Source) bool {
			seen <- err
			contexts.Remove(target)
			return true
		})))

	errc := start(c)
	w.Write([]byte("x"))

	select {
	case err := <-seen:
		var handlerErr *ReadHandlerError
		require.ErrorAs(t, err, &handlerErr)
		require.ErrorIs(t, err, boom)
	case <-time.After(2 * time.Second):
		t.Fatal("error handler not called")
	}
	require.NoError(t, waitStopped(t, c, errc))
}

func TestUnhandledErrorStopsRun(t *testing.T) {
	r, w := newPipe(t)
	c := newCycle(t)

	boom := errors.New("boom")
	require.NoError(t, c.Watch(r, OnRead(
		func(target Source, _ any, _ DoneFunc) (Action, error) {
			buf := make([]byte, 16)
			target.(*os.File).Read(buf)
			return Continue, boom
		})))

	errc := start(c)
	w.Write([]byte("x"))

	select {
	case err := <-errc:
		require.ErrorIs(t, err, boom)
	case <-time.After(2 * time.Second):
		t.Fatal("cycle kept running after unhandled error")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	c := newCycle(t)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()

	cancel()
	select {
	case err := <-errc:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cycle ignored context cancellation")
	}
}

func TestRunOnceZeroTimeout(t *testing.T) {
	c := newCycle(t)
	require.NoError(t, c.RunOnce(0))
}

func TestWatchAfterClose(t *testing.T) {
	r, _ := newPipe(t)
	c, err := New()
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.ErrorIs(t, c.Watch(r), ErrClosed)
	require.ErrorIs(t, c.Run(context.Background()), ErrClosed)
}
