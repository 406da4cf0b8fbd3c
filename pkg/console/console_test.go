package console

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys_DeliversBytes(t *testing.T) {
	keys := Keys(context.Background(), strings.NewReader("ads"))

	var got []byte
	for b := range keys {
		got = append(got, b)
	}

	assert.Equal(t, []byte{'a', 'd', 's'}, got)
}

func TestKeys_ClosesOnEOF(t *testing.T) {
	keys := Keys(context.Background(), strings.NewReader(""))

	select {
	case _, ok := <-keys:
		assert.False(t, ok, "channel should close without a key")
	case <-time.After(time.Second):
		t.Fatal("keys channel did not close on EOF")
	}
}

func TestKeys_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pr, pw := io.Pipe()

	keys := Keys(ctx, pr)

	go func() {
		pw.Write([]byte{'a'})
	}()

	select {
	case b := <-keys:
		require.Equal(t, byte('a'), b)
	case <-time.After(time.Second):
		t.Fatal("no key delivered")
	}

	cancel()
	pw.Close()

	// Drain whatever is in flight, the channel must close
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for range keys {
		}
	}()

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("keys channel did not close after cancel")
	}
}
