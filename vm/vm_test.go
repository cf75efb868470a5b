package vm

import (
	"testing"

	"github.com/dop251/goja"
	"github.com/joeycumines/go-scriptthread/mailbox"
	"github.com/stretchr/testify/require"
)

func newTestInterpreter() *Interpreter {
	return New(goja.New(), mailbox.New())
}

func TestInterpreterEval(t *testing.T) {
	in := newTestInterpreter()
	v, err := in.Eval("2 + 3")
	require.NoError(t, err)
	require.Equal(t, int64(5), v.ToInteger())
}

func TestInterpreterResultAndError(t *testing.T) {
	in := newTestInterpreter()
	in.SetResult("5")
	in.SetError("EBADKEY", "key not found")

	require.Equal(t, "5", in.Result())
	require.Equal(t, "EBADKEY", in.ErrorCode())
	require.Equal(t, "key not found", in.ErrorInfo())
}

func TestChannelTransfer(t *testing.T) {
	src := newTestInterpreter()
	dst := newTestInterpreter()

	ch := NewChannel("sock0", src)
	require.NoError(t, src.RegisterChannel(ch))
	require.True(t, ch.IsRegistered())

	ch.AddHandler("readable")
	ch.ClearHandlers()

	require.NoError(t, ch.CutChannel())
	require.False(t, ch.IsRegistered())

	require.NoError(t, ch.SpliceChannel(dst))
	require.True(t, ch.IsRegistered())
	_, ok := dst.Channel("sock0")
	require.True(t, ok)
}

func TestChannelSharedCannotBeCut(t *testing.T) {
	src := newTestInterpreter()
	ch := NewChannel("sock0", src)
	require.NoError(t, src.RegisterChannel(ch))
	ch.SetShared(true)

	err := ch.CutChannel()
	require.Error(t, err)
}

func TestChannelSpliceFailsIfNameExists(t *testing.T) {
	src := newTestInterpreter()
	dst := newTestInterpreter()

	existing := NewChannel("sock0", dst)
	require.NoError(t, dst.RegisterChannel(existing))

	ch := NewChannel("sock0", src)
	require.NoError(t, src.RegisterChannel(ch))
	require.NoError(t, ch.CutChannel())

	err := ch.SpliceChannel(dst)
	require.Error(t, err)
}
