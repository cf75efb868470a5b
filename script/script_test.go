package script

import (
	"strconv"
	"testing"
	"time"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/require"
)

// bootstrap spawns the process's first actor (with every namespace bound
// via Env.Spawn) and returns its id plus a handle to run further scripts
// against it synchronously, outside of any actor's own loop goroutine —
// analogous to "main" sending to a freshly created actor.
func bootstrap(t *testing.T) (*Env, uint64) {
	t.Helper()
	env := NewEnv()
	id, err := env.Spawn()
	require.NoError(t, err)
	return env, id
}

func TestThreadCreateAndSendRoundTrip(t *testing.T) {
	env, a := bootstrap(t)

	result, _, _, err := env.Registry.SendSync(a, a, "thread.create('')")
	require.NoError(t, err)
	require.NotEmpty(t, result)

	sum, _, _, err := env.Registry.SendSync(a, a, "2 + 3")
	require.NoError(t, err)
	require.Equal(t, "5", sum)
}

func TestThreadSendBetweenActors(t *testing.T) {
	env, a := bootstrap(t)
	b, err := env.Spawn()
	require.NoError(t, err)

	script := "thread.send(" + itoa(b) + ", '7*6', false, '')"
	result, errCode, errInfo, err := env.Registry.SendSync(a, a, script)
	require.NoError(t, err)
	require.Empty(t, errCode)
	require.Empty(t, errInfo)
	require.Equal(t, "42", result)
}

func TestSvarRoundTripThroughScript(t *testing.T) {
	env, a := bootstrap(t)

	_, _, _, err := env.Registry.SendSync(a, a, "svar.set('arr', 'k', 'v1')")
	require.NoError(t, err)

	result, _, _, err := env.Registry.SendSync(a, a, "svar.get('arr', 'k')")
	require.NoError(t, err)
	require.Equal(t, "v1", result)
}

func TestSvarListIdempotence(t *testing.T) {
	env, a := bootstrap(t)

	_, _, _, err := env.Registry.SendSync(a, a, "svar.lpush('arr', 'list', '0', 'x')")
	require.NoError(t, err)
	before, _, _, err := env.Registry.SendSync(a, a, "svar.arrayGet('arr')")
	require.NoError(t, err)

	_, _, _, err = env.Registry.SendSync(a, a, "svar.lpop('arr', 'list', '0')")
	require.NoError(t, err)
	_, _, _, err = env.Registry.SendSync(a, a, "svar.lpush('arr', 'list', '0', 'x')")
	require.NoError(t, err)
	after, _, _, err := env.Registry.SendSync(a, a, "svar.arrayGet('arr')")
	require.NoError(t, err)

	require.Equal(t, before, after)
}

func TestMutexLockUnlockThroughScript(t *testing.T) {
	env, a := bootstrap(t)

	handle, _, _, err := env.Registry.SendSync(a, a, "mutex.create(false)")
	require.NoError(t, err)
	require.NotEmpty(t, handle)

	script := "mutex.lock('" + handle + "'); mutex.unlock('" + handle + "'); 'ok'"
	result, _, _, err := env.Registry.SendSync(a, a, script)
	require.NoError(t, err)
	require.Equal(t, "ok", result)
}

func TestPoolCreatePostCollectThroughScript(t *testing.T) {
	env, a := bootstrap(t)

	handle, _, _, err := env.Registry.SendSync(a, a, "tpool.create(1, 1, '', 0)")
	require.NoError(t, err)
	require.NotEmpty(t, handle)

	postScript := "tpool.post('" + handle + "', '1+1', false)"
	jobIDStr, _, _, err := env.Registry.SendSync(a, a, postScript)
	require.NoError(t, err)
	require.NotEmpty(t, jobIDStr)

	require.Eventually(t, func() bool {
		waitScript := "tpool.wait('" + handle + "', [" + jobIDStr + "]).length"
		n, _, _, err := env.Registry.SendSync(a, a, waitScript)
		return err == nil && n == "1"
	}, 2*time.Second, time.Millisecond)

	getScript := "tpool.get('" + handle + "', " + jobIDStr + ")"
	result, _, _, err := env.Registry.SendSync(a, a, getScript)
	require.NoError(t, err)
	require.Equal(t, "2", result)
}

func TestBindFailsForUnknownActor(t *testing.T) {
	env := NewEnv()
	rt := goja.New()
	err := Bind(rt, 9999, env)
	require.Error(t, err)
}

func itoa(id uint64) string {
	return strconv.FormatUint(id, 10)
}
