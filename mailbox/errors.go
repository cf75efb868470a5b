package mailbox

import "github.com/joeycumines/go-scriptthread/scripterr"

// ErrLoopTerminated is returned by Submit once a Loop has begun (or
// finished) shutting down — mirroring eventloop's "submit after Shutdown"
// rejection, generalized to go-scriptthread's own error vocabulary.
var ErrLoopTerminated = scripterr.ErrLoopTerminated
