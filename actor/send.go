package actor

import (
	"github.com/joeycumines/go-scriptthread/scripterr"
	"github.com/joeycumines/go-scriptthread/vm"
)

// evalJob runs script on in, reporting the three-tuple every interpreter
// carries: return code, result string, and (on error) errorCode/errorInfo.
func evalJob(in *vm.Interpreter, script string) (c code, result, errCode, errInfo string) {
	v, err := in.Eval(script)
	if err != nil {
		return codeError, "", "EVAL", err.Error()
	}
	return codeOK, v.String(), "", ""
}

// SendSync resolves the target, executes inline if the target is the
// caller itself, otherwise enqueues a job and blocks on an arena slot until
// the target (or the death walk) completes it.
func (r *Registry) SendSync(sourceID, targetID uint64, script string) (okResult string, errorCode string, errorInfo string, err error) {
	r.mu.Lock()
	target, ok := r.lookupLocked(targetID)
	if !ok {
		r.mu.Unlock()
		return "", "", "", scripterr.ErrInvalidTarget
	}

	if targetID == sourceID {
		if target.eventMark > 0 && target.pendingEvents > 0 {
			target.pendingEvents--
		}
		in := target.interp
		r.mu.Unlock()
		c, result, ec, ei := evalJob(in, script)
		in.SetResult(result)
		if c != codeOK {
			in.SetError(ec, ei)
			return "", ec, ei, &scripterr.ScriptError{Code: ec, Info: ei}
		}
		return result, "", "", nil
	}

	ticket := r.allocTicket()
	s := &slot{ticket: ticket, source: sourceID, dest: targetID}
	r.slots[ticket] = s
	loop := target.interp.Loop
	targetInterp := target.interp
	r.mu.Unlock()

	submitErr := loop.Submit(func() {
		c, result, ec, ei := evalJob(targetInterp, script)
		r.mu.Lock()
		if cur, ok := r.slots[ticket]; ok && !cur.done {
			cur.done = true
			cur.code = c
			cur.result = result
			cur.errorCode = ec
			cur.errorInfo = ei
		}
		r.cond.Broadcast()
		r.mu.Unlock()
	})
	if submitErr != nil {
		r.mu.Lock()
		delete(r.slots, ticket)
		r.mu.Unlock()
		return "", "", "", scripterr.ErrInvalidTarget
	}

	result := r.waitSlot(ticket)
	if result == nil {
		return "", "", "", scripterr.ErrInvalidTarget
	}

	src, srcErr := r.interpreterOf(sourceID)
	if srcErr == nil {
		src.SetResult(result.result)
	}

	switch result.code {
	case codeTargetDied:
		die := &scripterr.TargetDied{TargetID: targetID}
		if srcErr == nil {
			src.SetError("TARGETDIED", die.Error())
		}
		return "", "TARGETDIED", die.Error(), die
	case codeError:
		if srcErr == nil {
			src.SetError(result.errorCode, result.errorInfo)
		}
		return "", result.errorCode, result.errorInfo, &scripterr.ScriptError{Code: result.errorCode, Info: result.errorInfo}
	default:
		return result.result, "", "", nil
	}
}

// SendAsync enqueues the job, applying event-mark backpressure if the
// target has a positive cap, and returns without waiting for a result.
func (r *Registry) SendAsync(sourceID, targetID uint64, script string) error {
	r.mu.Lock()
	target, ok := r.lookupLocked(targetID)
	if !ok {
		r.mu.Unlock()
		return scripterr.ErrInvalidTarget
	}
	for target.eventMark > 0 && target.pendingEvents > target.eventMark {
		r.cond.Wait()
		target, ok = r.lookupLocked(targetID)
		if !ok {
			r.mu.Unlock()
			return scripterr.ErrInvalidTarget
		}
	}
	target.pendingEvents++
	loop := target.interp.Loop
	targetInterp := target.interp
	r.mu.Unlock()

	err := loop.Submit(func() {
		c, result, ec, ei := evalJob(targetInterp, script)
		targetInterp.SetResult(result)
		if c != codeOK {
			targetInterp.SetError(ec, ei)
			r.reportErrorFor(targetID, ei)
		}
		r.mu.Lock()
		if rec, ok := r.records[targetID]; ok {
			rec.pendingEvents--
		}
		r.cond.Broadcast()
		r.mu.Unlock()
	})
	if err != nil {
		r.mu.Lock()
		target.pendingEvents--
		r.mu.Unlock()
		return scripterr.ErrInvalidTarget
	}
	return nil
}

// SendAsyncWithCallback is the promise-like path: the target evaluates
// script, and its result/errorCode/errorInfo are then delivered back to
// the origin as a second async job that sets varName (and, on error, the
// origin's errorCode/errorInfo globals).
func (r *Registry) SendAsyncWithCallback(originID, targetID uint64, script, varName string) error {
	r.mu.Lock()
	target, ok := r.lookupLocked(targetID)
	if !ok {
		r.mu.Unlock()
		return scripterr.ErrInvalidTarget
	}
	loop := target.interp.Loop
	targetInterp := target.interp
	r.mu.Unlock()

	return loop.Submit(func() {
		c, result, ec, ei := evalJob(targetInterp, script)
		targetInterp.SetResult(result)
		if c != codeOK {
			targetInterp.SetError(ec, ei)
			r.reportErrorFor(targetID, ei)
		}
		r.deliverCallback(originID, varName, c, result, ec, ei)
	})
}

func (r *Registry) deliverCallback(originID uint64, varName string, c code, result, errCode, errInfo string) {
	r.mu.Lock()
	origin, ok := r.lookupLocked(originID)
	if !ok {
		r.mu.Unlock()
		return
	}
	loop := origin.interp.Loop
	originInterp := origin.interp
	r.mu.Unlock()

	_ = loop.Submit(func() {
		_ = originInterp.Runtime.Set(varName, result)
		if c != codeOK {
			_ = originInterp.Runtime.Set("errorCode", errCode)
			_ = originInterp.Runtime.Set("errorInfo", errInfo)
			originInterp.SetError(errCode, errInfo)
		}
		originInterp.SetResult(result)
	})
}

// Transfer moves a channel between actors: the source must hold ch
// unshared and registered; it is detached here and handed to the target
// via an arena slot exactly like a SendSync result, so Transfer
// participates in the same death-of-peer handling.
func (r *Registry) Transfer(sourceID, targetID uint64, ch *vm.Channel) error {
	if ch.IsShared() {
		return scripterr.ErrChannelShared
	}
	if !ch.IsRegistered() {
		return scripterr.ErrChannelNotRegistered
	}

	r.mu.Lock()
	source, ok := r.lookupLocked(sourceID)
	if !ok {
		r.mu.Unlock()
		return scripterr.ErrInvalidTarget
	}
	target, ok := r.lookupLocked(targetID)
	if !ok {
		r.mu.Unlock()
		return scripterr.ErrInvalidTarget
	}
	sourceInterp := source.interp
	loop := target.interp.Loop
	targetInterp := target.interp
	r.mu.Unlock()

	ch.ClearHandlers()
	if err := ch.CutChannel(); err != nil {
		return err
	}

	ticket := r.allocTicket()
	s := &slot{ticket: ticket, source: sourceID, dest: targetID, channel: ch}
	r.mu.Lock()
	r.slots[ticket] = s
	r.mu.Unlock()

	submitErr := loop.Submit(func() {
		r.mu.Lock()
		cur, ok := r.slots[ticket]
		r.mu.Unlock()
		if !ok {
			return
		}

		var outcome code
		var errInfo string
		if _, exists := targetInterp.Channel(ch.Name); exists {
			outcome = codeError
			errInfo = scripterr.ErrChannelExists.Error()
		} else if err := ch.SpliceChannel(targetInterp); err != nil {
			outcome = codeError
			errInfo = err.Error()
		} else {
			outcome = codeOK
		}

		r.mu.Lock()
		if cur, ok := r.slots[ticket]; ok && !cur.done {
			cur.done = true
			cur.code = outcome
			cur.errorInfo = errInfo
		}
		r.cond.Broadcast()
		r.mu.Unlock()
	})
	if submitErr != nil {
		r.mu.Lock()
		delete(r.slots, ticket)
		r.mu.Unlock()
		_ = ch.SpliceChannel(sourceInterp)
		return scripterr.ErrInvalidTarget
	}

	result := r.waitSlot(ticket)
	if result == nil || result.code != codeOK {
		_ = ch.SpliceChannel(sourceInterp)
		if result != nil && result.code == codeTargetDied {
			return &scripterr.TargetDied{TargetID: targetID}
		}
		if result != nil {
			return scripterr.ErrChannelExists
		}
		return scripterr.ErrInvalidTarget
	}
	return nil
}
