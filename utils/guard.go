package utils

// Guard runs a cleanup when a function that builds something up step by step fails part way,
// e.g. detaching the meshes a batch has already attached. Use it as:
//
//	guard := NewGuard(func() { detachAll() })
//	defer guard.OnFail()
//	if err != nil { return err }
//	guard.Success()
//	return nil
type Guard struct {
	OnFail  func()
	success bool
}

// NewGuard returns a Guard that runs onFailCleanup from OnFail unless Success was called.
func NewGuard(onFailCleanup func()) *Guard {
	ret := &Guard{}
	ret.OnFail = func() {
		if !ret.success {
			onFailCleanup()
		}
	}
	return ret
}

// Success marks the guarded work as done so OnFail does nothing.
func (guard *Guard) Success() {
	guard.success = true
}
