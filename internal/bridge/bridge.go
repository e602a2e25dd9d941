// internal/bridge/bridge.go
package bridge

import (
	"pseudo/internal/runtime"
)

// Package bridge is the flat, synchronous embedding surface for hosts that
// drive the interpreter from an event loop: one buffered runtime behind a
// plain call set (Init, Load, Step, PushInput, PopOutput, ...). The exported
// functions route through a process-wide instance, matching hosts that want
// a single interpreter; embedders that need more construct Instances
// directly.

// Instance pairs one runtime with its buffered backend.
type Instance struct {
	rt *runtime.Runtime
	io *runtime.Buffered
}

func NewInstance() *Instance {
	io := runtime.NewBuffered()
	return &Instance{
		rt: runtime.New(io),
		io: io,
	}
}

// Load parses source and readies the instance; false on a parse error, with
// the diagnostic available through GetError.
func (inst *Instance) Load(source string) bool {
	inst.io.Clear()
	return inst.rt.Load(source)
}

// Step advances one statement and returns the new state.
func (inst *Instance) Step() runtime.State {
	return inst.rt.Step()
}

// Run steps until the program suspends, finishes or fails.
func (inst *Instance) Run() runtime.State {
	return inst.rt.Run()
}

// PushInput queues one input token and resumes a suspended runtime.
func (inst *Instance) PushInput(text string) {
	inst.io.PushInput(text)
	inst.rt.Resume()
}

func (inst *Instance) HasOutput() bool {
	return inst.io.HasOutput()
}

func (inst *Instance) PopOutput() (string, bool) {
	return inst.io.PopOutput()
}

func (inst *Instance) NeedsInput() bool {
	return inst.io.NeedsInput()
}

func (inst *Instance) GetError() string {
	return inst.rt.Error()
}

// GetLine is the 1-based line of the statement the runtime last started.
func (inst *Instance) GetLine() uint32 {
	return inst.rt.CurrentLine()
}

func (inst *Instance) RequestStop() {
	inst.rt.RequestStop()
}

// Reset drops queued I/O; the runtime itself resets on the next Load.
func (inst *Instance) Reset() {
	inst.io.Clear()
}

// Global surface

var global *Instance

// Init creates (or recreates) the process-wide instance.
func Init() {
	global = NewInstance()
}

func Load(source string) bool {
	if global == nil {
		return false
	}
	return global.Load(source)
}

func Step() runtime.State {
	if global == nil {
		return runtime.StateDone
	}
	return global.Step()
}

func Run() runtime.State {
	if global == nil {
		return runtime.StateDone
	}
	return global.Run()
}

func PushInput(text string) {
	if global != nil {
		global.PushInput(text)
	}
}

func HasOutput() bool {
	return global != nil && global.HasOutput()
}

func PopOutput() (string, bool) {
	if global == nil {
		return "", false
	}
	return global.PopOutput()
}

func NeedsInput() bool {
	return global != nil && global.NeedsInput()
}

func GetError() string {
	if global == nil {
		return ""
	}
	return global.GetError()
}

func GetLine() uint32 {
	if global == nil {
		return 0
	}
	return global.GetLine()
}

func RequestStop() {
	if global != nil {
		global.RequestStop()
	}
}

func Reset() {
	if global != nil {
		global.Reset()
	}
}
