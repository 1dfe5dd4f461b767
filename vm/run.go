package vm

import "fmt"

// VM ties together the CPU, Memory and fetch/decode/execute cycle of
// spec.md §7, generalized from the teacher's vm/vm.go orchestration of
// CPU+Memory+Step/Run.
type VM struct {
	CPU    *CPU
	Memory *Memory

	// MaxCycles, if non-zero, bounds Run's loop — the teacher's
	// cycle-limit safety valve against runaway programs with no halt
	// instruction.
	MaxCycles uint64

	// Halted is set once Step reports a terminal error, per spec.md §7's
	// "decode/execute errors halt the machine" behavior: the fetch/run
	// loop does not attempt to recover or skip the failing instruction.
	Halted    bool
	HaltError error
}

// NewVM creates a VM over the given memory, with a freshly reset CPU.
func NewVM(mem *Memory) *VM {
	return &VM{CPU: NewCPU(), Memory: mem}
}

// LoadImage loads a test image into local memory and positions PC at
// entry, per spec.md §6.
func (v *VM) LoadImage(image []byte, entry uint32) error {
	if err := v.Memory.LoadImage(image); err != nil {
		return err
	}
	v.CPU.SetRegister(PC, entry)
	return nil
}

// Step performs one fetch/decode/execute cycle, per spec.md §7: PC is
// read, the instruction at PC is decoded, PC is advanced past it before
// execution (so that an instruction observing PC sees its own address
// plus the pipeline bias of spec.md §3 invariant 1), then Execute runs.
func (v *VM) Step() error {
	if v.Halted {
		return v.HaltError
	}

	addr := v.CPU.GetRegister(PC)
	inst, size, err := Decode(v.Memory, v.CPU, addr)
	if err != nil {
		v.Halted = true
		v.HaltError = fmt.Errorf("decode at 0x%08X: %w", addr, err)
		return v.HaltError
	}

	bias := uint32(8)
	if v.CPU.ISetState() == ISetThumb {
		bias = 4
	}
	biased := addr + bias
	v.CPU.SetRegister(PC, biased) // instructions observe PC as fetch address + pipeline bias

	if err := Execute(v.CPU, v.Memory, inst); err != nil {
		v.Halted = true
		v.HaltError = fmt.Errorf("execute at 0x%08X (opcode %d): %w", addr, inst.Op, err)
		return v.HaltError
	}

	// If the executed instruction did not itself branch (PC still reads
	// the biased fetch-time value set above), advance to the next
	// sequential instruction.
	if v.CPU.GetRegister(PC) == biased {
		v.CPU.SetRegister(PC, addr+size)
	}

	v.CPU.IncrementCycles(1)
	return nil
}

// Run steps the machine until it halts (decode/execute error) or
// MaxCycles is reached (if non-zero).
func (v *VM) Run() error {
	for {
		if v.MaxCycles != 0 && v.CPU.Cycles >= v.MaxCycles {
			return fmt.Errorf("%w: exceeded max cycles %d", ErrBus, v.MaxCycles)
		}
		if err := v.Step(); err != nil {
			return err
		}
	}
}
