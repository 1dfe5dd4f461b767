package vm_test

import (
	"testing"

	"github.com/lookbusy1344/armv7-vcpu/vm"
)

func newTestVM(t *testing.T) *vm.VM {
	t.Helper()
	mem := vm.NewMemory(4096, 0, nil)
	return vm.NewVM(mem)
}

func TestExecuteAddImmediate(t *testing.T) {
	m := newTestVM(t)
	m.Memory.WriteWord(0, 0xE2800001) // ADD R0, R0, #1
	if err := m.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := m.CPU.GetRegister(0); got != 1 {
		t.Errorf("R0 = %d; want 1", got)
	}
	if got := m.CPU.GetRegister(vm.PC); got != 4 {
		t.Errorf("PC = 0x%X; want 0x4", got)
	}
}

func TestExecuteMovImmediate(t *testing.T) {
	m := newTestVM(t)
	m.Memory.WriteWord(0, 0xE3A01005) // MOV R1, #5
	if err := m.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := m.CPU.GetRegister(1); got != 5 {
		t.Errorf("R1 = %d; want 5", got)
	}
}

func TestExecuteCompareSetsZeroFlag(t *testing.T) {
	m := newTestVM(t)
	m.Memory.WriteWord(0, 0xE3500000) // CMP R0, #0
	if err := m.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	a := m.CPU.APSR()
	if !a.Z {
		t.Error("Z flag should be set after CMP R0,#0 with R0==0")
	}
}

func TestExecuteBranchLoop(t *testing.T) {
	m := newTestVM(t)
	// addr 0: ADD R0, R0, #1
	// addr 4: B back to addr 0 (offset -12, PC-relative from addr4+8=12 -> 12-12=0)
	m.Memory.WriteWord(0, 0xE2800001)
	m.Memory.WriteWord(4, 0xEAFFFFFD) // B -3 words: target = (4+8) - 12 = 0
	for i := 0; i < 6; i++ {
		if err := m.Step(); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}
	if got := m.CPU.GetRegister(0); got != 3 {
		t.Errorf("R0 = %d after 3 loop iterations; want 3", got)
	}
	if got := m.CPU.GetRegister(vm.PC); got != 0 {
		t.Errorf("PC = 0x%X; want 0x0 (parked after branch back)", got)
	}
}

func TestExecuteLoadStore(t *testing.T) {
	m := newTestVM(t)
	m.CPU.SetRegister(0, 0x12345678)
	m.CPU.SetRegister(1, 512)
	m.Memory.WriteWord(0, 0xE5810000) // STR R0, [R1]
	m.Memory.WriteWord(4, 0xE5912000) // LDR R2, [R1]
	if err := m.Step(); err != nil {
		t.Fatalf("Step (STR): %v", err)
	}
	if err := m.Step(); err != nil {
		t.Fatalf("Step (LDR): %v", err)
	}
	if got := m.CPU.GetRegister(2); got != 0x12345678 {
		t.Errorf("R2 = 0x%X; want 0x12345678", got)
	}
	word, err := m.Memory.ReadWord(512)
	if err != nil {
		t.Fatalf("ReadWord: %v", err)
	}
	if word != 0x12345678 {
		t.Errorf("mem[512] = 0x%X; want 0x12345678", word)
	}
}

func TestExecuteBFC(t *testing.T) {
	m := newTestVM(t)
	m.CPU.SetRegister(0, 0xFFFFFFFF)
	m.Memory.WriteWord(0, 0xE6C7001F) // BFC R0, #0, #8
	if err := m.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := m.CPU.GetRegister(0); got != 0xFFFFFF00 {
		t.Errorf("R0 = 0x%X; want 0xFFFFFF00", got)
	}
}

func TestExecuteSADD8(t *testing.T) {
	m := newTestVM(t)
	m.CPU.SetRegister(1, 0x01020304)
	m.CPU.SetRegister(2, 0x01010101)
	m.Memory.WriteWord(0, 0xE6010092) // SADD8 R0, R1, R2
	if err := m.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := m.CPU.GetRegister(0); got != 0x02030405 {
		t.Errorf("R0 = 0x%X; want 0x02030405", got)
	}
	a := m.CPU.APSR()
	for i, ge := range a.GE {
		if !ge {
			t.Errorf("GE[%d] = false; want true (no lane overflow)", i)
		}
	}
}

func TestExecuteThumbMovImmediate(t *testing.T) {
	m := newTestVM(t)
	m.CPU.SelectInstrSet(vm.ISetThumb)
	m.Memory.WriteHalfword(0, 0x2005) // MOVS R0, #5
	if err := m.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := m.CPU.GetRegister(0); got != 5 {
		t.Errorf("R0 = %d; want 5", got)
	}
	a := m.CPU.APSR()
	if a.Z {
		t.Error("Z should be clear for MOVS R0,#5")
	}
}

func TestExecutePushPop(t *testing.T) {
	m := newTestVM(t)
	m.CPU.SetSP(1024)
	m.CPU.SetRegister(0, 0xDEADBEEF)
	m.Memory.WriteWord(0, 0xE92D0001) // PUSH {R0}
	m.Memory.WriteWord(4, 0xE8BD0002) // POP {R1}
	if err := m.Step(); err != nil {
		t.Fatalf("Step (PUSH): %v", err)
	}
	if got := m.CPU.GetRegister(vm.SP); got != 1020 {
		t.Errorf("SP after PUSH = %d; want 1020", got)
	}
	if err := m.Step(); err != nil {
		t.Fatalf("Step (POP): %v", err)
	}
	if got := m.CPU.GetRegister(1); got != 0xDEADBEEF {
		t.Errorf("R1 after POP = 0x%X; want 0xDEADBEEF", got)
	}
	if got := m.CPU.GetRegister(vm.SP); got != 1024 {
		t.Errorf("SP after POP = %d; want 1024", got)
	}
}

func TestExecuteITSkipsOnConditionFail(t *testing.T) {
	m := newTestVM(t)
	m.CPU.SelectInstrSet(vm.ISetThumb)
	m.Memory.WriteHalfword(0, 0xBF08) // IT EQ
	m.Memory.WriteHalfword(2, 0x2001) // MOV R0, #1 (conditional on EQ)
	if err := m.Step(); err != nil {
		t.Fatalf("Step (IT): %v", err)
	}
	if !m.CPU.InIT() {
		t.Fatal("expected CPU to be in an IT block after IT EQ")
	}
	if err := m.Step(); err != nil {
		t.Fatalf("Step (MOVEQ): %v", err)
	}
	if got := m.CPU.GetRegister(0); got != 0 {
		t.Errorf("R0 = %d; want 0 (MOVEQ should not execute with Z clear)", got)
	}
	if m.CPU.InIT() {
		t.Error("IT block should be exhausted after its single governed instruction")
	}
}

func TestExecuteITExecutesOnConditionPass(t *testing.T) {
	m := newTestVM(t)
	m.CPU.SelectInstrSet(vm.ISetThumb)
	a := m.CPU.APSR()
	a.Z = true
	m.CPU.SetAPSR(a)
	m.Memory.WriteHalfword(0, 0xBF08) // IT EQ
	m.Memory.WriteHalfword(2, 0x2001) // MOV R0, #1 (conditional on EQ)
	if err := m.Step(); err != nil {
		t.Fatalf("Step (IT): %v", err)
	}
	if err := m.Step(); err != nil {
		t.Fatalf("Step (MOVEQ): %v", err)
	}
	if got := m.CPU.GetRegister(0); got != 1 {
		t.Errorf("R0 = %d; want 1 (MOVEQ should execute with Z set)", got)
	}
}

func TestExecuteUADD16GEReflectsUnsignedCarry(t *testing.T) {
	m := newTestVM(t)
	m.CPU.SetRegister(1, 0x00010001)
	m.CPU.SetRegister(2, 0x00010001)
	m.Memory.WriteWord(0, 0xE6210012) // UADD16 R0, R1, R2
	if err := m.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	a := m.CPU.APSR()
	if a.GE[0] || a.GE[1] || a.GE[2] || a.GE[3] {
		t.Error("GE should be clear: 1+1 does not carry out of a 16-bit lane")
	}

	m2 := newTestVM(t)
	m2.CPU.SetRegister(1, 0x0000FFFF)
	m2.CPU.SetRegister(2, 0x00000001)
	m2.Memory.WriteWord(0, 0xE6210012) // UADD16 R0, R1, R2
	if err := m2.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	a2 := m2.CPU.APSR()
	if !a2.GE[0] || !a2.GE[1] {
		t.Error("GE should be set for lane 0: 0xFFFF+1 carries out of a 16-bit lane")
	}
	if a2.GE[2] || a2.GE[3] {
		t.Error("GE should be clear for lane 1: 0+0 does not carry")
	}
}

func TestExecuteBLLinkAddressARM(t *testing.T) {
	m := newTestVM(t)
	m.Memory.WriteWord(0, 0xEB000000) // BL #4 (branch to addr 8)
	if err := m.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := m.CPU.GetLR(); got != 4 {
		t.Errorf("LR = 0x%X; want 0x4 (fetch_addr+4, not +8)", got)
	}
	if got := m.CPU.GetPC(); got != 8 {
		t.Errorf("PC = 0x%X; want 0x8", got)
	}
}

func TestExecuteTBB(t *testing.T) {
	m := newTestVM(t)
	m.CPU.SelectInstrSet(vm.ISetThumb)
	m.CPU.SetRegister(0, 8) // base of the table at address 8
	m.CPU.SetRegister(1, 1) // index selects table[1]
	m.Memory.WriteHalfword(0, 0xE8D0) // TBB [R0, R1]
	m.Memory.WriteHalfword(2, 0xF001)
	m.Memory.WriteByte(9, 3) // table[1] = 3 -> PC += 2*3
	if err := m.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := m.CPU.GetPC(); got != 4+2*3 {
		t.Errorf("PC = 0x%X; want 0x%X", got, 4+2*3)
	}
}
