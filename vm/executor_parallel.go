package vm

// execParallel implements the SIMD-lane parallel arithmetic family of
// spec.md §4.7: each opcode splits Rn/Rm into two 16-bit or four 8-bit
// lanes, applies add/subtract per lane, and (for the non-halved, non-
// saturating forms) sets one GE bit per lane: the lane's carry-out for
// unsigned adds, a non-negative lane result for every other form.
// Halved (SH*/UH*) variants divide the lane result by two and never
// touch GE.
func execParallel(cpu *CPU, inst *Instruction) error {
	d := inst.Operands[0].Reg
	n := cpu.GetRegister(inst.Operands[1].Reg)
	m := cpu.GetRegister(inst.Operands[2].Reg)

	switch inst.Op {
	case OpSADD16, OpSSUB16, OpSASX, OpSSAX, OpUADD16, OpUSUB16, OpUASX, OpUSAX,
		OpSHADD16, OpSHSUB16, OpUHADD16, OpUHSUB16:
		result, ge := parallelHalfwordOp(inst.Op, n, m)
		cpu.SetRegister(d, result)
		if ge != nil {
			a := cpu.APSR()
			a.GE[0], a.GE[1] = ge[0], ge[0]
			a.GE[2], a.GE[3] = ge[1], ge[1]
			cpu.SetAPSR(a)
		}
	default:
		result, ge := parallelByteOp(inst.Op, n, m)
		cpu.SetRegister(d, result)
		if ge != nil {
			a := cpu.APSR()
			copy(a.GE[:], ge[:])
			cpu.SetAPSR(a)
		}
	}
	return nil
}

func lane16(v uint32, i int) uint32 { return (v >> uint(i*16)) & 0xFFFF }

func parallelHalfwordOp(op Opcode, n, m uint32) (uint32, *[2]bool) {
	var lo, hi uint32
	var geLo, geHi bool
	halved := false
	switch op {
	case OpSHADD16, OpSHSUB16, OpUHADD16, OpUHSUB16:
		halved = true
	}

	compute := func(a, b uint32, signed bool, sub bool) (uint32, bool) {
		var x, y int64
		if signed {
			x, y = int64(int16(a)), int64(int16(b))
		} else {
			x, y = int64(a), int64(b)
		}
		var r int64
		if sub {
			r = x - y
		} else {
			r = x + y
		}
		if halved {
			r /= 2
		}
		// GE is the unsigned carry-out for an unsigned add lane (spec.md
		// §4.7/§9); signed lanes and unsigned subtract lanes instead test
		// for a non-negative (borrow-free) result.
		ge := r >= 0
		if !signed && !sub {
			ge = r >= 1<<16
		}
		return uint32(r) & 0xFFFF, ge
	}

	n0, n1 := lane16(n, 0), lane16(n, 1)
	m0, m1 := lane16(m, 0), lane16(m, 1)

	switch op {
	case OpSADD16, OpUADD16, OpSHADD16, OpUHADD16:
		signed := op == OpSADD16 || op == OpSHADD16
		lo, geLo = compute(n0, m0, signed, false)
		hi, geHi = compute(n1, m1, signed, false)
	case OpSSUB16, OpUSUB16, OpSHSUB16, OpUHSUB16:
		signed := op == OpSSUB16 || op == OpSHSUB16
		lo, geLo = compute(n0, m0, signed, true)
		hi, geHi = compute(n1, m1, signed, true)
	case OpSASX, OpUASX:
		signed := op == OpSASX
		lo, geLo = compute(n0, m1, signed, true)
		hi, geHi = compute(n1, m0, signed, false)
	case OpSSAX, OpUSAX:
		signed := op == OpSSAX
		lo, geLo = compute(n0, m1, signed, false)
		hi, geHi = compute(n1, m0, signed, true)
	}

	result := lo | hi<<16
	if halved {
		return result, nil
	}
	return result, &[2]bool{geLo, geHi}
}

func lane8(v uint32, i int) uint32 { return (v >> uint(i*8)) & 0xFF }

func parallelByteOp(op Opcode, n, m uint32) (uint32, *[4]bool) {
	halved := op == OpSHADD8 || op == OpSHSUB8 || op == OpUHADD8 || op == OpUHSUB8
	signed := op == OpSADD8 || op == OpSSUB8 || op == OpSHADD8 || op == OpSHSUB8
	sub := op == OpSSUB8 || op == OpUSUB8 || op == OpSHSUB8 || op == OpUHSUB8

	var result uint32
	var ge [4]bool
	for i := 0; i < 4; i++ {
		a, b := lane8(n, i), lane8(m, i)
		var x, y int64
		if signed {
			x, y = int64(int8(a)), int64(int8(b))
		} else {
			x, y = int64(a), int64(b)
		}
		var r int64
		if sub {
			r = x - y
		} else {
			r = x + y
		}
		if halved {
			r /= 2
		}
		ge[i] = r >= 0
		if !signed && !sub {
			ge[i] = r >= 1<<8
		}
		result |= (uint32(r) & 0xFF) << uint(i*8)
	}
	if halved {
		return result, nil
	}
	return result, &ge
}
