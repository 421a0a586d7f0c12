package cdp1802

import "github.com/valerio/go-chipvm/chipvm/bit"

// execute runs the decoded instruction I,N for one execute cycle.
func (c *CPU) execute() {
	n := c.n
	switch c.i {
	case 0x0:
		if n == 0 {
			// IDL
			c.idle = true
			c.bus.Read(c.r[0])
			return
		}
		c.d = c.bus.Read(c.r[n]) // LDN
	case 0x1:
		c.r[n]++ // INC
	case 0x2:
		c.r[n]-- // DEC
	case 0x3:
		c.shortBranch(c.condition(n))
	case 0x4:
		c.d = c.bus.Read(c.r[n]) // LDA
		c.r[n]++
	case 0x5:
		c.bus.Write(c.r[n], c.d) // STR
	case 0x6:
		c.inputOutput(n)
	case 0x7:
		c.control(n)
	case 0x8:
		c.d = bit.Low(c.r[n]) // GLO
	case 0x9:
		c.d = bit.High(c.r[n]) // GHI
	case 0xA:
		c.r[n] = c.r[n]&0xFF00 | uint16(c.d) // PLO
	case 0xB:
		c.r[n] = c.r[n]&0x00FF | uint16(c.d)<<8 // PHI
	case 0xC:
		c.longInstruction(n)
	case 0xD:
		c.p = n // SEP
	case 0xE:
		c.x = n // SEX
	case 0xF:
		c.alu(n)
	}
}

// condition evaluates the branch test selected by the low three bits of N.
// Bit 3 of N negates it. Test 0 is always true, so 0x38 never branches.
func (c *CPU) condition(n uint8) bool {
	var cond bool
	switch n & 0x7 {
	case 0x0:
		cond = true
	case 0x1:
		cond = c.q
	case 0x2:
		cond = c.d == 0
	case 0x3:
		cond = c.df
	default:
		cond = c.EF(int(n&0x7) - 3)
	}
	if n&0x8 != 0 {
		return !cond
	}
	return cond
}

// shortBranch replaces the low byte of R(P) with the immediate byte when
// taken and steps over it otherwise.
func (c *CPU) shortBranch(taken bool) {
	pc := c.r[c.p]
	if taken {
		c.r[c.p] = pc&0xFF00 | uint16(c.bus.Read(pc))
		return
	}
	c.r[c.p] = pc + 1
}

// longInstruction spans two execute cycles. The first latches the high
// address byte in B; the second completes the branch or skip.
func (c *CPU) longInstruction(n uint8) {
	c.long = !c.long
	branch := n&0x4 == 0
	if c.long {
		if branch {
			c.b = c.bus.Read(c.r[c.p])
		}
		return
	}

	if branch {
		// C0-C3 LBR LBQ LBZ LBDF, C8-CB NLBR LBNQ LBNZ LBNF
		if c.condition(n) {
			c.r[c.p] = bit.Combine(c.b, c.bus.Read(c.r[c.p]+1))
		} else {
			c.r[c.p] += 2
		}
		return
	}

	var skip bool
	switch n {
	case 0x4:
		// NOP
	case 0x5:
		skip = !c.q // LSNQ
	case 0x6:
		skip = c.d != 0 // LSNZ
	case 0x7:
		skip = !c.df // LSNF
	case 0xC:
		skip = c.ie // LSIE
	case 0xD:
		skip = c.q // LSQ
	case 0xE:
		skip = c.d == 0 // LSZ
	case 0xF:
		skip = c.df // LSDF
	}
	if skip {
		c.r[c.p] += 2
	}
}

// inputOutput handles IRX, OUT 1-7 and INP 1-7. 0x68 is not an
// instruction on the 1802 and does nothing.
func (c *CPU) inputOutput(n uint8) {
	switch {
	case n == 0:
		c.r[c.x]++ // IRX
	case n < 8:
		c.devices.Output(n, c.bus.Read(c.r[c.x]))
		c.r[c.x]++
	case n > 8:
		value := c.devices.Input(n & 0x7)
		c.bus.Write(c.r[c.x], value)
		c.d = value
	}
}

func (c *CPU) control(n uint8) {
	switch n {
	case 0x0, 0x1:
		// RET, DIS
		value := c.bus.Read(c.r[c.x])
		c.r[c.x]++
		c.x, c.p = value>>4, value&0xF
		c.ie = n == 0x0
	case 0x2:
		c.d = c.bus.Read(c.r[c.x]) // LDXA
		c.r[c.x]++
	case 0x3:
		c.bus.Write(c.r[c.x], c.d) // STXD
		c.r[c.x]--
	case 0x4:
		c.add(c.bus.Read(c.r[c.x]), c.df) // ADC
	case 0x5:
		c.subtract(c.bus.Read(c.r[c.x]), c.d, c.df) // SDB
	case 0x6:
		carry := c.d&0x01 != 0 // SHRC
		c.d >>= 1
		if c.df {
			c.d |= 0x80
		}
		c.df = carry
	case 0x7:
		c.subtract(c.d, c.bus.Read(c.r[c.x]), c.df) // SMB
	case 0x8:
		c.bus.Write(c.r[c.x], c.t) // SAV
	case 0x9:
		// MARK
		c.t = c.x<<4 | c.p
		c.bus.Write(c.r[2], c.t)
		c.x = c.p
		c.r[2]--
	case 0xA:
		c.q = false // REQ
	case 0xB:
		c.q = true // SEQ
	case 0xC:
		c.add(c.immediate(), c.df) // ADCI
	case 0xD:
		c.subtract(c.immediate(), c.d, c.df) // SDBI
	case 0xE:
		carry := c.d&0x80 != 0 // SHLC
		c.d <<= 1
		if c.df {
			c.d |= 0x01
		}
		c.df = carry
	case 0xF:
		c.subtract(c.d, c.immediate(), c.df) // SMBI
	}
}

func (c *CPU) alu(n uint8) {
	switch n {
	case 0x0:
		c.d = c.bus.Read(c.r[c.x]) // LDX
	case 0x1:
		c.d |= c.bus.Read(c.r[c.x]) // OR
	case 0x2:
		c.d &= c.bus.Read(c.r[c.x]) // AND
	case 0x3:
		c.d ^= c.bus.Read(c.r[c.x]) // XOR
	case 0x4:
		c.add(c.bus.Read(c.r[c.x]), false) // ADD
	case 0x5:
		c.subtract(c.bus.Read(c.r[c.x]), c.d, true) // SD
	case 0x6:
		c.df = c.d&0x01 != 0 // SHR
		c.d >>= 1
	case 0x7:
		c.subtract(c.d, c.bus.Read(c.r[c.x]), true) // SM
	case 0x8:
		c.d = c.immediate() // LDI
	case 0x9:
		c.d |= c.immediate() // ORI
	case 0xA:
		c.d &= c.immediate() // ANI
	case 0xB:
		c.d ^= c.immediate() // XRI
	case 0xC:
		c.add(c.immediate(), false) // ADI
	case 0xD:
		c.subtract(c.immediate(), c.d, true) // SDI
	case 0xE:
		c.df = c.d&0x80 != 0 // SHL
		c.d <<= 1
	case 0xF:
		c.subtract(c.d, c.immediate(), true) // SMI
	}
}

// immediate reads M(R(P)) and advances R(P).
func (c *CPU) immediate() uint8 {
	value := c.bus.Read(c.r[c.p])
	c.r[c.p]++
	return value
}

func (c *CPU) add(value uint8, carry bool) {
	sum := uint16(c.d) + uint16(value)
	if carry {
		sum++
	}
	c.d = uint8(sum)
	c.df = sum > 0xFF
}

// subtract sets D to minuend - subtrahend. DF is the inverted borrow: set
// when no borrow occurred. noBorrow is the incoming DF for the with-borrow
// forms and true otherwise.
func (c *CPU) subtract(minuend, subtrahend uint8, noBorrow bool) {
	difference := int(minuend) - int(subtrahend)
	if !noBorrow {
		difference--
	}
	c.d = uint8(difference)
	c.df = difference >= 0
}
