package bytecode

import "fmt"

// Opcode identifies a single bytecode instruction. Values are positional
// per spec: the numeric assignment below, first to last, is part of the
// wire format and must never be reordered.
type Opcode byte

const (
	OpConcat Opcode = iota
	OpJump
	OpJz
	OpPushA
	OpCall
	OpReturn
	OpStart
	OpNop
	OpStop
	OpErr
	OpAtoi
	OpAtof
	OpItof
	OpFtoi
	OpStri
	OpStrf
	OpDup
	OpDupN
	OpFAdd
	OpFSub
	OpFMul
	OpFDiv
	OpFInf
	OpFInfEq
	OpFSup
	OpFSupEq
	OpFCos
	OpFSin
	OpAlloc
	OpAllocN
	OpFree
	OpEqual
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpInf
	OpInfEq
	OpSup
	OpSupEq
	OpNot
	OpLoad
	OpLoadN
	OpSwap
	OpDebug
	OpWriteI
	OpWritelnI
	OpWriteF
	OpWritelnF
	OpWriteS
	OpWritelnS
	OpRead
	OpPadd
	OpPop
	OpPopN
	OpPushI
	OpPushN
	OpPushF
	OpPushS
	OpPushG
	OpPushL
	OpPushSP
	OpPushFP
	OpPushGP
	OpStore
	OpStoreL
	OpStoreG
	OpStoreN

	opcodeCount
)

// OperandShape classifies the operand an instruction's record carries.
type OperandShape uint8

const (
	// ShapeNone marks stack-only instructions with no operand bytes.
	ShapeNone OperandShape = iota
	// ShapeI32 marks a 4-byte big-endian signed integer immediate.
	ShapeI32
	// ShapeF64 marks an 8-byte big-endian IEEE-754 bit pattern.
	ShapeF64
	// ShapeAddress marks an 8-byte big-endian host-width address,
	// written by the assembler from either a numeric literal or a
	// resolved label.
	ShapeAddress
	// ShapeString marks a length-prefixed byte string.
	ShapeString
)

type opcodeInfo struct {
	name  string
	shape OperandShape
}

var opcodeTable = [opcodeCount]opcodeInfo{
	OpConcat:   {"concat", ShapeNone},
	OpJump:     {"jump", ShapeAddress},
	OpJz:       {"jz", ShapeAddress},
	OpPushA:    {"pusha", ShapeAddress},
	OpCall:     {"call", ShapeNone},
	OpReturn:   {"return", ShapeNone},
	OpStart:    {"start", ShapeNone},
	OpNop:      {"nop", ShapeNone},
	OpStop:     {"stop", ShapeNone},
	OpErr:      {"err", ShapeString},
	OpAtoi:     {"atoi", ShapeNone},
	OpAtof:     {"atof", ShapeNone},
	OpItof:     {"itof", ShapeNone},
	OpFtoi:     {"ftoi", ShapeNone},
	OpStri:     {"stri", ShapeNone},
	OpStrf:     {"strf", ShapeNone},
	OpDup:      {"dup", ShapeI32},
	OpDupN:     {"dupn", ShapeNone},
	OpFAdd:     {"fadd", ShapeNone},
	OpFSub:     {"fsub", ShapeNone},
	OpFMul:     {"fmul", ShapeNone},
	OpFDiv:     {"fdiv", ShapeNone},
	OpFInf:     {"finf", ShapeNone},
	OpFInfEq:   {"finfeq", ShapeNone},
	OpFSup:     {"fsup", ShapeNone},
	OpFSupEq:   {"fsupeq", ShapeNone},
	OpFCos:     {"fcos", ShapeNone},
	OpFSin:     {"fsin", ShapeNone},
	OpAlloc:    {"alloc", ShapeAddress},
	OpAllocN:   {"allocn", ShapeNone},
	OpFree:     {"free", ShapeNone},
	OpEqual:    {"equal", ShapeNone},
	OpAdd:      {"add", ShapeNone},
	OpSub:      {"sub", ShapeNone},
	OpMul:      {"mul", ShapeNone},
	OpDiv:      {"div", ShapeNone},
	OpMod:      {"mod", ShapeNone},
	OpInf:      {"inf", ShapeNone},
	OpInfEq:    {"infeq", ShapeNone},
	OpSup:      {"sup", ShapeNone},
	OpSupEq:    {"supeq", ShapeNone},
	OpNot:      {"not", ShapeNone},
	OpLoad:     {"load", ShapeI32},
	OpLoadN:    {"loadn", ShapeNone},
	OpSwap:     {"swap", ShapeNone},
	OpDebug:    {"debug", ShapeNone},
	OpWriteI:   {"writei", ShapeNone},
	OpWritelnI: {"writelni", ShapeNone},
	OpWriteF:   {"writef", ShapeNone},
	OpWritelnF: {"writelnf", ShapeNone},
	OpWriteS:   {"writes", ShapeNone},
	OpWritelnS: {"writelns", ShapeNone},
	OpRead:     {"read", ShapeNone},
	OpPadd:     {"padd", ShapeNone},
	OpPop:      {"pop", ShapeI32},
	OpPopN:     {"popn", ShapeNone},
	OpPushI:    {"pushi", ShapeI32},
	OpPushN:    {"pushn", ShapeI32},
	OpPushF:    {"pushf", ShapeF64},
	OpPushS:    {"pushs", ShapeString},
	OpPushG:    {"pushg", ShapeI32},
	OpPushL:    {"pushl", ShapeI32},
	OpPushSP:   {"pushsp", ShapeNone},
	OpPushFP:   {"pushfp", ShapeNone},
	OpPushGP:   {"pushgp", ShapeNone},
	OpStore:    {"store", ShapeI32},
	OpStoreL:   {"storel", ShapeI32},
	OpStoreG:   {"storeg", ShapeI32},
	OpStoreN:   {"storen", ShapeNone},
}

// mnemonicTable maps the lowercase textual mnemonic to its opcode,
// built once from opcodeTable.
var mnemonicTable = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeTable))
	for op, info := range opcodeTable {
		m[info.name] = Opcode(op)
	}
	return m
}()

// Name returns the lowercase mnemonic for op.
func (op Opcode) Name() string {
	if int(op) >= len(opcodeTable) {
		return fmt.Sprintf("opcode(%d)", byte(op))
	}
	return opcodeTable[op].name
}

// Shape returns the operand shape for op.
func (op Opcode) Shape() OperandShape {
	if int(op) >= len(opcodeTable) {
		return ShapeNone
	}
	return opcodeTable[op].shape
}

// Valid reports whether op is a recognized opcode.
func (op Opcode) Valid() bool {
	return int(op) < len(opcodeTable)
}

func (op Opcode) String() string {
	return op.Name()
}

// Lookup resolves a lowercase mnemonic to its opcode. The match is
// exact; callers lowercase the mnemonic first.
func Lookup(mnemonic string) (Opcode, bool) {
	op, ok := mnemonicTable[mnemonic]
	return op, ok
}

// Count returns the number of defined opcodes.
func Count() int {
	return int(opcodeCount)
}
