package runtime

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/tinyvm/stackvm/pkg/bytecode"
	"github.com/tinyvm/stackvm/pkg/memory"
	"github.com/tinyvm/stackvm/pkg/value"
	"github.com/tinyvm/stackvm/pkg/vmerr"
)

// execute dispatches one fetched opcode to its handler. A non-nil
// return becomes the engine's error-slot value for this cycle.
func (vm *VM) execute(op bytecode.Opcode) error {
	switch op {
	case bytecode.OpConcat:
		return vm.opConcat()
	case bytecode.OpJump:
		return vm.opJump()
	case bytecode.OpJz:
		return vm.opJz()
	case bytecode.OpPushA:
		return vm.opPushA()
	case bytecode.OpCall:
		return vm.opCall()
	case bytecode.OpReturn:
		return vm.opReturn()
	case bytecode.OpStart:
		return vm.opStart()
	case bytecode.OpNop:
		return nil
	case bytecode.OpStop:
		vm.reg.Stop = true
		return nil
	case bytecode.OpErr:
		return vm.opErr()
	case bytecode.OpAtoi:
		return vm.opAtoi()
	case bytecode.OpAtof:
		return vm.opAtof()
	case bytecode.OpItof:
		return vm.opItof()
	case bytecode.OpFtoi:
		return vm.opFtoi()
	case bytecode.OpStri:
		return vm.opStri()
	case bytecode.OpStrf:
		return vm.opStrf()
	case bytecode.OpDup:
		return vm.opDup()
	case bytecode.OpDupN:
		return vm.opDupN()
	case bytecode.OpFAdd:
		return vm.floatBinOp(func(a, b float64) float64 { return a + b })
	case bytecode.OpFSub:
		return vm.floatBinOp(func(a, b float64) float64 { return a - b })
	case bytecode.OpFMul:
		return vm.floatBinOp(func(a, b float64) float64 { return a * b })
	case bytecode.OpFDiv:
		return vm.floatBinOp(func(a, b float64) float64 { return a / b })
	case bytecode.OpFInf:
		return vm.floatCompare(func(a, b float64) bool { return a < b })
	case bytecode.OpFInfEq:
		return vm.floatCompare(func(a, b float64) bool { return a <= b })
	case bytecode.OpFSup:
		return vm.floatCompare(func(a, b float64) bool { return a > b })
	case bytecode.OpFSupEq:
		return vm.floatCompare(func(a, b float64) bool { return a >= b })
	case bytecode.OpFCos:
		return vm.floatUnary(math.Cos)
	case bytecode.OpFSin:
		return vm.floatUnary(math.Sin)
	case bytecode.OpAlloc:
		return vm.opAlloc()
	case bytecode.OpAllocN:
		return vm.opAllocN()
	case bytecode.OpFree:
		return vm.opFree()
	case bytecode.OpEqual:
		return vm.opEqual()
	case bytecode.OpAdd:
		return vm.intBinOp(func(a, b int64) (int64, error) { return a + b, nil })
	case bytecode.OpSub:
		return vm.intBinOp(func(a, b int64) (int64, error) { return a - b, nil })
	case bytecode.OpMul:
		return vm.intBinOp(func(a, b int64) (int64, error) { return a * b, nil })
	case bytecode.OpDiv:
		return vm.intBinOp(floorDiv)
	case bytecode.OpMod:
		return vm.intBinOp(floorMod)
	case bytecode.OpInf:
		return vm.intCompare(func(a, b int64) bool { return a < b })
	case bytecode.OpInfEq:
		return vm.intCompare(func(a, b int64) bool { return a <= b })
	case bytecode.OpSup:
		return vm.intCompare(func(a, b int64) bool { return a > b })
	case bytecode.OpSupEq:
		return vm.intCompare(func(a, b int64) bool { return a >= b })
	case bytecode.OpNot:
		return vm.opNot()
	case bytecode.OpLoad:
		return vm.opLoad()
	case bytecode.OpLoadN:
		return vm.opLoadN()
	case bytecode.OpSwap:
		return vm.opSwap()
	case bytecode.OpDebug:
		return nil
	case bytecode.OpWriteI:
		return vm.writeInteger(false)
	case bytecode.OpWritelnI:
		return vm.writeInteger(true)
	case bytecode.OpWriteF:
		return vm.writeFloat(false)
	case bytecode.OpWritelnF:
		return vm.writeFloat(true)
	case bytecode.OpWriteS:
		return vm.writeString(false)
	case bytecode.OpWritelnS:
		return vm.writeString(true)
	case bytecode.OpRead:
		return vm.opRead()
	case bytecode.OpPadd:
		return vm.opPadd()
	case bytecode.OpPop:
		return vm.opPop()
	case bytecode.OpPopN:
		return vm.opPopN()
	case bytecode.OpPushI:
		return vm.opPushI()
	case bytecode.OpPushN:
		return vm.opPushN()
	case bytecode.OpPushF:
		return vm.opPushF()
	case bytecode.OpPushS:
		return vm.opPushS()
	case bytecode.OpPushG:
		return vm.opPushG()
	case bytecode.OpPushL:
		return vm.opPushL()
	case bytecode.OpPushSP:
		vm.stack.Push(value.StackAddr(vm.reg.StackPointer()))
		return nil
	case bytecode.OpPushFP:
		vm.stack.Push(value.StackAddr(vm.reg.FramePointer))
		return nil
	case bytecode.OpPushGP:
		vm.stack.Push(value.StackAddr(vm.reg.GlobalPointer))
		return nil
	case bytecode.OpStore:
		return vm.opStore()
	case bytecode.OpStoreL:
		return vm.opStoreL()
	case bytecode.OpStoreG:
		return vm.opStoreG()
	case bytecode.OpStoreN:
		return vm.opStoreN()
	default:
		return &vmerr.InvalidOperand{Op: op.Name(), Reason: "unimplemented opcode"}
	}
}

func (vm *VM) opConcat() error {
	b, err := vm.stack.PopAs(value.AddressString)
	if err != nil {
		return err
	}
	a, err := vm.stack.PopAs(value.AddressString)
	if err != nil {
		return err
	}
	aBytes, err := vm.strings.Bytes(a.Address())
	if err != nil {
		return err
	}
	bBytes, err := vm.strings.Bytes(b.Address())
	if err != nil {
		return err
	}
	joined := make([]byte, 0, len(aBytes)+len(bBytes))
	joined = append(joined, aBytes...)
	joined = append(joined, bBytes...)
	addr := vm.strings.Intern(joined)
	vm.stack.Push(value.Str(addr))
	return nil
}

func (vm *VM) opJump() error {
	addr, err := vm.code.ReadUsize()
	if err != nil {
		return err
	}
	vm.reg.SetCodePointer(addr)
	return nil
}

func (vm *VM) opJz() error {
	addr, err := vm.code.ReadUsize()
	if err != nil {
		return err
	}
	v, err := vm.stack.PopAs(value.Integer)
	if err != nil {
		return err
	}
	if v.Int32() == 0 {
		vm.reg.SetCodePointer(addr)
	}
	return nil
}

func (vm *VM) opPushA() error {
	addr, err := vm.code.ReadUsize()
	if err != nil {
		return err
	}
	vm.stack.Push(value.Code(addr))
	return nil
}

func (vm *VM) opCall() error {
	target, err := vm.stack.PopAs(value.AddressCode)
	if err != nil {
		return err
	}
	vm.frames.Push(memory.Frame{FramePointer: vm.reg.FramePointer, ReturnCodePointer: vm.reg.CodePointer()})
	vm.reg.FramePointer = vm.reg.StackPointer()
	vm.reg.SetCodePointer(target.Address())
	return nil
}

func (vm *VM) opReturn() error {
	frame, err := vm.frames.Pop()
	if err != nil {
		return err
	}
	retval, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	vm.stack.Truncate(frame.FramePointer)
	vm.stack.Push(retval)
	vm.reg.FramePointer = frame.FramePointer
	vm.reg.SetCodePointer(frame.ReturnCodePointer)
	return nil
}

func (vm *VM) opStart() error {
	sp := vm.reg.StackPointer()
	vm.reg.FramePointer = sp
	vm.reg.GlobalPointer = sp
	return nil
}

func (vm *VM) opErr() error {
	msg, err := vm.code.ReadString()
	if err != nil {
		return err
	}
	return &vmerr.RuntimeError{Message: string(msg)}
}

func (vm *VM) opAtoi() error {
	s, err := vm.popString()
	if err != nil {
		return err
	}
	i, perr := strconv.ParseInt(string(s), 10, 32)
	if perr != nil {
		return &vmerr.InvalidNumber{Literal: string(s)}
	}
	vm.stack.Push(value.Int(int32(i)))
	return nil
}

func (vm *VM) opAtof() error {
	s, err := vm.popString()
	if err != nil {
		return err
	}
	f, perr := strconv.ParseFloat(string(s), 64)
	if perr != nil {
		return &vmerr.InvalidNumber{Literal: string(s)}
	}
	vm.stack.Push(value.Flt(f))
	return nil
}

func (vm *VM) opItof() error {
	v, err := vm.stack.PopAs(value.Integer)
	if err != nil {
		return err
	}
	vm.stack.Push(value.Flt(float64(v.Int32())))
	return nil
}

func (vm *VM) opFtoi() error {
	v, err := vm.stack.PopAs(value.Float)
	if err != nil {
		return err
	}
	vm.stack.Push(value.Int(int32(v.Float64())))
	return nil
}

func (vm *VM) opStri() error {
	v, err := vm.stack.PopAs(value.Integer)
	if err != nil {
		return err
	}
	addr := vm.strings.Intern([]byte(strconv.FormatInt(int64(v.Int32()), 10)))
	vm.stack.Push(value.Str(addr))
	return nil
}

func (vm *VM) opStrf() error {
	v, err := vm.stack.PopAs(value.Float)
	if err != nil {
		return err
	}
	addr := vm.strings.Intern([]byte(strconv.FormatFloat(v.Float64(), 'g', -1, 64)))
	vm.stack.Push(value.Str(addr))
	return nil
}

func (vm *VM) opDup() error {
	n, err := vm.code.ReadI32()
	if err != nil {
		return err
	}
	return vm.stack.DupN(int(n))
}

func (vm *VM) opDupN() error {
	n, err := vm.stack.PopAs(value.Integer)
	if err != nil {
		return err
	}
	return vm.stack.DupN(int(n.Int32()))
}

func (vm *VM) floatBinOp(f func(a, b float64) float64) error {
	b, err := vm.stack.PopAs(value.Float)
	if err != nil {
		return err
	}
	a, err := vm.stack.PopAs(value.Float)
	if err != nil {
		return err
	}
	vm.stack.Push(value.Flt(f(a.Float64(), b.Float64())))
	return nil
}

func (vm *VM) floatCompare(f func(a, b float64) bool) error {
	b, err := vm.stack.PopAs(value.Float)
	if err != nil {
		return err
	}
	a, err := vm.stack.PopAs(value.Float)
	if err != nil {
		return err
	}
	vm.stack.Push(boolToInt(f(a.Float64(), b.Float64())))
	return nil
}

func (vm *VM) floatUnary(f func(float64) float64) error {
	v, err := vm.stack.PopAs(value.Float)
	if err != nil {
		return err
	}
	vm.stack.Push(value.Flt(f(v.Float64())))
	return nil
}

func (vm *VM) opAlloc() error {
	n, err := vm.code.ReadUsize()
	if err != nil {
		return err
	}
	addr := vm.heap.Alloc(int(n))
	vm.stack.Push(value.Heap(addr))
	return nil
}

func (vm *VM) opAllocN() error {
	n, err := vm.stack.PopAs(value.Integer)
	if err != nil {
		return err
	}
	if n.Int32() <= 0 {
		return &vmerr.InvalidOperand{Op: "allocn", Reason: "size must be > 0"}
	}
	addr := vm.heap.Alloc(int(n.Int32()))
	vm.stack.Push(value.Heap(addr))
	return nil
}

func (vm *VM) opFree() error {
	v, err := vm.stack.PopAs(value.AddressHeap)
	if err != nil {
		return err
	}
	vm.heap.Free(v.Address())
	return nil
}

func (vm *VM) opEqual() error {
	b, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	a, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	vm.stack.Push(boolToInt(vm.valuesEqual(a, b)))
	return nil
}

func (vm *VM) valuesEqual(a, b value.Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	if a.Tag == value.AddressString {
		aBytes, aErr := vm.strings.Bytes(a.Address())
		bBytes, bErr := vm.strings.Bytes(b.Address())
		if aErr != nil || bErr != nil {
			return false
		}
		return bytes.Equal(aBytes, bBytes)
	}
	return value.SameTagEqual(a, b)
}

func (vm *VM) intBinOp(f func(a, b int64) (int64, error)) error {
	b, err := vm.stack.PopAs(value.Integer)
	if err != nil {
		return err
	}
	a, err := vm.stack.PopAs(value.Integer)
	if err != nil {
		return err
	}
	result, ferr := f(int64(a.Int32()), int64(b.Int32()))
	if ferr != nil {
		return ferr
	}
	vm.stack.Push(value.Int(int32(result)))
	return nil
}

func floorDiv(a, b int64) (int64, error) {
	if b == 0 {
		return 0, &vmerr.InvalidOperand{Op: "div", Reason: "division by zero"}
	}
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q, nil
}

func floorMod(a, b int64) (int64, error) {
	if b == 0 {
		return 0, &vmerr.InvalidOperand{Op: "mod", Reason: "division by zero"}
	}
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m, nil
}

func (vm *VM) intCompare(f func(a, b int64) bool) error {
	b, err := vm.stack.PopAs(value.Integer)
	if err != nil {
		return err
	}
	a, err := vm.stack.PopAs(value.Integer)
	if err != nil {
		return err
	}
	vm.stack.Push(boolToInt(f(int64(a.Int32()), int64(b.Int32()))))
	return nil
}

func (vm *VM) opNot() error {
	v, err := vm.stack.PopAs(value.Integer)
	if err != nil {
		return err
	}
	vm.stack.Push(boolToInt(v.Int32() == 0))
	return nil
}

func boolToInt(b bool) value.Value {
	if b {
		return value.Int(1)
	}
	return value.Int(0)
}

// loadThrough resolves an address that must be AddressHeap or
// AddressStack, the only two kinds load/store accept.
func (vm *VM) loadThrough(addr value.Value) (value.Value, error) {
	switch addr.Tag {
	case value.AddressHeap:
		return vm.heap.Load(addr.Address())
	case value.AddressStack:
		return vm.stack.Load(addr.Address())
	default:
		return value.Value{}, &vmerr.InvalidOperand{Op: "load", Reason: "address must be heap or stack, got " + addr.Tag.String()}
	}
}

func (vm *VM) storeThrough(addr value.Value, v value.Value) error {
	switch addr.Tag {
	case value.AddressHeap:
		return vm.heap.Store(addr.Address(), v)
	case value.AddressStack:
		_, err := vm.stack.Store(addr.Address(), v)
		return err
	default:
		return &vmerr.InvalidOperand{Op: "store", Reason: "address must be heap or stack, got " + addr.Tag.String()}
	}
}

func (vm *VM) opLoad() error {
	offset, err := vm.code.ReadI32()
	if err != nil {
		return err
	}
	addr, err := vm.popAddress()
	if err != nil {
		return err
	}
	v, err := vm.loadThrough(addr.WithAddress(memory.ApplyDisplacement(addr.Address(), offset)))
	if err != nil {
		return err
	}
	vm.stack.Push(v)
	return nil
}

func (vm *VM) opLoadN() error {
	offset, err := vm.stack.PopAs(value.Integer)
	if err != nil {
		return err
	}
	addr, err := vm.popAddress()
	if err != nil {
		return err
	}
	v, err := vm.loadThrough(addr.WithAddress(memory.ApplyDisplacement(addr.Address(), offset.Int32())))
	if err != nil {
		return err
	}
	vm.stack.Push(v)
	return nil
}

func (vm *VM) opStore() error {
	offset, err := vm.code.ReadI32()
	if err != nil {
		return err
	}
	v, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	addr, err := vm.popAddress()
	if err != nil {
		return err
	}
	return vm.storeThrough(addr.WithAddress(memory.ApplyDisplacement(addr.Address(), offset)), v)
}

func (vm *VM) opStoreN() error {
	v, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	offset, err := vm.stack.PopAs(value.Integer)
	if err != nil {
		return err
	}
	addr, err := vm.popAddress()
	if err != nil {
		return err
	}
	return vm.storeThrough(addr.WithAddress(memory.ApplyDisplacement(addr.Address(), offset.Int32())), v)
}

func (vm *VM) opStoreL() error {
	offset, err := vm.code.ReadI32()
	if err != nil {
		return err
	}
	v, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	_, err = vm.stack.Store(memory.ApplyDisplacement(vm.reg.FramePointer, offset), v)
	return err
}

func (vm *VM) opStoreG() error {
	offset, err := vm.code.ReadI32()
	if err != nil {
		return err
	}
	v, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	_, err = vm.stack.Store(memory.ApplyDisplacement(vm.reg.GlobalPointer, offset), v)
	return err
}

func (vm *VM) opPushG() error {
	offset, err := vm.code.ReadI32()
	if err != nil {
		return err
	}
	v, err := vm.stack.Load(memory.ApplyDisplacement(vm.reg.GlobalPointer, offset))
	if err != nil {
		return err
	}
	vm.stack.Push(v)
	return nil
}

func (vm *VM) opPushL() error {
	offset, err := vm.code.ReadI32()
	if err != nil {
		return err
	}
	v, err := vm.stack.Load(memory.ApplyDisplacement(vm.reg.FramePointer, offset))
	if err != nil {
		return err
	}
	vm.stack.Push(v)
	return nil
}

func (vm *VM) popAddress() (value.Value, error) {
	v, err := vm.stack.Pop()
	if err != nil {
		return value.Value{}, err
	}
	if !v.Tag.IsAddress() {
		return value.Value{}, &vmerr.TypeMismatch{Want: value.AddressHeap, Got: v.Tag}
	}
	return v, nil
}

func (vm *VM) opSwap() error {
	b, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	a, err := vm.stack.Pop()
	if err != nil {
		return err
	}
	vm.stack.Push(b)
	vm.stack.Push(a)
	return nil
}

func (vm *VM) writeInteger(newline bool) error {
	v, err := vm.stack.PopAs(value.Integer)
	if err != nil {
		return err
	}
	return vm.print(v.String(), newline)
}

func (vm *VM) writeFloat(newline bool) error {
	v, err := vm.stack.PopAs(value.Float)
	if err != nil {
		return err
	}
	return vm.print(v.String(), newline)
}

func (vm *VM) writeString(newline bool) error {
	s, err := vm.popString()
	if err != nil {
		return err
	}
	return vm.print(string(s), newline)
}

func (vm *VM) print(s string, newline bool) error {
	if newline {
		_, err := fmt.Fprintln(vm.out, s)
		if err != nil {
			return &vmerr.IO{Op: "write", Err: err}
		}
		return nil
	}
	_, err := fmt.Fprint(vm.out, s)
	if err != nil {
		return &vmerr.IO{Op: "write", Err: err}
	}
	return nil
}

func (vm *VM) popString() ([]byte, error) {
	v, err := vm.stack.PopAs(value.AddressString)
	if err != nil {
		return nil, err
	}
	return vm.strings.Bytes(v.Address())
}

func (vm *VM) opRead() error {
	line, err := vm.in.ReadString('\n')
	if err != nil && len(line) == 0 {
		return &vmerr.IO{Op: "read", Err: err}
	}
	if len(line) > vm.maxReadLine {
		line = line[:vm.maxReadLine]
	}
	if len(line) > 0 && line[len(line)-1] == '\n' {
		line = line[:len(line)-1]
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}
	}
	addr := vm.strings.Intern([]byte(line))
	vm.stack.Push(value.Str(addr))
	return nil
}

func (vm *VM) opPadd() error {
	offset, err := vm.stack.PopAs(value.Integer)
	if err != nil {
		return err
	}
	addr, err := vm.popAddress()
	if err != nil {
		return err
	}
	vm.stack.Push(addr.WithAddress(memory.ApplyDisplacement(addr.Address(), offset.Int32())))
	return nil
}

func (vm *VM) opPop() error {
	n, err := vm.code.ReadI32()
	if err != nil {
		return err
	}
	for i := int32(0); i < n; i++ {
		if _, err := vm.stack.Pop(); err != nil {
			return err
		}
	}
	return nil
}

func (vm *VM) opPopN() error {
	n, err := vm.stack.PopAs(value.Integer)
	if err != nil {
		return err
	}
	for i := int32(0); i < n.Int32(); i++ {
		if _, err := vm.stack.Pop(); err != nil {
			return err
		}
	}
	return nil
}

func (vm *VM) opPushI() error {
	n, err := vm.code.ReadI32()
	if err != nil {
		return err
	}
	vm.stack.Push(value.Int(n))
	return nil
}

func (vm *VM) opPushN() error {
	n, err := vm.code.ReadI32()
	if err != nil {
		return err
	}
	vm.stack.PushN(int(n))
	return nil
}

func (vm *VM) opPushF() error {
	f, err := vm.code.ReadF64()
	if err != nil {
		return err
	}
	vm.stack.Push(value.Flt(f))
	return nil
}

func (vm *VM) opPushS() error {
	s, err := vm.code.ReadString()
	if err != nil {
		return err
	}
	addr := vm.strings.Intern(s)
	vm.stack.Push(value.Str(addr))
	return nil
}
