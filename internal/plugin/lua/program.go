package lua

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// Program is a plugin entry script compiled to Lua bytecode.
//
// Compilation happens once, at plugin load time. The compiled chunk is
// immutable and safe to share across executions; each execution binds it
// to a fresh Sandbox.
type Program struct {
	name  string
	proto *lua.FunctionProto
}

// Compile parses and compiles a script source. The name appears in Lua
// error messages and stack traces.
func Compile(name, source string) (*Program, error) {
	chunk, err := parse.Parse(strings.NewReader(source), name)
	if err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, fmt.Errorf("failed to compile script: %w", err)
	}

	return &Program{name: name, proto: proto}, nil
}

// Name returns the chunk name the program was compiled under.
func (p *Program) Name() string {
	return p.name
}

// Run executes the compiled chunk inside the sandbox and returns the
// chunk's return value converted to a Go value. Lua runtime errors and
// panics are converted to Go errors.
func (p *Program) Run(sb *Sandbox) (data any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("script panic: %v", r)
		}
	}()

	L := sb.L
	top := L.GetTop()
	L.Push(L.NewFunctionFromProto(p.proto))
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		return nil, err
	}

	nret := L.GetTop() - top
	if nret <= 0 {
		return nil, nil
	}
	v := L.Get(top + 1)
	L.Pop(nret)
	return ToGo(v), nil
}
