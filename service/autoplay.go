package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"wizard-game/engine"
	"wizard-game/entities"
)

// AutoplayView is what a policy sees when it moves for a player.
type AutoplayView struct {
	Player string
	Phase  engine.Phase
	Round  int
	Trump  string
	Hand   []entities.Card
	Trick  []engine.Play
	Bids   map[string]int
}

// Policy picks the move made for a player whose turn timed out. It returns
// an index into options.
type Policy interface {
	Choose(ctx context.Context, view AutoplayView, options []engine.Action) (int, error)
}

const defaultScriptTimeout = 200 * time.Millisecond

// LuaPolicy runs a script that defines choose(view, options) and returns a
// 1-based index into options. Each call gets a fresh interpreter with only
// the base, table, string and math libraries.
type LuaPolicy struct {
	name    string
	proto   *lua.FunctionProto
	timeout time.Duration
}

func NewLuaPolicy(name, source string) (*LuaPolicy, error) {
	chunk, err := parse.Parse(strings.NewReader(source), name)
	if err != nil {
		return nil, fmt.Errorf("autoplay script %s: %w", name, err)
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, fmt.Errorf("autoplay script %s: %w", name, err)
	}
	return &LuaPolicy{name: name, proto: proto, timeout: defaultScriptTimeout}, nil
}

func LoadLuaPolicy(path string) (*LuaPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("autoplay script: %w", err)
	}
	return NewLuaPolicy(path, string(data))
}

func (p *LuaPolicy) Choose(ctx context.Context, view AutoplayView, options []engine.Action) (int, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.fn), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			return -1, err
		}
	}
	// base opens these, and they reach the filesystem
	for _, name := range []string{"dofile", "loadfile"} {
		L.SetGlobal(name, lua.LNil)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	L.SetContext(ctx)

	L.Push(L.NewFunctionFromProto(p.proto))
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		return -1, fmt.Errorf("autoplay script %s: %w", p.name, err)
	}
	fn := L.GetGlobal("choose")
	if fn.Type() != lua.LTFunction {
		return -1, fmt.Errorf("autoplay script %s does not define choose", p.name)
	}
	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, viewTable(L, view), optionsTable(L, options)); err != nil {
		return -1, fmt.Errorf("autoplay script %s: %w", p.name, err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	n, ok := ret.(lua.LNumber)
	if !ok {
		return -1, fmt.Errorf("autoplay script %s returned %s, want a number", p.name, ret.Type())
	}
	return int(n) - 1, nil
}

func viewTable(L *lua.LState, v AutoplayView) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("player", lua.LString(v.Player))
	t.RawSetString("phase", lua.LString(v.Phase))
	t.RawSetString("round", lua.LNumber(v.Round))
	t.RawSetString("trump", lua.LString(v.Trump))

	hand := L.NewTable()
	for _, c := range v.Hand {
		hand.Append(lua.LString(c.String()))
	}
	t.RawSetString("hand", hand)

	trick := L.NewTable()
	for _, play := range v.Trick {
		entry := L.NewTable()
		entry.RawSetString("player", lua.LString(play.Player))
		entry.RawSetString("card", lua.LString(play.Card.String()))
		trick.Append(entry)
	}
	t.RawSetString("trick", trick)

	bids := L.NewTable()
	for p, b := range v.Bids {
		bids.RawSetString(p, lua.LNumber(b))
	}
	t.RawSetString("bids", bids)
	return t
}

func optionsTable(L *lua.LState, options []engine.Action) *lua.LTable {
	t := L.NewTable()
	for _, a := range options {
		o := L.NewTable()
		o.RawSetString("kind", lua.LString(a.Kind))
		switch a.Kind {
		case engine.ActionBid:
			o.RawSetString("value", lua.LNumber(a.Value))
		case engine.ActionChooseTrump:
			o.RawSetString("suit", lua.LString(a.Suit.String()))
		case engine.ActionPlayCard:
			if a.Card != nil {
				o.RawSetString("card", lua.LString(a.Card.String()))
			}
		}
		t.Append(o)
	}
	return t
}
