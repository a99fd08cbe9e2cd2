// Package lua lets plugins ship system behavior as sandboxed Lua source.
//
// A script system compiles once and runs on the main goroutine like any
// other system; its script sees an `ecs` table bound to the current tick's
// context with entity lifecycle, component field access and singleton
// access. File system, OS and package facilities are stripped from the VM.
package lua

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"canvas-loom/internal/core/ecs"
)

// ScriptSystem wraps one compiled Lua chunk as a SystemFunc.
type ScriptSystem struct {
	name  string
	world *ecs.World
	state *lua.LState
	fn    *lua.LFunction
	ctx   *ecs.Context // bound for the duration of one call
}

// NewScriptSystem compiles source into a sandboxed VM wired to the world.
func NewScriptSystem(world *ecs.World, name, source string) (*ScriptSystem, error) {
	state := lua.NewState()
	applySandbox(state)

	s := &ScriptSystem{name: name, world: world, state: state}
	s.registerAPI()

	fn, err := state.LoadString(source)
	if err != nil {
		state.Close()
		return nil, fmt.Errorf("script %q failed to compile: %w", name, err)
	}
	s.fn = fn
	return s, nil
}

// Name returns the script system's name.
func (s *ScriptSystem) Name() string { return s.name }

// SystemFunc adapts the script for scheduler registration.
func (s *ScriptSystem) SystemFunc() ecs.SystemFunc {
	return func(ctx *ecs.Context) error {
		s.ctx = ctx
		defer func() { s.ctx = nil }()
		s.state.Push(s.fn)
		if err := s.state.PCall(0, 0, nil); err != nil {
			return fmt.Errorf("script %q: %w", s.name, err)
		}
		return nil
	}
}

// Close releases the VM.
func (s *ScriptSystem) Close() {
	s.state.Close()
}

// applySandbox strips facilities a system script has no business touching.
func applySandbox(state *lua.LState) {
	state.SetGlobal("io", lua.LNil)
	state.SetGlobal("os", lua.LNil)
	state.SetGlobal("debug", lua.LNil)
	state.SetGlobal("dofile", lua.LNil)
	state.SetGlobal("loadfile", lua.LNil)
	state.SetGlobal("package", lua.LNil)
	state.SetGlobal("require", lua.LNil)
}

// registerAPI installs the global ecs table.
func (s *ScriptSystem) registerAPI() {
	t := s.state.NewTable()
	s.state.SetGlobal("ecs", t)

	reg := func(name string, fn lua.LGFunction) {
		s.state.SetField(t, name, s.state.NewFunction(fn))
	}

	reg("tick", func(L *lua.LState) int {
		L.Push(lua.LNumber(s.ctx.Tick()))
		return 1
	})

	reg("create_entity", func(L *lua.LState) int {
		id, err := s.ctx.CreateEntity()
		if err != nil {
			L.RaiseError("create_entity: %v", err)
		}
		L.Push(lua.LNumber(id))
		return 1
	})

	reg("remove_entity", func(L *lua.LState) int {
		s.ctx.RemoveEntity(ecs.EntityID(L.CheckNumber(1)))
		return 0
	})

	reg("is_alive", func(L *lua.LState) int {
		L.Push(lua.LBool(s.ctx.IsAlive(ecs.EntityID(L.CheckNumber(1)))))
		return 1
	})

	reg("has", func(L *lua.LState) int {
		store := s.checkComponent(L, 1)
		L.Push(lua.LBool(store.Has(ecs.EntityID(L.CheckNumber(2)))))
		return 1
	})

	reg("add", func(L *lua.LState) int {
		store := s.checkComponent(L, 1)
		id := ecs.EntityID(L.CheckNumber(2))
		var data ecs.Data
		if L.GetTop() >= 3 {
			data = tableToData(L.CheckTable(3))
		}
		if err := store.Add(id, data); err != nil {
			L.RaiseError("add %s: %v", store.Def().Name(), err)
		}
		return 0
	})

	reg("remove", func(L *lua.LState) int {
		store := s.checkComponent(L, 1)
		store.Remove(ecs.EntityID(L.CheckNumber(2)))
		return 0
	})

	reg("get", func(L *lua.LState) int {
		store := s.checkComponent(L, 1)
		row := store.Read(ecs.EntityID(L.CheckNumber(2)))
		L.Push(fieldToLua(L, row, store.Def(), L.CheckString(3)))
		return 1
	})

	reg("set", func(L *lua.LState) int {
		store := s.checkComponent(L, 1)
		row := store.Write(ecs.EntityID(L.CheckNumber(2)))
		setFieldFromLua(L, row, store.Def(), L.CheckString(3), L.Get(4))
		return 0
	})

	reg("singleton_get", func(L *lua.LState) int {
		store := s.checkSingleton(L, 1)
		L.Push(fieldToLua(L, store.Read(), &store.Def().ComponentDef, L.CheckString(2)))
		return 1
	})

	reg("singleton_set", func(L *lua.LState) int {
		store := s.checkSingleton(L, 1)
		setFieldFromLua(L, store.Write(), &store.Def().ComponentDef, L.CheckString(2), L.Get(3))
		return 0
	})

	reg("entities", func(L *lua.LState) int {
		store := s.checkComponent(L, 1)
		out := L.NewTable()
		i := 0
		s.world.Buffer().EachAlive(func(id ecs.EntityID) {
			if store.Has(id) {
				i++
				out.RawSetInt(i, lua.LNumber(id))
			}
		})
		L.Push(out)
		return 1
	})
}

func (s *ScriptSystem) checkComponent(L *lua.LState, n int) *ecs.ComponentStore {
	store, err := s.world.Component(L.CheckString(n))
	if err != nil {
		L.RaiseError("%v", err)
	}
	return store
}

func (s *ScriptSystem) checkSingleton(L *lua.LState, n int) *ecs.SingletonStore {
	store, err := s.world.Singleton(L.CheckString(n))
	if err != nil {
		L.RaiseError("%v", err)
	}
	return store
}

// tableToData converts a flat Lua table to component Data. Numeric values
// arrive as float64; nested array tables become tuple values.
func tableToData(t *lua.LTable) ecs.Data {
	data := make(ecs.Data)
	t.ForEach(func(key, value lua.LValue) {
		name, ok := key.(lua.LString)
		if !ok {
			return
		}
		switch v := value.(type) {
		case lua.LNumber:
			data[string(name)] = float64(v)
		case lua.LString:
			data[string(name)] = string(v)
		case lua.LBool:
			data[string(name)] = bool(v)
		case *lua.LTable:
			var nums []float64
			v.ForEach(func(_, e lua.LValue) {
				if n, ok := e.(lua.LNumber); ok {
					nums = append(nums, float64(n))
				}
			})
			data[string(name)] = nums
		}
	})
	return data
}

// fieldToLua reads one field through the row view, picking the accessor
// from the schema. Tuples surface as 1-indexed array tables.
func fieldToLua(L *lua.LState, row ecs.Row, def *ecs.ComponentDef, field string) lua.LValue {
	i := def.FieldIndex(field)
	if i < 0 {
		return lua.LNil
	}
	f := def.Fields()[i]
	switch {
	case f.Kind == ecs.FieldString:
		return lua.LString(row.Str(field))
	case f.Kind == ecs.FieldBool:
		return lua.LBool(row.Bool(field))
	case f.Arity > 1:
		t := L.NewTable()
		for k := 0; k < f.Arity; k++ {
			t.RawSetInt(k+1, lua.LNumber(row.NumAt(field, k)))
		}
		return t
	default:
		return lua.LNumber(row.Num(field))
	}
}

func setFieldFromLua(L *lua.LState, row ecs.Row, def *ecs.ComponentDef, field string, value lua.LValue) {
	i := def.FieldIndex(field)
	if i < 0 {
		L.RaiseError("component %s has no field %q", def.Name(), field)
	}
	f := def.Fields()[i]
	switch {
	case f.Kind == ecs.FieldString:
		s, ok := value.(lua.LString)
		if !ok {
			L.RaiseError("field %q expects a string", field)
		}
		row.SetStr(field, string(s))
	case f.Kind == ecs.FieldBool:
		b, ok := value.(lua.LBool)
		if !ok {
			L.RaiseError("field %q expects a bool", field)
		}
		row.SetBool(field, bool(b))
	default:
		n, ok := value.(lua.LNumber)
		if !ok {
			L.RaiseError("field %q expects a number", field)
		}
		row.SetNum(field, float64(n))
	}
}
