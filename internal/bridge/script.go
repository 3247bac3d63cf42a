package bridge

import (
	"fmt"

	"github.com/sirupsen/logrus"
	lua "github.com/yuin/gopher-lua"
)

// RunScript executes a Lua file against the bridge. Scripts see a global
// table `rays` with set(name, value), get(name) and a `properties` list.
func (b *Bridge) RunScript(path string) error {
	L := b.newState()
	defer L.Close()
	if err := L.DoFile(path); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "RunScript",
			"path":     path,
			"error":    err,
		}).Error("Script failed")
		return fmt.Errorf("run %s: %w", path, err)
	}
	return nil
}

// RunString executes Lua source against the bridge.
func (b *Bridge) RunString(src string) error {
	L := b.newState()
	defer L.Close()
	if err := L.DoString(src); err != nil {
		return fmt.Errorf("run script: %w", err)
	}
	return nil
}

func (b *Bridge) newState() *lua.LState {
	L := lua.NewState()
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"set": b.luaSet,
		"get": b.luaGet,
	})
	props := L.NewTable()
	for _, name := range Properties {
		props.Append(lua.LString(name))
	}
	L.SetField(mod, "properties", props)
	L.SetGlobal("rays", mod)
	return L
}

func (b *Bridge) luaSet(L *lua.LState) int {
	name := L.CheckString(1)
	var value any
	switch v := L.CheckAny(2).(type) {
	case lua.LNumber:
		value = float64(v)
	case lua.LBool:
		value = bool(v)
	case lua.LString:
		value = string(v)
	default:
		L.ArgError(2, "expected number, boolean or string")
		return 0
	}
	if err := b.Apply(name, value); err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	return 0
}

func (b *Bridge) luaGet(L *lua.LState) int {
	name := L.CheckString(1)
	v, err := b.Get(name)
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	switch v := v.(type) {
	case bool:
		L.Push(lua.LBool(v))
	case int:
		L.Push(lua.LNumber(v))
	case float64:
		L.Push(lua.LNumber(v))
	case string:
		L.Push(lua.LString(v))
	default:
		L.Push(lua.LNil)
	}
	return 1
}
