package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/modernconfig/internal/config/builder"
	"github.com/dshills/modernconfig/internal/config/tree"
)

const builderTypeName = "modernconfig.builder"

// session holds the state of one script run.
type session struct {
	root *builder.Builder
}

func (s *session) install(L *lua.LState) {
	mt := L.NewTypeMetatable(builderTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"category":  category,
		"done":      done,
		"toggle":    toggle,
		"text":      text,
		"slider":    slider,
		"dropdown":  dropdown,
		"color":     color,
		"list":      list,
		"item":      item,
		"describe":  describe,
		"maxlength": maxLength,
		"icon":      icon,
	}))

	mod := L.NewTable()
	L.SetField(mod, "mod", L.NewFunction(s.mod))
	L.SetGlobal("config", mod)
}

// config.mod(name, description) -> builder
func (s *session) mod(L *lua.LState) int {
	name := L.CheckString(1)
	desc := L.OptString(2, "")

	if name == "" {
		L.ArgError(1, "mod name cannot be empty")
		return 0
	}
	if s.root != nil {
		L.RaiseError("%s", ErrDuplicateMod.Error())
		return 0
	}

	s.root = builder.New(name, desc)
	return pushBuilder(L, s.root)
}

func pushBuilder(L *lua.LState, b *builder.Builder) int {
	ud := L.NewUserData()
	ud.Value = b
	L.SetMetatable(ud, L.GetTypeMetatable(builderTypeName))
	L.Push(ud)
	return 1
}

func checkBuilder(L *lua.LState) *builder.Builder {
	ud := L.CheckUserData(1)
	b, ok := ud.Value.(*builder.Builder)
	if !ok {
		L.ArgError(1, "config builder expected")
		return nil
	}
	return b
}

// b:category(id, title[, description][, fn]) -> b or child
//
// With fn the category is populated by fn(child) and b is returned.
// Without fn the child builder is returned; close it with child:done().
func category(L *lua.LState) int {
	b := checkBuilder(L)
	id := L.CheckString(2)
	title := L.CheckString(3)

	desc := ""
	var fn *lua.LFunction
	switch v := L.Get(4).(type) {
	case lua.LString:
		desc = string(v)
		fn = L.OptFunction(5, nil)
	case *lua.LFunction:
		fn = v
	}

	child := b.Category(id, title, desc)
	if fn == nil {
		return pushBuilder(L, child)
	}

	L.Push(fn)
	pushBuilder(L, child)
	L.Call(1, 0)
	return pushBuilder(L, child.End())
}

// child:done() -> parent
func done(L *lua.LState) int {
	return pushBuilder(L, checkBuilder(L).End())
}

// b:toggle(id, label, default) -> b
func toggle(L *lua.LState) int {
	b := checkBuilder(L)
	return pushBuilder(L, b.Toggle(L.CheckString(2), L.CheckString(3), L.OptBool(4, false)))
}

// b:text(id, label, default) -> b
func text(L *lua.LState) int {
	b := checkBuilder(L)
	return pushBuilder(L, b.Text(L.CheckString(2), L.CheckString(3), L.OptString(4, "")))
}

// b:slider(id, label, default, min, max[, step][, precision]) -> b
func slider(L *lua.LState) int {
	b := checkBuilder(L)
	return pushBuilder(L, b.Slider(
		L.CheckString(2),
		L.CheckString(3),
		float64(L.CheckNumber(4)),
		float64(L.CheckNumber(5)),
		float64(L.CheckNumber(6)),
		float64(L.OptNumber(7, 0)),
		L.OptInt(8, 0),
	))
}

// b:dropdown(id, label, {choices...}[, default]) -> b
func dropdown(L *lua.LState) int {
	b := checkBuilder(L)
	id := L.CheckString(2)
	label := L.CheckString(3)
	choices := stringList(L, L.CheckTable(4))
	return pushBuilder(L, b.Dropdown(id, label, choices, L.OptString(5, "")))
}

// b:color(id, label, rgb) -> b; rgb is a number or "#RRGGBB"
func color(L *lua.LState) int {
	b := checkBuilder(L)
	id := L.CheckString(2)
	label := L.CheckString(3)

	var rgb int
	switch v := L.Get(4).(type) {
	case lua.LNumber:
		rgb = int(v)
	case lua.LString:
		c, ok := tree.ParseHex(string(v))
		if !ok {
			L.ArgError(4, "invalid hex color")
			return 0
		}
		rgb = c
	default:
		L.ArgError(4, "number or hex string expected")
		return 0
	}
	return pushBuilder(L, b.Color(id, label, rgb))
}

// b:list(id, label[, childLabel][, {defaults...}]) -> b
func list(L *lua.LState) int {
	b := checkBuilder(L)
	id := L.CheckString(2)
	label := L.CheckString(3)
	childLabel := L.OptString(4, "")

	var defaults []string
	if tbl, ok := L.Get(5).(*lua.LTable); ok {
		defaults = stringList(L, tbl)
	}
	return pushBuilder(L, b.List(id, label, childLabel, defaults...))
}

// b:item(id, label, identifier) -> b
func item(L *lua.LState) int {
	b := checkBuilder(L)
	return pushBuilder(L, b.Item(L.CheckString(2), L.CheckString(3), L.CheckString(4)))
}

// b:describe(text) -> b
func describe(L *lua.LState) int {
	b := checkBuilder(L)
	return pushBuilder(L, b.Describe(L.CheckString(2)))
}

// b:maxlength(n) -> b
func maxLength(L *lua.LState) int {
	b := checkBuilder(L)
	return pushBuilder(L, b.MaxLength(L.CheckInt(2)))
}

// b:icon(identifier) -> b
func icon(L *lua.LState) int {
	b := checkBuilder(L)
	return pushBuilder(L, b.WithIcon(L.CheckString(2)))
}

// stringList converts the array part of tbl to strings.
func stringList(L *lua.LState, tbl *lua.LTable) []string {
	out := make([]string, 0, tbl.Len())
	for i := 1; i <= tbl.Len(); i++ {
		out = append(out, L.ToStringMeta(tbl.RawGetInt(i)).String())
	}
	return out
}
