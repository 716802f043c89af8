package lua

import (
	"fmt"
	"strconv"

	rt "github.com/arnodel/golua/runtime"
)

// String returns the display form of a Lua value. Nil becomes the empty
// string; numbers and booleans are formatted the way Lua's tostring would.
func String(v rt.Value) string {
	if v == rt.NilValue {
		return ""
	}
	if s, ok := v.TryString(); ok {
		return s
	}
	if n, ok := v.TryInt(); ok {
		return strconv.FormatInt(n, 10)
	}
	if f, ok := v.TryFloat(); ok {
		return strconv.FormatFloat(f, 'g', 14, 64)
	}
	if b, ok := v.TryBool(); ok {
		return strconv.FormatBool(b)
	}
	if _, ok := v.TryTable(); ok {
		return "table"
	}
	return fmt.Sprintf("%v", v.Interface())
}

// ToGo converts a Lua value into plain Go data: strings, int64, float64,
// bool, []any for sequences and map[string]any for other tables.
// Functions and userdata are dropped (returned as nil).
func ToGo(v rt.Value) any {
	return toGo(v, 0)
}

// maxDepth guards against self-referencing tables.
const maxDepth = 32

func toGo(v rt.Value, depth int) any {
	if v == rt.NilValue || depth > maxDepth {
		return nil
	}
	if s, ok := v.TryString(); ok {
		return s
	}
	if n, ok := v.TryInt(); ok {
		return n
	}
	if f, ok := v.TryFloat(); ok {
		return f
	}
	if b, ok := v.TryBool(); ok {
		return b
	}
	t, ok := v.TryTable()
	if !ok {
		return nil
	}

	if n := sequenceLen(t); n > 0 {
		items := make([]any, 0, n)
		for i := int64(1); i <= n; i++ {
			items = append(items, toGo(t.Get(rt.IntValue(i)), depth+1))
		}
		return items
	}

	m := make(map[string]any)
	for k, val, _ := t.Next(rt.NilValue); k != rt.NilValue; k, val, _ = t.Next(k) {
		m[String(k)] = toGo(val, depth+1)
	}
	return m
}

// sequenceLen returns n when t holds exactly the keys 1..n, or 0 otherwise.
func sequenceLen(t *rt.Table) int64 {
	var count int64
	for k, _, _ := t.Next(rt.NilValue); k != rt.NilValue; k, _, _ = t.Next(k) {
		i, ok := k.TryInt()
		if !ok || i < 1 {
			return 0
		}
		count++
	}
	for i := int64(1); i <= count; i++ {
		if t.Get(rt.IntValue(i)) == rt.NilValue {
			return 0
		}
	}
	return count
}
