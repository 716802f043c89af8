package config

import (
	"fmt"

	rt "github.com/arnodel/golua/runtime"

	"github.com/opd-ai/go-limebar/internal/lua"
)

// parseLua executes a Lua configuration file and returns the same generic
// data a JSON file would produce. The script fills two tables that exist
// before it runs:
//
//	limebar.config = { BarHeight = 24, BarLocation = "Bottom" }
//	limebar.panels = {
//	  { PanelType = "clock", Name = "clock", Options = "ShowDate" },
//	}
func parseLua(path string) (raw map[string]any, err error) {
	host := lua.New(lua.DefaultLimits(), nil)
	defer host.Close()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("Lua configuration aborted: %v", r)
		}
	}()

	root := rt.NewTable()
	root.Set(rt.StringValue("config"), rt.TableValue(rt.NewTable()))
	root.Set(rt.StringValue("panels"), rt.TableValue(rt.NewTable()))
	host.SetGlobal("limebar", rt.TableValue(root))

	if _, err := host.ExecuteFile(path); err != nil {
		return nil, err
	}

	table, ok := host.Global("limebar").TryTable()
	if !ok {
		return nil, fmt.Errorf("limebar is not a table")
	}

	raw = make(map[string]any)
	switch settings := lua.ToGo(table.Get(rt.StringValue("config"))).(type) {
	case nil:
	case map[string]any:
		for k, v := range settings {
			raw[k] = v
		}
	default:
		return nil, fmt.Errorf("limebar.config must be a table")
	}

	switch panels := lua.ToGo(table.Get(rt.StringValue("panels"))).(type) {
	case nil:
	case []any:
		raw[panelsKey] = panels
	case map[string]any:
		if len(panels) > 0 {
			return nil, fmt.Errorf("limebar.panels must be a list")
		}
	default:
		return nil, fmt.Errorf("limebar.panels must be a table")
	}

	return raw, nil
}
