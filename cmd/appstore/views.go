package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/vango-dev/appstore/internal/config"
	"github.com/vango-dev/appstore/pkg/record"
	"github.com/vango-dev/appstore/pkg/vdom"
	"github.com/vango-dev/appstore/pkg/view"
)

// modelsView renders one table per configured model, reading each model's
// records from the root props.
func modelsView(models []config.ModelConfig) view.Component {
	return func(p view.Props) *vdom.VNode {
		return vdom.Div(vdom.Class("appstore"),
			vdom.Map(models, func(m config.ModelConfig) *vdom.VNode {
				records, _ := p[m.Name].([]record.Record)
				return vdom.Section(vdom.Key(m.Name), vdom.Data("model", m.Name),
					vdom.H2(m.Name),
					vdom.If(m.Endpoint != "", vdom.P(vdom.Class("endpoint"), m.Endpoint)),
					recordTable(records, m.IDAttribute),
				)
			}),
		)
	}
}

// recordView renders a single record as a two-column table.
func recordView(model, id, idAttr string) view.Component {
	return func(p view.Props) *vdom.VNode {
		records, _ := p[model].([]record.Record)
		for _, r := range records {
			if rid, _ := record.IDOf(r, idAttr); rid == id {
				return vdom.Table(vdom.Data("model", model),
					vdom.Map(columns([]record.Record{r}, idAttr), func(c string) *vdom.VNode {
						return vdom.Tr(vdom.Key(c), vdom.Th(c), vdom.Td(formatValue(r[c])))
					}),
				)
			}
		}
		return vdom.P(vdom.Class("empty"), fmt.Sprintf("%s %s not loaded", model, id))
	}
}

func recordTable(records []record.Record, idAttr string) *vdom.VNode {
	if len(records) == 0 {
		return vdom.P(vdom.Class("empty"), "no records")
	}
	cols := columns(records, idAttr)
	return vdom.Table(
		vdom.Tr(vdom.Map(cols, func(c string) *vdom.VNode { return vdom.Th(c) })),
		vdom.Map(records, func(r record.Record) *vdom.VNode {
			id, _ := record.IDOf(r, idAttr)
			return vdom.Tr(vdom.Key(id),
				vdom.Map(cols, func(c string) *vdom.VNode { return vdom.Td(formatValue(r[c])) }),
			)
		}),
	)
}

// columns returns the union of record keys, sorted, with idAttr first.
func columns(records []record.Record, idAttr string) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, r := range records {
		for k := range r {
			if k == idAttr || seen[k] {
				continue
			}
			seen[k] = true
			cols = append(cols, k)
		}
	}
	sort.Strings(cols)
	if idAttr != "" {
		cols = append([]string{idAttr}, cols...)
	}
	return cols
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}
