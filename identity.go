package metrics

import (
	"sort"
	"strings"
)

// Labels is a set of label name/value pairs attached to a metric.
type Labels map[string]string

// RenderIdentity flattens a metric name and its labels into one string, e.g.
// requests_total{code="200",method="GET"}. Label names are sorted so that equal
// label sets always render to the same identity.
func RenderIdentity(name string, labels Labels) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.Grow(len(name) + 2 + len(labels)*16)
	b.WriteString(name)
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(labelValueEscaper.Replace(labels[k]))
		b.WriteByte('"')
	}
	b.WriteByte('}')
	return b.String()
}

var labelValueEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// with returns a copy of l with k set to v.
func (l Labels) with(k, v string) Labels {
	out := make(Labels, len(l)+1)
	for lk, lv := range l {
		out[lk] = lv
	}
	out[k] = v
	return out
}
