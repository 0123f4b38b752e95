package jsonpath

import "github.com/tidwall/pretty"

// Debug evaluates p against value and returns its matches as
// human-readable, indented JSON -- a thin wrapper over FindValues and
// tidwall/pretty, meant for ad-hoc inspection (REPLs, test failure
// output), not for production serialization of query results.
func (p *Path) Debug(value interface{}) (string, error) {
	vals := p.FindValues(value)
	if vals == nil {
		vals = []interface{}{}
	}
	raw, err := json.Marshal(vals)
	if err != nil {
		return "", err
	}
	return string(pretty.Pretty(raw)), nil
}
