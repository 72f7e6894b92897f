package sparql

// Results is the SPARQL JSON results format (SELECT form).
type Results struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []Binding `json:"bindings"`
	} `json:"results"`
}

type Binding map[string]Term

type Term struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}

// First returns the first binding in result order, if any.
func (r *Results) First() (Binding, bool) {
	if len(r.Results.Bindings) == 0 {
		return nil, false
	}
	return r.Results.Bindings[0], true
}

// Value returns the plain value bound to the given variable, or "".
func (b Binding) Value(name string) string {
	return b[name].Value
}
