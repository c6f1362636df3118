package ir

// MemberRecord is one dispatch-table entry of a synthesized type.
type MemberRecord struct {
	Signature  string  `json:"signature"`
	Origin     string  `json:"origin"`
	DeclaredIn TypeRef `json:"declared_in"`
}

// SynthesisRecord describes one completed synthesis. It is what observers
// (the catalog store, logs) receive after a shape is created; it is emitted
// once per distinct Key per cache.
type SynthesisRecord struct {
	KeyHash      string         `json:"key_hash"`
	TypeName     TypeRef        `json:"type_name"`
	Key          Key            `json:"key"`
	Members      []MemberRecord `json:"members"`
	Constructors [][]TypeRef    `json:"constructors"`
}

// Methods returns the member signatures in table order.
func (r SynthesisRecord) Methods() []string {
	out := make([]string, len(r.Members))
	for i, m := range r.Members {
		out[i] = m.Signature
	}
	return out
}
