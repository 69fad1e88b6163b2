package types

// Attribute is the record the ledger runtime stores for a named
// attribute of a DID account. The query service only ever reads it.
type Attribute struct {
	// Key within the owning account's namespace.
	Name []byte `cramberry:"1"`
	// Opaque payload.
	Value []byte `cramberry:"2"`
	// Block number the attribute is valid up to. Interpreted by the
	// ledger runtime; passed through unmodified.
	Validity uint64 `cramberry:"3"`
	// Ledger moment the attribute was written.
	Created uint64 `cramberry:"4"`
}

// RPCAttribute is the transport-safe projection of an Attribute.
type RPCAttribute struct {
	Name     Bytes  `cramberry:"1" json:"name"`
	Value    Bytes  `cramberry:"2" json:"value"`
	Validity uint64 `cramberry:"3" json:"validity"`
	Created  uint64 `cramberry:"4" json:"created"`
}

// NewRPCAttribute converts a ledger record into its transport form.
// Name and value are copied so the result never aliases ledger memory.
func NewRPCAttribute(a Attribute) RPCAttribute {
	return RPCAttribute{
		Name:     Bytes(a.Name).Clone(),
		Value:    Bytes(a.Value).Clone(),
		Validity: a.Validity,
		Created:  a.Created,
	}
}
