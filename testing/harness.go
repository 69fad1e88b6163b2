package didrpctest

import (
	"bytes"
	"context"
	"testing"

	"github.com/blockberries/didrpc"
	"github.com/blockberries/didrpc/types"
)

// Harness provides a convenient test harness for exercising a
// didrpc.Querier.
type Harness struct {
	t *testing.T
	q didrpc.Querier
}

// NewHarness creates a test harness wrapping the given querier.
func NewHarness(t *testing.T, q didrpc.Querier) *Harness {
	t.Helper()
	return &Harness{t: t, q: q}
}

// Querier returns the underlying querier for direct access.
func (h *Harness) Querier() didrpc.Querier {
	return h.q
}

// Read queries an attribute and fails the test on error.
func (h *Harness) Read(account types.AccountID, name []byte, at types.Snapshot) *types.RPCAttribute {
	h.t.Helper()
	attr, err := h.q.ReadAttribute(context.Background(), account, types.Bytes(name), at)
	if err != nil {
		h.t.Fatalf("ReadAttribute(%s, %q, %s) failed: %v", account, name, at, err)
	}
	return attr
}

// MustBePresent asserts that the attribute exists and equals want
// field by field.
func (h *Harness) MustBePresent(account types.AccountID, want types.Attribute, at types.Snapshot) *types.RPCAttribute {
	h.t.Helper()
	got := h.Read(account, want.Name, at)
	if got == nil {
		h.t.Fatalf("expected attribute %q at %s, got absence", want.Name, at)
	}
	AssertAttribute(h.t, want, *got)
	return got
}

// MustBeAbsent asserts that the attribute does not exist.
func (h *Harness) MustBeAbsent(account types.AccountID, name []byte, at types.Snapshot) {
	h.t.Helper()
	if got := h.Read(account, name, at); got != nil {
		h.t.Fatalf("expected absence of %q at %s, got %+v", name, at, got)
	}
}

// MustFail asserts that the query fails with a ServiceError of the
// given kind and returns it.
func (h *Harness) MustFail(account types.AccountID, name []byte, at types.Snapshot, kind didrpc.ErrorKind) *didrpc.ServiceError {
	h.t.Helper()
	attr, err := h.q.ReadAttribute(context.Background(), account, types.Bytes(name), at)
	if err == nil {
		h.t.Fatalf("expected %s, got success (%+v)", kind, attr)
	}
	if attr != nil {
		h.t.Errorf("expected nil attribute alongside error, got %+v", attr)
	}
	svcErr, ok := didrpc.IsServiceError(err)
	if !ok {
		h.t.Fatalf("expected *didrpc.ServiceError, got %T: %v", err, err)
	}
	if svcErr.Kind != kind || svcErr.Code() != kind.Code() {
		h.t.Fatalf("expected kind %s (code %d), got %s (code %d)",
			kind, kind.Code(), svcErr.Kind, svcErr.Code())
	}
	return svcErr
}

// AssertAttribute checks that a transport attribute matches a ledger
// record byte-for-byte and numerically.
func AssertAttribute(t *testing.T, want types.Attribute, got types.RPCAttribute) {
	t.Helper()
	if !bytes.Equal(got.Name, want.Name) {
		t.Errorf("name: got %q, want %q", got.Name, want.Name)
	}
	if !bytes.Equal(got.Value, want.Value) {
		t.Errorf("value: got %q, want %q", got.Value, want.Value)
	}
	if got.Validity != want.Validity {
		t.Errorf("validity: got %d, want %d", got.Validity, want.Validity)
	}
	if got.Created != want.Created {
		t.Errorf("created: got %d, want %d", got.Created, want.Created)
	}
}

// --- Helper Factories ---

// ScenarioAccount is the account used by the reference scenario.
var ScenarioAccount = types.AccountID{0xaa}

// ScenarioAttribute is the attribute written by the reference
// scenario.
func ScenarioAttribute() types.Attribute {
	return types.Attribute{
		Name:     []byte("email"),
		Value:    []byte("a@b.com"),
		Validity: 100,
		Created:  50,
	}
}

// Scenario builds the reference ledger: ScenarioAttribute is written
// for ScenarioAccount at block 150 and the chain is sealed to block
// 200. It returns the ledger and the hashes of blocks 10 and 200.
func Scenario() (ledger *MemLedger, block10, block200 types.Hash) {
	ledger = NewMemLedger()
	block10 = ledger.SealTo(10)
	ledger.SealTo(149)
	ledger.Set(ScenarioAccount, ScenarioAttribute())
	ledger.SealTo(150)
	block200 = ledger.SealTo(200)
	return ledger, block10, block200
}
