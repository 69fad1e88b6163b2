package types_test

import (
	"bytes"
	"testing"

	"github.com/blockberries/didrpc/types"

	"github.com/blockberries/cramberry/pkg/cramberry"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// roundTrip marshals v, unmarshals into a new T, and returns it.
func roundTrip[T any](t *testing.T, v T) T {
	t.Helper()
	data, err := cramberry.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var out T
	if err := cramberry.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	return out
}

func TestRPCAttribute_RoundTrip(t *testing.T) {
	v := types.RPCAttribute{
		Name:     types.Bytes("email"),
		Value:    types.Bytes("a@b.com"),
		Validity: 100,
		Created:  50,
	}
	got := roundTrip(t, v)
	if !bytes.Equal(got.Name, v.Name) || !bytes.Equal(got.Value, v.Value) {
		t.Fatalf("payload mismatch: got %+v, want %+v", got, v)
	}
	if got.Validity != 100 || got.Created != 50 {
		t.Fatalf("numeric mismatch: got %+v", got)
	}
}

type pinned struct {
	At *types.Hash `cramberry:"1"`
}

func TestHash_RoundTrip(t *testing.T) {
	h := types.Hash{0xde, 0xad, 0xbe, 0xef}
	got := roundTrip(t, pinned{At: &h})
	if got.At == nil || *got.At != h {
		t.Fatalf("Hash round-trip failed: got %v, want %v", got.At, h)
	}
}

func TestNewRPCAttribute_Copies(t *testing.T) {
	rec := types.Attribute{
		Name:     []byte("email"),
		Value:    []byte("a@b.com"),
		Validity: 100,
		Created:  50,
	}
	out := types.NewRPCAttribute(rec)

	if string(out.Name) != "email" || string(out.Value) != "a@b.com" {
		t.Fatalf("unexpected payload: %+v", out)
	}
	if out.Validity != rec.Validity || out.Created != rec.Created {
		t.Fatalf("unexpected numeric fields: %+v", out)
	}

	// The transport copy must not alias the record.
	rec.Value[0] = 'X'
	if string(out.Value) != "a@b.com" {
		t.Fatalf("transport value aliases record: %q", out.Value)
	}
}

func TestNewRPCAttribute_EmptyName(t *testing.T) {
	out := types.NewRPCAttribute(types.Attribute{})
	if out.Name == nil || len(out.Name) != 0 {
		t.Fatalf("expected empty non-nil name, got %#v", out.Name)
	}
}

func TestBytes_JSON(t *testing.T) {
	data, err := json.Marshal(types.Bytes("email"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"0x656d61696c"` {
		t.Fatalf("unexpected encoding: %s", data)
	}

	var b types.Bytes
	if err := json.Unmarshal(data, &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(b) != "email" {
		t.Fatalf("unexpected decode: %q", b)
	}

	empty, _ := json.Marshal(types.Bytes{})
	if string(empty) != `"0x"` {
		t.Fatalf("unexpected empty encoding: %s", empty)
	}

	if err := json.Unmarshal([]byte(`"656d61696c"`), &b); err == nil {
		t.Fatal("expected error for missing 0x prefix")
	}
}

func TestRPCAttribute_JSON(t *testing.T) {
	attr := types.NewRPCAttribute(types.Attribute{
		Name:     []byte("email"),
		Value:    []byte{0x00, 0xff},
		Validity: 100,
		Created:  50,
	})
	data, err := json.Marshal(attr)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"name":"0x656d61696c","value":"0x00ff","validity":100,"created":50}`
	if string(data) != want {
		t.Fatalf("got %s, want %s", data, want)
	}

	var back types.RPCAttribute
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !bytes.Equal(back.Value, attr.Value) || back.Validity != 100 || back.Created != 50 {
		t.Fatalf("unexpected decode: %+v", back)
	}
}

func TestParseAccountID(t *testing.T) {
	acc := types.AccountID{0xaa}
	got, err := types.ParseAccountID(acc.String())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != acc {
		t.Fatalf("got %v, want %v", got, acc)
	}

	if _, err := types.ParseAccountID("0xaa"); err == nil {
		t.Fatal("expected length error")
	}
	if _, err := types.ParseHash("0xzz"); err == nil {
		t.Fatal("expected hex error")
	}
}

func TestSnapshot(t *testing.T) {
	best := types.Best()
	if !best.IsBest() || best.Ptr() != nil {
		t.Fatalf("expected unspecified snapshot, got %v", best)
	}
	if best.String() != "best" {
		t.Fatalf("unexpected string: %s", best)
	}
	if (types.Snapshot{}) != best {
		t.Fatal("zero Snapshot should be the unspecified snapshot")
	}

	h := types.Hash{0x01}
	at := types.At(h)
	got, ok := at.Hash()
	if !ok || got != h {
		t.Fatalf("expected pinned hash %v, got %v (ok=%v)", h, got, ok)
	}

	if types.SnapshotFromPtr(at.Ptr()) != at {
		t.Fatal("Ptr/SnapshotFromPtr should round-trip")
	}
	if !types.SnapshotFromPtr(nil).IsBest() {
		t.Fatal("nil pointer should be the unspecified snapshot")
	}
}
