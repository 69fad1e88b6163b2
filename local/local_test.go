package local

import (
	"context"
	"testing"

	"github.com/blockberries/didrpc"
	didrpctest "github.com/blockberries/didrpc/testing"
	"github.com/blockberries/didrpc/types"
)

func TestLocalConnection_Compliance(t *testing.T) {
	didrpctest.RunComplianceSuite(t, func(t *testing.T, ledger didrpc.Ledger) didrpc.Querier {
		conn := NewConnection(ledger)
		t.Cleanup(func() { conn.Close() })
		return conn
	})
}

func TestLocalConnection_UsesMock(t *testing.T) {
	best := types.Hash{0x42}
	mock := &didrpctest.MockLedger{
		BestHashFn: func() types.Hash { return best },
		ReadAttributeFn: func(_ context.Context, at types.Hash, _ types.AccountID, name []byte) (*types.Attribute, error) {
			if at != best {
				t.Errorf("expected best hash %s, got %s", best, at)
			}
			return &types.Attribute{Name: name, Value: []byte("v")}, nil
		},
	}
	conn := NewConnection(mock)
	defer conn.Close()

	attr, err := conn.ReadAttribute(context.Background(), types.AccountID{0x01}, types.Bytes("k"), types.Best())
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if attr == nil || string(attr.Value) != "v" {
		t.Fatalf("unexpected attribute: %+v", attr)
	}
	if mock.ReadAttributeCalls.Load() != 1 || mock.BestHashCalls.Load() != 1 {
		t.Errorf("unexpected call counts: read=%d best=%d",
			mock.ReadAttributeCalls.Load(), mock.BestHashCalls.Load())
	}
	if conn.Server() == nil {
		t.Error("expected underlying server")
	}
}
