package didrpctest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/blockberries/didrpc"
	"github.com/blockberries/didrpc/types"
)

// Factory returns a querier serving the given ledger. Transports
// typically start a server over the ledger and return a client; the
// factory is responsible for registering cleanup with t.
type Factory func(t *testing.T, ledger didrpc.Ledger) didrpc.Querier

// RunComplianceSuite runs the standard behavioral suite against a
// querier built by factory. Each subtest gets a fresh ledger.
func RunComplianceSuite(t *testing.T, factory Factory) {
	t.Helper()

	t.Run("scenario_present_at_200", func(t *testing.T) {
		ledger, _, block200 := Scenario()
		h := NewHarness(t, factory(t, ledger))
		h.MustBePresent(ScenarioAccount, ScenarioAttribute(), types.At(block200))
	})

	t.Run("scenario_absent_before_creation", func(t *testing.T) {
		ledger, block10, _ := Scenario()
		h := NewHarness(t, factory(t, ledger))
		h.MustBeAbsent(ScenarioAccount, ScenarioAttribute().Name, types.At(block10))
	})

	t.Run("scenario_runtime_failure", func(t *testing.T) {
		ledger, _, block200 := Scenario()
		h := NewHarness(t, factory(t, ledger))
		ledger.Fail(errors.New("runtime forced to fail"))
		svcErr := h.MustFail(ScenarioAccount, ScenarioAttribute().Name, types.At(block200), didrpc.RuntimeError)
		if svcErr.Code() != 1 {
			t.Errorf("expected code 1, got %d", svcErr.Code())
		}
		if svcErr.Data == "" {
			t.Error("expected diagnostic data on runtime failure")
		}
	})

	t.Run("never_written_is_absent", func(t *testing.T) {
		ledger, _, block200 := Scenario()
		h := NewHarness(t, factory(t, ledger))
		h.MustBeAbsent(ScenarioAccount, []byte("phone"), types.At(block200))
		h.MustBeAbsent(types.AccountID{0xbb}, []byte("email"), types.At(block200))
	})

	t.Run("failure_independent_of_query", func(t *testing.T) {
		ledger, _, block200 := Scenario()
		h := NewHarness(t, factory(t, ledger))
		ledger.Fail(errors.New("runtime forced to fail"))
		h.MustFail(ScenarioAccount, []byte("email"), types.At(block200), didrpc.RuntimeError)
		h.MustFail(types.AccountID{0x01}, []byte("unknown"), types.At(block200), didrpc.RuntimeError)
		h.MustFail(types.AccountID{}, nil, types.Best(), didrpc.RuntimeError)
	})

	t.Run("unknown_block_is_runtime_failure", func(t *testing.T) {
		ledger, _, _ := Scenario()
		h := NewHarness(t, factory(t, ledger))
		h.MustFail(ScenarioAccount, []byte("email"), types.At(types.Hash{0xff}), didrpc.RuntimeError)
	})

	t.Run("idempotent_at_fixed_snapshot", func(t *testing.T) {
		ledger, _, block200 := Scenario()
		h := NewHarness(t, factory(t, ledger))
		first := h.MustBePresent(ScenarioAccount, ScenarioAttribute(), types.At(block200))

		// New blocks that overwrite the attribute must not change
		// the answer at a pinned snapshot.
		updated := ScenarioAttribute()
		updated.Value = []byte("new@b.com")
		ledger.Set(ScenarioAccount, updated)
		ledger.Seal()

		for i := 0; i < 3; i++ {
			again := h.MustBePresent(ScenarioAccount, ScenarioAttribute(), types.At(block200))
			AssertAttribute(t, ScenarioAttribute(), *again)
			if first.Validity != again.Validity || first.Created != again.Created {
				t.Fatalf("repeated read differs: %+v vs %+v", first, again)
			}
		}
	})

	t.Run("best_follows_head", func(t *testing.T) {
		ledger := NewMemLedger()
		ledger.SealTo(5)
		h := NewHarness(t, factory(t, ledger))
		h.MustBeAbsent(ScenarioAccount, []byte("email"), types.Best())

		ledger.Set(ScenarioAccount, ScenarioAttribute())
		ledger.Seal()
		h.MustBePresent(ScenarioAccount, ScenarioAttribute(), types.Best())
	})

	t.Run("removed_reads_absent", func(t *testing.T) {
		ledger, _, block200 := Scenario()
		h := NewHarness(t, factory(t, ledger))
		ledger.Remove(ScenarioAccount, []byte("email"))
		removedAt := ledger.Seal()

		h.MustBeAbsent(ScenarioAccount, []byte("email"), types.At(removedAt))
		h.MustBePresent(ScenarioAccount, ScenarioAttribute(), types.At(block200))
	})

	t.Run("empty_name_is_literal_key", func(t *testing.T) {
		ledger := NewMemLedger()
		h := NewHarness(t, factory(t, ledger))
		h.MustBeAbsent(ScenarioAccount, nil, types.Best())

		anon := types.Attribute{Value: []byte("anonymous"), Validity: 1, Created: 1}
		ledger.Set(ScenarioAccount, anon)
		ledger.Seal()
		h.MustBePresent(ScenarioAccount, anon, types.Best())
	})

	t.Run("binary_payload_preserved", func(t *testing.T) {
		ledger := NewMemLedger()
		h := NewHarness(t, factory(t, ledger))
		raw := types.Attribute{
			Name:     []byte{0x00, 0xff, 0x10},
			Value:    []byte{0xde, 0xad, 0x00, 0xbe, 0xef},
			Validity: ^uint64(0),
			Created:  1 << 40,
		}
		ledger.Set(ScenarioAccount, raw)
		ledger.Seal()
		h.MustBePresent(ScenarioAccount, raw, types.Best())
	})

	t.Run("concurrent_reads", func(t *testing.T) {
		ledger, _, block200 := Scenario()
		q := factory(t, ledger)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				attr, err := q.ReadAttribute(context.Background(), ScenarioAccount, types.Bytes("email"), types.At(block200))
				if err != nil {
					t.Errorf("concurrent ReadAttribute failed: %v", err)
					return
				}
				if attr == nil || attr.Validity != 100 {
					t.Errorf("concurrent ReadAttribute: unexpected %+v", attr)
				}
			}()
		}
		wg.Wait()
	})
}
