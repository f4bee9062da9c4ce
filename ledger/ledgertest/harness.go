// Package ledgertest runs ledger code against shimtest.MockStub with a
// switchable client identity and a controllable transaction clock.
package ledgertest

import (
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	"educhain/ledger"

	"github.com/hyperledger/fabric-chaincode-go/shimtest"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric-protos-go/peer"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Epoch is the transaction time of a fresh Harness.
var Epoch = time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)

// Identity is a minimal cid.ClientIdentity whose ID is chosen by the test.
type Identity struct {
	ID    string
	MSPID string
	Attrs map[string]string
}

func (i *Identity) GetID() (string, error) {
	if i.ID == "" {
		return "", errors.New("no identity set")
	}
	return i.ID, nil
}

func (i *Identity) GetMSPID() (string, error) { return i.MSPID, nil }

func (i *Identity) GetAttributeValue(attrName string) (string, bool, error) {
	v, ok := i.Attrs[attrName]
	return v, ok, nil
}

func (i *Identity) AssertAttributeValue(attrName, attrValue string) error {
	if v, ok := i.Attrs[attrName]; !ok || v != attrValue {
		return fmt.Errorf("attribute %s does not equal %s", attrName, attrValue)
	}
	return nil
}

func (i *Identity) GetX509Certificate() (*x509.Certificate, error) { return nil, nil }

// Harness owns one MockStub and plays successive transactions against it.
type Harness struct {
	Stub   *shimtest.MockStub
	caller string
	now    time.Time
	txSeq  int
	events []*peer.ChaincodeEvent
}

// New returns a Harness with empty world state, no caller and the clock at Epoch.
func New() *Harness {
	return &Harness{
		Stub: shimtest.NewMockStub("educhain", nil),
		now:  Epoch,
	}
}

// As sets the identity that invokes subsequent transactions.
func (h *Harness) As(id string) *Harness {
	h.caller = id
	return h
}

// Now returns the timestamp the next transaction will carry.
func (h *Harness) Now() time.Time { return h.now }

// Advance moves the transaction clock forward.
func (h *Harness) Advance(d time.Duration) { h.now = h.now.Add(d) }

// Context builds a transaction context for the current caller.
func (h *Harness) Context() *contractapi.TransactionContext {
	ctx := new(contractapi.TransactionContext)
	ctx.SetStub(h.Stub)
	ctx.SetClientIdentity(&Identity{ID: h.caller, MSPID: "EduchainMSP"})
	return ctx
}

// Invoke runs fn as one transaction and collects any event it emitted.
func (h *Harness) Invoke(fn func(ctx contractapi.TransactionContextInterface) error) error {
	h.txSeq++
	txID := fmt.Sprintf("tx-%04d", h.txSeq)
	h.Stub.MockTransactionStart(txID)
	h.Stub.TxTimestamp = timestamppb.New(h.now)
	defer h.Stub.MockTransactionEnd(txID)

	err := fn(h.Context())
	h.drain()
	return err
}

// Run executes fn inside ledger.Run, committing only on success.
func (h *Harness) Run(fn func(tx *ledger.Tx) error) error {
	return h.Invoke(func(ctx contractapi.TransactionContextInterface) error {
		return ledger.Run(ctx, fn)
	})
}

// Do is Run for functions that return a value.
func Do[T any](h *Harness, fn func(tx *ledger.Tx) (T, error)) (T, error) {
	var out T
	err := h.Run(func(tx *ledger.Tx) error {
		var err error
		out, err = fn(tx)
		return err
	})
	return out, err
}

// Events returns the events emitted since the last call and forgets them.
func (h *Harness) Events() []*peer.ChaincodeEvent {
	h.drain()
	out := h.events
	h.events = nil
	return out
}

// StateSize counts the keys currently in the world state.
func (h *Harness) StateSize() int { return len(h.Stub.State) }

// Snapshot copies the world state so tests can assert a failed call changed nothing.
func (h *Harness) Snapshot() map[string]string {
	out := make(map[string]string, len(h.Stub.State))
	for k, v := range h.Stub.State {
		out[k] = string(v)
	}
	return out
}

func (h *Harness) drain() {
	for {
		select {
		case ev := <-h.Stub.ChaincodeEventsChannel:
			h.events = append(h.events, ev)
		default:
			return
		}
	}
}
