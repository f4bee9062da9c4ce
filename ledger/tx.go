package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"educhain/sentinel"

	"github.com/hyperledger/fabric-chaincode-go/pkg/cid"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("educhain.ledger")

type write struct {
	value   []byte
	deleted bool
}

type pendingEvent struct {
	name    string
	payload []byte
}

// Tx is one atomic unit of work over the world state. Reads fall through to the
// stub, writes are buffered and reach the stub only on Commit, so an entry point
// that fails halfway leaves nothing behind. Registries invoked by one another
// within the same contract call share a single Tx.
type Tx struct {
	stub     shim.ChaincodeStubInterface
	identity cid.ClientIdentity
	writes   map[string]write
	event    *pendingEvent
}

// Begin opens a Tx over the invocation's stub and client identity.
func Begin(stub shim.ChaincodeStubInterface, identity cid.ClientIdentity) *Tx {
	return &Tx{
		stub:     stub,
		identity: identity,
		writes:   make(map[string]write),
	}
}

// Run executes fn inside a fresh Tx and commits only if fn succeeds.
func Run(ctx contractapi.TransactionContextInterface, fn func(tx *Tx) error) error {
	tx := Begin(ctx.GetStub(), ctx.GetClientIdentity())
	if err := fn(tx); err != nil {
		if n := len(tx.writes); n > 0 {
			logger.Debugf("Discarding %d buffered writes after failure: %v", n, err)
		}
		return err
	}
	return tx.Commit()
}

// Do is Run for entry points that return a value.
func Do[T any](ctx contractapi.TransactionContextInterface, fn func(tx *Tx) (T, error)) (T, error) {
	var out T
	err := Run(ctx, func(tx *Tx) error {
		var err error
		out, err = fn(tx)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Commit flushes buffered writes to the stub in key order and emits the pending
// event, if any. A Tx must not be used after Commit.
func (tx *Tx) Commit() error {
	keys := make([]string, 0, len(tx.writes))
	for k := range tx.writes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		w := tx.writes[k]
		if w.deleted {
			if err := tx.stub.DelState(k); err != nil {
				return fmt.Errorf("failed to delete state for key %q: %w", k, err)
			}
			continue
		}
		if err := tx.stub.PutState(k, w.value); err != nil {
			return fmt.Errorf("failed to put state for key %q: %w", k, err)
		}
	}
	if tx.event != nil {
		if err := tx.stub.SetEvent(tx.event.name, tx.event.payload); err != nil {
			return fmt.Errorf("failed to set event '%s': %w", tx.event.name, err)
		}
	}
	tx.writes = nil
	tx.event = nil
	return nil
}

func (tx *Tx) getState(key string) ([]byte, error) {
	if w, ok := tx.writes[key]; ok {
		if w.deleted {
			return nil, nil
		}
		return w.value, nil
	}
	value, err := tx.stub.GetState(key)
	if err != nil {
		return nil, fmt.Errorf("failed to read state for key %q: %w", key, err)
	}
	return value, nil
}

func (tx *Tx) putState(key string, value []byte) error {
	if key == "" {
		return errors.New("state key cannot be empty")
	}
	if value == nil {
		value = []byte{}
	}
	tx.writes[key] = write{value: value}
	return nil
}

func (tx *Tx) delState(key string) {
	tx.writes[key] = write{deleted: true}
}

type kv struct {
	key   string
	value []byte
}

// scan merges a partial composite key range query with the buffered writes
// and returns the live entries in key order.
func (tx *Tx) scan(objectType string, attrs []string) ([]kv, error) {
	prefix, err := tx.stub.CreateCompositeKey(objectType, attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to create partial key for '%s': %w", objectType, err)
	}
	it, err := tx.stub.GetStateByPartialCompositeKey(objectType, attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to query '%s' range: %w", objectType, err)
	}
	defer it.Close()

	merged := make(map[string][]byte)
	for it.HasNext() {
		res, err := it.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to iterate '%s' range: %w", objectType, err)
		}
		merged[res.Key] = res.Value
	}
	for k, w := range tx.writes {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if w.deleted {
			delete(merged, k)
		} else {
			merged[k] = w.value
		}
	}

	out := make([]kv, 0, len(merged))
	for k, v := range merged {
		out = append(out, kv{key: k, value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out, nil
}

// Caller returns the identity of the invoking client.
func (tx *Tx) Caller() (string, error) {
	if tx.identity == nil {
		return "", errors.New("client identity is nil from context")
	}
	id, err := tx.identity.GetID()
	if err != nil {
		return "", fmt.Errorf("failed to get client identity ID from context: %w", err)
	}
	if id == "" {
		return "", errors.New("client identity ID from context is empty")
	}
	return id, nil
}

// RequireAuth fails with sentinel.ErrUnauthorized unless the invoking client is
// identity. It must run before any state tied to identity is read or written.
func (tx *Tx) RequireAuth(identity string) error {
	if strings.TrimSpace(identity) == "" {
		return fmt.Errorf("%w: identity cannot be empty", sentinel.ErrUnauthorized)
	}
	caller, err := tx.Caller()
	if err != nil {
		return fmt.Errorf("%w: %v", sentinel.ErrUnauthorized, err)
	}
	if caller != identity {
		return fmt.Errorf("%w: caller '%s' cannot act as '%s'", sentinel.ErrUnauthorized, caller, identity)
	}
	return nil
}

// Now returns the transaction timestamp, identical on every endorsing peer.
func (tx *Tx) Now() (time.Time, error) {
	ts, err := tx.stub.GetTxTimestamp()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get transaction timestamp: %w", err)
	}
	return ts.AsTime().UTC(), nil
}

// SetEvent records the chaincode event to emit on commit. Fabric keeps one event
// per transaction, so a later call replaces an earlier one.
func (tx *Tx) SetEvent(name string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event '%s' payload: %w", name, err)
	}
	tx.event = &pendingEvent{name: name, payload: b}
	return nil
}
