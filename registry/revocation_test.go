package registry_test

import (
	"encoding/json"
	"testing"
	"time"

	"educhain/ledger"
	"educhain/model"
	"educhain/registry"
	"educhain/sentinel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func revocationWorld(t *testing.T) *world {
	t.Helper()
	w := newWorld()
	require.NoError(t, w.as(admin).run(func(tx *ledger.Tx) error {
		return w.revocations.SetAdmin(tx, admin)
	}))
	return w
}

func revoke(w *world, caller string, id uint64, reason string) error {
	return w.as(caller).run(func(tx *ledger.Tx) error {
		_, err := w.revocations.Revoke(tx, caller, id, reason)
		return err
	})
}

func TestRevocationSetAdminOnce(t *testing.T) {
	w := revocationWorld(t)
	err := w.as(stranger).run(func(tx *ledger.Tx) error {
		return w.revocations.SetAdmin(tx, stranger)
	})
	assert.ErrorIs(t, err, registry.ErrAdminAlreadySet)
}

func TestRevocationRevoke(t *testing.T) {
	w := revocationWorld(t)
	w.h.Events()

	assert.ErrorIs(t, revoke(w, stranger, 3, "forged"), sentinel.ErrUnauthorized)
	assert.Empty(t, w.h.Events())

	w.h.Advance(time.Hour)
	require.NoError(t, revoke(w, admin, 3, "forged"))

	events := w.h.Events()
	require.Len(t, events, 1)
	assert.Equal(t, registry.EventCertificateRevoked, events[0].EventName)
	var payload model.RevokedCertificate
	require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
	assert.Equal(t, uint64(3), payload.CertificateID)
	assert.Equal(t, admin, payload.RevokedBy)

	revoked, err := call(w, func(tx *ledger.Tx) (bool, error) {
		return w.revocations.IsRevoked(tx, 3)
	})
	require.NoError(t, err)
	assert.True(t, revoked)

	details, err := call(w, func(tx *ledger.Tx) (*model.RevocationDetails, error) {
		return w.revocations.GetDetails(tx, 3)
	})
	require.NoError(t, err)
	assert.True(t, details.Found)
	assert.Equal(t, "forged", details.Reason)
	assert.Equal(t, admin, details.RevokedBy)
	assert.True(t, details.RevokedAt.Equal(w.h.Now()))

	first := w.h.Now()
	w.h.Advance(time.Hour)
	require.NoError(t, revoke(w, admin, 3, "again"))
	events = w.h.Events()
	require.Len(t, events, 1)
	assert.Equal(t, registry.EventCertificateRevoked, events[0].EventName)

	details, err = call(w, func(tx *ledger.Tx) (*model.RevocationDetails, error) {
		return w.revocations.GetDetails(tx, 3)
	})
	require.NoError(t, err)
	assert.Equal(t, "forged", details.Reason)
	assert.True(t, details.RevokedAt.Equal(first))
}

func TestRevocationRepeatAppendsToLog(t *testing.T) {
	w := revocationWorld(t)
	require.NoError(t, revoke(w, admin, 8, "plagiarism"))
	require.NoError(t, revoke(w, admin, 2, ""))
	w.h.Advance(time.Minute)
	require.NoError(t, revoke(w, admin, 8, "confirmed on appeal"))

	all, err := call(w, func(tx *ledger.Tx) ([]model.RevokedCertificate, error) {
		return w.revocations.ListAll(tx)
	})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uint64{8, 2, 8}, []uint64{all[0].CertificateID, all[1].CertificateID, all[2].CertificateID})
	assert.Equal(t, "plagiarism", all[0].Reason)
	assert.Equal(t, "confirmed on appeal", all[2].Reason)
	assert.True(t, all[2].RevokedAt.After(all[0].RevokedAt))

	revoked, err := call(w, func(tx *ledger.Tx) (bool, error) {
		return w.revocations.IsRevoked(tx, 8)
	})
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRevocationQueriesOnUnknownID(t *testing.T) {
	w := revocationWorld(t)
	revoked, err := call(w, func(tx *ledger.Tx) (bool, error) {
		return w.revocations.IsRevoked(tx, 9)
	})
	require.NoError(t, err)
	assert.False(t, revoked)

	details, err := call(w, func(tx *ledger.Tx) (*model.RevocationDetails, error) {
		return w.revocations.GetDetails(tx, 9)
	})
	require.NoError(t, err)
	assert.False(t, details.Found)
	assert.Empty(t, details.Reason)
}

func TestRevocationListAllKeepsOrder(t *testing.T) {
	w := revocationWorld(t)
	for _, id := range []uint64{30, 4, 17} {
		require.NoError(t, revoke(w, admin, id, ""))
	}
	all, err := call(w, func(tx *ledger.Tx) ([]model.RevokedCertificate, error) {
		return w.revocations.ListAll(tx)
	})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, uint64(30), all[0].CertificateID)
	assert.Equal(t, uint64(4), all[1].CertificateID)
	assert.Equal(t, uint64(17), all[2].CertificateID)
}
