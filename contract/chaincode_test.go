package contract_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"math/big"
	"testing"
	"time"

	"educhain/contract"
	"educhain/model"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-chaincode-go/pkg/cid"
	"github.com/hyperledger/fabric-chaincode-go/shimtest"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric-protos-go/msp"
	"github.com/hyperledger/fabric-protos-go/peer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// peerNode drives the assembled chaincode through MockInvoke, so arguments and
// results pass through contractapi metadata validation and marshaling.
type peerNode struct {
	t     *testing.T
	stub  *shimtest.MockStub
	txSeq int
}

// member is an enrolled client: a serialized MSP identity and the ID cid derives from it.
type member struct {
	creator []byte
	id      string
}

func newPeerNode(t *testing.T) *peerNode {
	t.Helper()
	cc, err := contractapi.NewChaincode(contract.New()...)
	require.NoError(t, err)
	return &peerNode{t: t, stub: shimtest.NewMockStub("educhain", cc)}
}

func (n *peerNode) enroll(cn string) member {
	n.t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(n.t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: cn, Organization: []string{"Educhain"}},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(n.t, err)
	creator, err := proto.Marshal(&msp.SerializedIdentity{
		Mspid:   "EduchainMSP",
		IdBytes: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
	})
	require.NoError(n.t, err)

	n.stub.Creator = creator
	id, err := cid.GetID(n.stub)
	require.NoError(n.t, err)
	return member{creator: creator, id: id}
}

func (n *peerNode) invoke(as member, fn string, args ...string) peer.Response {
	n.txSeq++
	n.stub.Creator = as.creator
	raw := [][]byte{[]byte(fn)}
	for _, a := range args {
		raw = append(raw, []byte(a))
	}
	res := n.stub.MockInvoke(fmt.Sprintf("cc-tx-%04d", n.txSeq), raw)
	for len(n.stub.ChaincodeEventsChannel) > 0 {
		<-n.stub.ChaincodeEventsChannel
	}
	return res
}

func (n *peerNode) ok(as member, fn string, args ...string) []byte {
	n.t.Helper()
	res := n.invoke(as, fn, args...)
	require.Equal(n.t, int32(200), res.Status, "%s: %s", fn, res.Message)
	return res.Payload
}

func TestChaincodeBuildsEachContract(t *testing.T) {
	for _, c := range contract.New() {
		_, err := contractapi.NewChaincode(c)
		assert.NoError(t, err, "%T", c)
	}
}

func TestCompleteCourseAndCloseTicketOverTheWire(t *testing.T) {
	n := newPeerNode(t)
	registrar := n.enroll("registrar")
	campus := n.enroll("campus-wallet")
	learner := n.enroll("learner")
	helpdesk := n.enroll("helpdesk")

	n.ok(registrar, "institution:SetAdmin", registrar.id)
	instID := string(n.ok(campus, "institution:RegisterInstitution", "Campus", campus.id, "{}"))
	assert.Equal(t, "1", instID)
	n.ok(registrar, "institution:VerifyInstitution", instID, registrar.id)
	courseID := string(n.ok(campus, "course:CreateCourse", "Databases", campus.id, "1200", `{"credits":10}`, "3"))
	n.ok(learner, "course:EnrollInCourse", courseID, learner.id)

	var enrollment model.Enrollment
	require.NoError(t, json.Unmarshal(n.ok(learner, "course:GetEnrollment", courseID, learner.id), &enrollment))
	assert.False(t, enrollment.Completed)
	assert.True(t, enrollment.CompletedAt.IsZero())

	n.ok(campus, "course:CompleteCourse", courseID, learner.id)
	require.NoError(t, json.Unmarshal(n.ok(learner, "course:GetEnrollment", courseID, learner.id), &enrollment))
	assert.True(t, enrollment.Completed)
	assert.False(t, enrollment.CompletedAt.IsZero())

	var certs []model.Certificate
	require.NoError(t, json.Unmarshal(n.ok(learner, "certificate:ListCertificates", learner.id), &certs))
	require.Len(t, certs, 1)
	assert.Equal(t, campus.id, certs[0].Institution)

	var ticket model.SupportTicket
	require.NoError(t, json.Unmarshal(n.ok(learner, "support:SubmitTicket", learner.id, "CERTIFICATE", "name misspelled", "please fix"), &ticket))
	assert.True(t, ticket.ClosedAt.IsZero())
	ticketID := fmt.Sprint(ticket.ID)

	res := n.invoke(helpdesk, "support:CloseTicket", helpdesk.id, ticketID)
	assert.Equal(t, int32(500), res.Status)
	assert.Contains(t, res.Message, "[InvalidTransition]")

	n.ok(helpdesk, "support:UpdateTicketStatus", helpdesk.id, ticketID, "RESOLVED")
	require.NoError(t, json.Unmarshal(n.ok(helpdesk, "support:CloseTicket", helpdesk.id, ticketID), &ticket))
	assert.Equal(t, model.TicketClosed, ticket.Status)
	assert.False(t, ticket.ClosedAt.IsZero())

	var stored model.SupportTicket
	require.NoError(t, json.Unmarshal(n.ok(learner, "support:GetTicket", ticketID), &stored))
	assert.True(t, stored.ClosedAt.Equal(ticket.ClosedAt))
}

func TestRepeatRevocationOverTheWire(t *testing.T) {
	n := newPeerNode(t)
	registrar := n.enroll("registrar")

	n.ok(registrar, "revocation:SetAdmin", registrar.id)
	n.ok(registrar, "revocation:RevokeCertificate", registrar.id, "7", "forged transcript")
	n.ok(registrar, "revocation:RevokeCertificate", registrar.id, "7", "confirmed")

	var log []model.RevokedCertificate
	require.NoError(t, json.Unmarshal(n.ok(registrar, "revocation:ListRevokedCertificates"), &log))
	require.Len(t, log, 2)
	assert.Equal(t, "forged transcript", log[0].Reason)
	assert.Equal(t, "confirmed", log[1].Reason)

	var details model.RevocationDetails
	require.NoError(t, json.Unmarshal(n.ok(registrar, "revocation:GetRevocationDetails", "7"), &details))
	assert.True(t, details.Found)
	assert.Equal(t, "forged transcript", details.Reason)
}

func TestWireRejectsImpersonation(t *testing.T) {
	n := newPeerNode(t)
	registrar := n.enroll("registrar")
	mallory := n.enroll("mallory")

	res := n.invoke(mallory, "institution:SetAdmin", registrar.id)
	assert.Equal(t, int32(500), res.Status)
	assert.Contains(t, res.Message, "SetAdmin [Unauthorized]")
	assert.Empty(t, n.stub.State)
}
