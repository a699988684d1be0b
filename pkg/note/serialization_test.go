package note

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func sampleTransaction() *Transaction {
	return &Transaction{
		Spends: []Spend{{
			Note: Note{
				Name:  NoteName{First: "origin", Last: "0"},
				Value: 1000,
				Lock:  NewPkhLock(2, "pkA", "pkB", "pkC"),
			},
			Seeds: Seeds{
				MessageHash: "deadbeef",
				Signatures: []SignatureEntry{
					{PubKey: "pkB", Signature: "sigB"},
					{PubKey: "pkA", Signature: "sigA"},
				},
			},
		}},
		Outputs: []Output{
			{Recipient: "x", Value: 700, Lock: NewPkhLock(1, "pkX")},
			{Recipient: "y", Value: 300, Lock: NewPkhLock(1, "pkY")},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	tx := sampleTransaction()

	data, err := Serialize(tx)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	parsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if !reflect.DeepEqual(tx, parsed) {
		t.Fatalf("round trip not lossless:\n got %+v\nwant %+v", parsed, tx)
	}

	// Signature order within a spend must survive; pkB arrived first.
	sigs := parsed.Spends[0].Seeds.Signatures
	if sigs[0].PubKey != "pkB" || sigs[1].PubKey != "pkA" {
		t.Fatalf("signature order not preserved: %+v", sigs)
	}
}

func TestSerializeCarriesFormatTag(t *testing.T) {
	data, err := Serialize(sampleTransaction())
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if !strings.Contains(string(data), `"format":"multinote/v1"`) {
		t.Fatalf("envelope missing format tag: %s", data)
	}
}

func TestParseRejects(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not json", "ceci n'est pas une transaction"},
		{"wrong format", `{"format":"multinote/v9","transaction":{"spends":[],"outputs":[]}}`},
		{"missing transaction", `{"format":"multinote/v1"}`},
		{
			"invalid spend lock",
			`{"format":"multinote/v1","transaction":{"spends":[{"note":{"name":{"first":"a","last":"b"},"value":1,"lock":{"kind":"pkh","pkh":{"threshold":2,"pubkeys":["a"]}}},"seeds":{"message_hash":"","signatures":[]}}],"outputs":[]}}`,
		},
		{
			"duplicate signature entries",
			`{"format":"multinote/v1","transaction":{"spends":[{"note":{"name":{"first":"a","last":"b"},"value":1,"lock":{"kind":"pkh","pkh":{"threshold":1,"pubkeys":["a"]}}},"seeds":{"message_hash":"","signatures":[{"pubkey":"a","signature":"s1"},{"pubkey":"a","signature":"s2"}]}}],"outputs":[]}}`,
		},
		{
			"invalid output lock",
			`{"format":"multinote/v1","transaction":{"spends":[],"outputs":[{"recipient":"r","value":1,"lock":{"kind":"pkh","pkh":{"threshold":0,"pubkeys":[]}}}]}}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected *ParseError, got %T: %v", err, err)
			}
		})
	}
}

// An imbalanced or half-signed import must still parse; the validator, not
// the parser, reports those states.
func TestParseAcceptsImbalanced(t *testing.T) {
	tx := sampleTransaction()
	tx.Outputs[0].Value = 1 // no longer balances

	data, err := Serialize(tx)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if _, err := Parse(data); err != nil {
		t.Fatalf("imbalanced transaction failed to parse: %v", err)
	}
}
