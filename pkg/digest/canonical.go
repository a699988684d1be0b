// Package digest canonical encoding.
//
// The signing payload must serialize to byte-identical output on every
// conforming implementation, because the digest over those bytes is the
// contract signers rely on. The encoder here is therefore schema-driven and
// written by hand: field order is fixed by this file, not by struct
// reflection or map iteration order; there is no whitespace; integers are
// decimal; strings are UTF-8 with only the escapes JSON requires.
//
// The output is valid JSON, which keeps payloads inspectable, but no general
// JSON library is involved in producing it.
package digest

import (
	"strconv"

	"github.com/suffix-labs/multinote/pkg/note"
)

// CanonicalPayload builds the exact byte sequence that is hashed for one
// spend. The transaction passed in must already have had its signature state
// cleared; this function encodes what it is given.
//
// Schema (field order is normative):
//
//	{"spend_index":N,"transaction":{"spends":[...],"outputs":[...]}}
//	spend:  {"note":{...},"seeds":{...}}
//	note:   {"name":{"first":S,"last":S},"value":N,"lock":{...}}
//	lock:   {"kind":S,"pkh":{"threshold":N,"pubkeys":[S,...]}}
//	seeds:  {"message_hash":S,"signatures":[{"pubkey":S,"signature":S},...]}
//	output: {"recipient":S,"value":N,"lock":{...}}
func CanonicalPayload(spendIndex int, tx *note.Transaction) []byte {
	b := make([]byte, 0, 512)
	b = append(b, `{"spend_index":`...)
	b = strconv.AppendInt(b, int64(spendIndex), 10)
	b = append(b, `,"transaction":{"spends":[`...)
	for i := range tx.Spends {
		if i > 0 {
			b = append(b, ',')
		}
		b = appendSpend(b, &tx.Spends[i])
	}
	b = append(b, `],"outputs":[`...)
	for i := range tx.Outputs {
		if i > 0 {
			b = append(b, ',')
		}
		b = appendOutput(b, &tx.Outputs[i])
	}
	b = append(b, `]}}`...)
	return b
}

func appendSpend(b []byte, s *note.Spend) []byte {
	b = append(b, `{"note":`...)
	b = appendNote(b, &s.Note)
	b = append(b, `,"seeds":`...)
	b = appendSeeds(b, &s.Seeds)
	return append(b, '}')
}

func appendNote(b []byte, n *note.Note) []byte {
	b = append(b, `{"name":{"first":`...)
	b = appendString(b, n.Name.First)
	b = append(b, `,"last":`...)
	b = appendString(b, n.Name.Last)
	b = append(b, `},"value":`...)
	b = strconv.AppendUint(b, n.Value, 10)
	b = append(b, `,"lock":`...)
	b = appendLock(b, &n.Lock)
	return append(b, '}')
}

func appendLock(b []byte, l *note.Lock) []byte {
	b = append(b, `{"kind":`...)
	b = appendString(b, string(l.Kind))
	b = append(b, `,"pkh":{"threshold":`...)
	b = strconv.AppendInt(b, int64(l.Pkh.Threshold), 10)
	b = append(b, `,"pubkeys":[`...)
	for i, pk := range l.Pkh.PubKeys {
		if i > 0 {
			b = append(b, ',')
		}
		b = appendString(b, string(pk))
	}
	return append(b, `]}}`...)
}

func appendSeeds(b []byte, s *note.Seeds) []byte {
	b = append(b, `{"message_hash":`...)
	b = appendString(b, s.MessageHash)
	b = append(b, `,"signatures":[`...)
	for i := range s.Signatures {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, `{"pubkey":`...)
		b = appendString(b, string(s.Signatures[i].PubKey))
		b = append(b, `,"signature":`...)
		b = appendString(b, string(s.Signatures[i].Signature))
		b = append(b, '}')
	}
	return append(b, `]}`...)
}

func appendOutput(b []byte, o *note.Output) []byte {
	b = append(b, `{"recipient":`...)
	b = appendString(b, o.Recipient)
	b = append(b, `,"value":`...)
	b = strconv.AppendUint(b, o.Value, 10)
	b = append(b, `,"lock":`...)
	b = appendLock(b, &o.Lock)
	return append(b, '}')
}

const hexDigits = "0123456789abcdef"

// appendString encodes s as a JSON string with the minimal escape set:
// quote, backslash, and control characters below 0x20. No other characters
// are escaped, so there is exactly one encoding per logical string.
func appendString(b []byte, s string) []byte {
	b = append(b, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			b = append(b, '\\', '"')
		case c == '\\':
			b = append(b, '\\', '\\')
		case c == '\n':
			b = append(b, '\\', 'n')
		case c == '\r':
			b = append(b, '\\', 'r')
		case c == '\t':
			b = append(b, '\\', 't')
		case c < 0x20:
			b = append(b, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
		default:
			b = append(b, c)
		}
	}
	return append(b, '"')
}
