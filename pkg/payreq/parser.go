// Package payreq implements the payment request URI format.
//
// A payment request encodes one or more requested outputs - recipient,
// amount, and the threshold lock the new note should carry - in a URI that
// can travel over a QR code, a link, or plain text:
//
//	note:<recipient>?amount=<units>&threshold=<m>&keys=<pk1>,<pk2>,...
//
// Multiple recipients use indexed parameters:
//
//	note:?recipient.0=alice&amount.0=700&...&recipient.1=bob&amount.1=300&...
//
// Amounts are whole note units (integers); there is no decimal currency
// notation at this layer.
package payreq

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/suffix-labs/multinote/pkg/note"
)

// Scheme is the URI scheme prefix.
const Scheme = "note:"

// maxIndex bounds indexed parameters; requests are human-scale.
const maxIndex = 9999

// Request is a parsed payment request: the outputs some counterparty asks
// to be created.
type Request struct {
	Outputs []note.Output
}

// Parse parses a payment request URI.
//
// Supported forms:
//  1. Single recipient: note:alice?amount=700&threshold=1&keys=pk1
//  2. Multiple recipients with indexed parameters:
//     note:?recipient.0=alice&amount.0=700&threshold.0=1&keys.0=pk1&recipient.1=...
//
// Every output needs a recipient, a positive integer amount, a threshold,
// and at least threshold keys; the resulting locks are validated before the
// request is returned.
func Parse(uri string) (*Request, error) {
	uri = strings.TrimPrefix(uri, Scheme)

	var base, query string
	parts := strings.SplitN(uri, "?", 2)
	if len(parts) == 2 {
		base = parts[0]
		query = parts[1]
	} else if strings.Contains(parts[0], "=") {
		query = parts[0]
	} else {
		base = parts[0]
	}

	params, err := url.ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("failed to parse query: %w", err)
	}

	var outputs []note.Output
	if hasIndexedParams(params) {
		outputs, err = parseIndexedOutputs(params)
	} else {
		var out note.Output
		out, err = parseOutput(base, params, func(name string) string {
			return params.Get(name)
		})
		outputs = []note.Output{out}
	}
	if err != nil {
		return nil, err
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("no outputs in request")
	}

	for i := range outputs {
		if err := outputs[i].Lock.Validate(); err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
	}

	return &Request{Outputs: outputs}, nil
}

// parseOutput reads one output from the given parameter accessor. base is
// the recipient from the URI path, overridable by a recipient parameter.
func parseOutput(base string, params url.Values, get func(string) string) (note.Output, error) {
	out := note.Output{Recipient: base}

	if r := get("recipient"); r != "" {
		out.Recipient = r
	}
	if out.Recipient == "" {
		return out, fmt.Errorf("missing recipient")
	}

	amountStr := get("amount")
	if amountStr == "" {
		return out, fmt.Errorf("missing amount")
	}
	amount, err := strconv.ParseUint(amountStr, 10, 64)
	if err != nil {
		return out, fmt.Errorf("invalid amount %q: %w", amountStr, err)
	}
	out.Value = amount

	thresholdStr := get("threshold")
	if thresholdStr == "" {
		return out, fmt.Errorf("missing threshold")
	}
	threshold, err := strconv.Atoi(thresholdStr)
	if err != nil {
		return out, fmt.Errorf("invalid threshold %q: %w", thresholdStr, err)
	}

	keysStr := get("keys")
	if keysStr == "" {
		return out, fmt.Errorf("missing keys")
	}
	var keys []note.PublicKey
	for _, k := range strings.Split(keysStr, ",") {
		k = strings.TrimSpace(k)
		if k != "" {
			keys = append(keys, note.PublicKey(k))
		}
	}

	out.Lock = note.NewPkhLock(threshold, keys...)
	return out, nil
}

// parseIndexedOutputs reads multiple outputs using name.N parameters.
func parseIndexedOutputs(params url.Values) ([]note.Output, error) {
	indices := make(map[int]bool)
	for key := range params {
		if idx := extractIndex(key); idx >= 0 {
			indices[idx] = true
		}
	}

	byIndex := make(map[int]note.Output, len(indices))
	for idx := range indices {
		out, err := parseOutput("", params, func(name string) string {
			return getIndexedParam(params, name, idx)
		})
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", idx, err)
		}
		byIndex[idx] = out
	}

	result := make([]note.Output, 0, len(byIndex))
	for i := 0; i <= maxIndex; i++ {
		if out, ok := byIndex[i]; ok {
			result = append(result, out)
		}
	}
	return result, nil
}

// hasIndexedParams reports whether the query uses name.N parameters.
func hasIndexedParams(params url.Values) bool {
	for key := range params {
		if strings.Contains(key, ".") {
			return true
		}
	}
	return false
}

// extractIndex extracts N from "name.N", or -1 when there is no index.
func extractIndex(paramName string) int {
	parts := strings.Split(paramName, ".")
	if len(parts) != 2 {
		return -1
	}
	idx, err := strconv.Atoi(parts[1])
	if err != nil || idx < 0 || idx > maxIndex {
		return -1
	}
	return idx
}

// getIndexedParam gets name.N; for index 0 the bare name also works.
func getIndexedParam(params url.Values, name string, index int) string {
	if index == 0 {
		if val := params.Get(name); val != "" {
			return val
		}
	}
	return params.Get(fmt.Sprintf("%s.%d", name, index))
}

// Encode creates a payment request URI from a Request. It is the inverse of
// Parse.
func (r *Request) Encode() string {
	if len(r.Outputs) == 0 {
		return Scheme
	}
	if len(r.Outputs) == 1 {
		return encodeSingle(r.Outputs[0])
	}
	return encodeIndexed(r.Outputs)
}

func encodeSingle(o note.Output) string {
	params := url.Values{}
	params.Add("amount", strconv.FormatUint(o.Value, 10))
	params.Add("threshold", strconv.Itoa(o.Lock.Pkh.Threshold))
	params.Add("keys", joinKeys(o.Lock.Pkh.PubKeys))
	return Scheme + o.Recipient + "?" + params.Encode()
}

func encodeIndexed(outputs []note.Output) string {
	params := url.Values{}
	for i, o := range outputs {
		idx := fmt.Sprintf(".%d", i)
		params.Add("recipient"+idx, o.Recipient)
		params.Add("amount"+idx, strconv.FormatUint(o.Value, 10))
		params.Add("threshold"+idx, strconv.Itoa(o.Lock.Pkh.Threshold))
		params.Add("keys"+idx, joinKeys(o.Lock.Pkh.PubKeys))
	}
	return Scheme + "?" + params.Encode()
}

func joinKeys(keys []note.PublicKey) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = string(k)
	}
	return strings.Join(parts, ",")
}
