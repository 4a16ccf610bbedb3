package einvoice

import (
	"bytes"
	"encoding/json"
	"strings"

	domain "github.com/erp/einvoice/internal/domain/einvoice"
)

// UnknownUpstreamError is reported when a failure body carries no known message field
const UnknownUpstreamError = "Unknown error from e-invoice service"

// codeInvalidToken is the upstream code for a revoked or unknown token
const codeInvalidToken = "1005"

// responseBody is a decoded upstream JSON object
type responseBody map[string]any

func decodeBody(raw []byte) (responseBody, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body responseBody
	if err := dec.Decode(&body); err != nil || body == nil {
		return nil, false
	}
	return body, true
}

// nested returns the data/Data object of an auth payload
func (b responseBody) nested() responseBody {
	for _, key := range []string{"data", "Data"} {
		if obj, ok := b[key].(map[string]any); ok {
			return responseBody(obj)
		}
	}
	return nil
}

// str returns the first non-empty scalar among keys
func (b responseBody) str(keys ...string) string {
	for _, key := range keys {
		if s := scalarString(b[key]); s != "" {
			return s
		}
	}
	return ""
}

// authSucceeded reports a numeric status/Status equal to 1
func authSucceeded(body responseBody) bool {
	for _, key := range []string{"status", "Status"} {
		if n, ok := body[key].(json.Number); ok {
			return n.String() == "1"
		}
	}
	return false
}

// authField looks a field up at the top level, then inside data/Data
func authField(body responseBody, keys ...string) string {
	if s := body.str(keys...); s != "" {
		return s
	}
	if data := body.nested(); data != nil {
		return data.str(keys...)
	}
	return ""
}

// parseIRNResult returns the IRN record when the body carries a non-null Irn,
// at the top level or inside Data.
func parseIRNResult(body responseBody) (*domain.IRNResult, bool) {
	src := body
	if scalarString(src["Irn"]) == "" {
		src = body.nested()
		if src == nil || scalarString(src["Irn"]) == "" {
			return nil, false
		}
	}

	return &domain.IRNResult{
		Irn:           src.str("Irn"),
		AckNo:         src.str("AckNo"),
		AckDate:       src.str("AckDt", "AckDate"),
		SignedQRCode:  src.str("SignedQRCode"),
		SignedInvoice: src.str("SignedInvoice"),
		Status:        src.str("Status"),
		CancelDate:    src.str("CancelDate"),
		EwbNo:         src.str("EwbNo"),
		EwbDate:       src.str("EwbDt"),
		EwbValidTill:  src.str("EwbValidTill"),
	}, true
}

// normalizeFailure maps any known failure shape to one message and code.
// Message precedence: ErrorMessage, ErrorDetails, errorMessage,
// ValidationErrors, message. Auth payloads nest these under data/Data.
func normalizeFailure(body responseBody) (message, code string) {
	message = failureMessage(body)
	code = failureCode(body)
	if data := body.nested(); data != nil {
		if message == "" {
			message = failureMessage(data)
		}
		if code == "" {
			code = failureCode(data)
		}
	}
	if message == "" {
		message = UnknownUpstreamError
	}
	return message, code
}

func failureMessage(body responseBody) string {
	if s := scalarString(body["ErrorMessage"]); s != "" {
		return s
	}
	if s := joinMessages(body["ErrorDetails"]); s != "" {
		return s
	}
	if s := scalarString(body["errorMessage"]); s != "" {
		return s
	}
	if s := joinMessages(body["ValidationErrors"]); s != "" {
		return s
	}
	return scalarString(body["message"])
}

func failureCode(body responseBody) string {
	if s := scalarString(body["ErrorCode"]); s != "" {
		return s
	}
	if details, ok := body["ErrorDetails"].([]any); ok {
		for _, d := range details {
			if obj, ok := d.(map[string]any); ok {
				if s := scalarString(obj["ErrorCode"]); s != "" {
					return s
				}
			}
		}
	}
	return scalarString(body["errorCode"])
}

// joinMessages dedups the messages of an array of strings or
// {ErrorMessage} objects, keeping first-seen order.
func joinMessages(v any) string {
	items, ok := v.([]any)
	if !ok {
		return ""
	}

	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, item := range items {
		var msg string
		switch t := item.(type) {
		case string:
			msg = strings.TrimSpace(t)
		case map[string]any:
			msg = scalarString(t["ErrorMessage"])
		}
		if msg == "" {
			continue
		}
		if _, dup := seen[msg]; dup {
			continue
		}
		seen[msg] = struct{}{}
		out = append(out, msg)
	}
	return strings.Join(out, ", ")
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	}
	return ""
}
