package protocol

import (
	"strings"
	"testing"
)

func TestErrorCodeString(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{CodeParseError, "ParseError"},
		{CodeInvalidRequest, "InvalidRequest"},
		{CodeMethodNotFound, "MethodNotFound"},
		{CodeInvalidParams, "InvalidParams"},
		{CodeInternalError, "InternalError"},
		{ErrorCode(-32000), "Unknown"},
		{ErrorCode(0), "Unknown"},
	}

	for _, tc := range tests {
		if got := tc.code.String(); got != tc.want {
			t.Errorf("ErrorCode(%d).String() = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestErrorCodeKnown(t *testing.T) {
	known := []ErrorCode{CodeParseError, CodeInvalidRequest, CodeMethodNotFound, CodeInvalidParams, CodeInternalError}
	for _, c := range known {
		if !c.Known() {
			t.Errorf("ErrorCode(%d).Known() = false, want true", c)
		}
	}
	if ErrorCode(-32000).Known() {
		t.Error("ErrorCode(-32000).Known() = true, want false")
	}
}

func TestServerErrorMessage(t *testing.T) {
	err := &ServerError{Code: CodeMethodNotFound, Message: "Method not found"}
	got := err.Error()
	for _, part := range []string{"MethodNotFound", "-32601", "Method not found"} {
		if !strings.Contains(got, part) {
			t.Errorf("Error() = %q, missing %q", got, part)
		}
	}
}

func TestDecodeServerError(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		code    ErrorCode
	}{
		{"known_code", `{"code":-32601,"message":"Method not found"}`, false, CodeMethodNotFound},
		{"unknown_code", `{"code":-32000,"message":"custom"}`, false, ErrorCode(-32000)},
		{"missing_code", `{"message":"no code"}`, true, 0},
		{"missing_message", `{"code":-32603}`, true, 0},
		{"not_object", `"boom"`, true, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			se, err := decodeServerError([]byte(tc.raw))
			if tc.wantErr {
				if err == nil {
					t.Fatal("decodeServerError() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeServerError() error = %v", err)
			}
			if se.Code != tc.code {
				t.Errorf("Code = %d, want %d", se.Code, tc.code)
			}
		})
	}
}
