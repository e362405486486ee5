package flight

import (
	"errors"
	"testing"

	"github.com/hugr-lab/pgext-go/internal/msgpack"
)

func TestEncodeDecodeTicket(t *testing.T) {
	tests := []struct {
		name string
		td   TicketData
	}{
		{"no parameters", TicketData{Schema: "util", Function: "answer"}},
		{"parameters", TicketData{Schema: "util", Function: "series", Params: []any{int64(1), int64(10), nil}}},
		{"underscores", TicketData{Schema: "my_schema", Function: "my_function", Params: []any{"text"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := EncodeTicket(tt.td)
			if err != nil {
				t.Fatalf("EncodeTicket() error = %v", err)
			}
			decoded, err := DecodeTicket(encoded)
			if err != nil {
				t.Fatalf("DecodeTicket() error = %v", err)
			}
			if decoded.Schema != tt.td.Schema || decoded.Function != tt.td.Function {
				t.Errorf("decoded %s.%s, want %s.%s", decoded.Schema, decoded.Function, tt.td.Schema, tt.td.Function)
			}
			if len(decoded.Params) != len(tt.td.Params) {
				t.Fatalf("params = %v, want %v", decoded.Params, tt.td.Params)
			}
			for i, p := range tt.td.Params {
				if decoded.Params[i] != p {
					t.Errorf("param %d = %#v, want %#v", i, decoded.Params[i], p)
				}
			}
		})
	}
}

func TestTicketErrors(t *testing.T) {
	if _, err := EncodeTicket(TicketData{Function: "f"}); !errors.Is(err, ErrInvalidTicket) {
		t.Errorf("empty schema: err = %v", err)
	}
	if _, err := EncodeTicket(TicketData{Schema: "s"}); !errors.Is(err, ErrInvalidTicket) {
		t.Errorf("empty function: err = %v", err)
	}

	// A well-formed map that names no function.
	data, err := msgpack.Encode(map[string]any{"schema": "util"})
	if err != nil {
		t.Fatal(err)
	}
	for name, ticket := range map[string][]byte{
		"empty":       nil,
		"json":        []byte(`{"schema":"util","function":"series"}`),
		"no function": data,
	} {
		if _, err := DecodeTicket(ticket); !errors.Is(err, ErrInvalidTicket) {
			t.Errorf("%s: err = %v", name, err)
		}
	}
}
