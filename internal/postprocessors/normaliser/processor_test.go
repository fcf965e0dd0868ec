package normaliser

import (
	"context"
	"testing"

	"github.com/custodia-labs/upfund/internal/core/domain"
)

func TestNormalise(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Paris is the capital of France.", "Paris is the capital of France."},
		{"collapse spaces and tabs", "a  \t b\t\tc", "a b c"},
		{"trim", "  \n\n hello \n\n", "hello"},
		{"crlf", "line one\r\nline two\rline three", "line one\nline two\nline three"},
		{"blank lines collapse", "para one\n\n\n\n\npara two", "para one\n\npara two"},
		{"whitespace-only lines are blank", "a\n   \n \t \nb", "a\n\nb"},
		{"control characters", "bell\x07 null\x00 esc\x1b[0m", "bell null esc[0m"},
		{"format characters", "\ufeffzero\u200bwidth\u200d joiner", "zerowidth joiner"},
		{"nbsp becomes space", "a\u00a0\u00a0b", "a b"},
		{"invalid utf8", "ok\xffok", "okok"},
		{"only noise", "\x00\x01\u200b \t\r\n", ""},
		{"unicode kept", "café   naïve 日本", "café naïve 日本"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalise(tt.in); got != tt.want {
				t.Errorf("Normalise(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalise_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"  lots   of\t\tspace  ",
		"a\r\n\r\n\r\nb\x0bc\x0cd",
		"\ufeff\u200bmixed\u2028line sep\u0085nel",
		"x\n \n \n\u200b\ny",
		"ok\xff\xfe bytes",
	}

	for _, in := range inputs {
		once := Normalise(in)
		if twice := Normalise(once); twice != once {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestProcessor(t *testing.T) {
	p := New()
	if p.Name() != "normaliser" {
		t.Errorf("expected name 'normaliser', got %q", p.Name())
	}

	doc := &domain.Document{Title: "a.txt", Content: "  hello\t\tworld  "}
	passed := []domain.Chunk{{ID: "x"}}

	chunks, err := p.Process(context.Background(), doc, passed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Content != "hello world" {
		t.Errorf("expected content rewritten, got %q", doc.Content)
	}
	if len(chunks) != 1 || chunks[0].ID != "x" {
		t.Errorf("expected chunks passed through, got %+v", chunks)
	}
}
