package transcribe

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"empty", "", ErrEmptyText},
		{"whitespace", " \n\t ", ErrEmptyText},
		{"digits", "1 2 3 4", ErrNumericText},
		{"percent", "100% 50 %", ErrNumericText},
		{"repetitive", strings.Repeat("ja ", 11), ErrRepetitiveText},
		{"repetitive with punctuation", "Danke. danke, DANKE! danke danke danke danke danke danke danke tschüss", ErrRepetitiveText},
		{"exactly ten repeated words", strings.Repeat("hallo ", 10), nil},
		{"eleven words five distinct", "a b c d e a b c d e a", nil},
		{"eleven words four distinct", "a b c d a b c d a b c", ErrRepetitiveText},
		{"normal", "Heute besprechen wir den Projektstatus und die nächsten Schritte.", nil},
		{"digits with words", "Wir haben 100% erreicht", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.text)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Validate(%q) got %v want %v", tt.text, err, tt.want)
			}
		})
	}
}
