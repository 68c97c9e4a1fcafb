package validation

import (
	"errors"
	"testing"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{
			name: "domestic leading eight",
			raw:  "89991234567",
			want: "+79991234567",
		},
		{
			name: "formatted with punctuation",
			raw:  "+7 (999) 123-45-67",
			want: "+79991234567",
		},
		{
			name: "bare national number",
			raw:  "9991234567",
			want: "+79991234567",
		},
		{
			name: "international without plus",
			raw:  "79991234567",
			want: "+79991234567",
		},
		{
			name:    "too few digits",
			raw:     "899912345",
			wantErr: true,
		},
		{
			name:    "letters only",
			raw:     "call me maybe",
			wantErr: true,
		},
		{
			name:    "empty",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrPhoneTooShort) {
					t.Fatalf("NormalizePhone(%q) error = %v, want ErrPhoneTooShort", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizePhone(%q) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Fatalf("NormalizePhone(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFormatPhoneDisplay(t *testing.T) {
	if got := FormatPhoneDisplay("+79991234567"); got != "+7 999 123-45-67" {
		t.Fatalf("FormatPhoneDisplay = %q", got)
	}
	// номера нестандартной длины не трогаем
	if got := FormatPhoneDisplay("+4915123456789"); got != "+4915123456789" {
		t.Fatalf("FormatPhoneDisplay must keep foreign numbers intact, got %q", got)
	}
}

func TestNormalizeContactPhone(t *testing.T) {
	if got := NormalizeContactPhone("79991234567"); got != "+79991234567" {
		t.Fatalf("NormalizeContactPhone = %q", got)
	}
	if got := NormalizeContactPhone("+79991234567"); got != "+79991234567" {
		t.Fatalf("NormalizeContactPhone must not double the plus, got %q", got)
	}
}
