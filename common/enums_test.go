package common

import "testing"

func TestParseDropPosition(t *testing.T) {
	tests := []struct {
		in      string
		want    DropPosition
		wantErr bool
	}{
		{"before", DropPositionBefore, false},
		{"AFTER", DropPositionAfter, false},
		{"inside", DropPositionInside, false},
		{"around", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDropPosition(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDropPosition(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDropPosition(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestOutputFmt(t *testing.T) {
	for _, name := range OutputFmtNames() {
		f, err := ParseOutputFmt(name)
		if err != nil {
			t.Fatalf("ParseOutputFmt(%q) error = %v", name, err)
		}
		if f.String() != name {
			t.Errorf("String() = %q, want %q", f.String(), name)
		}
		if f.Ext() == "" {
			t.Errorf("Ext() for %s is empty", name)
		}
	}
	if _, err := ParseOutputFmt("pdf"); err == nil {
		t.Error("expected error for unknown format")
	}
}
