package service

import (
	"encoding/json"
	"testing"
)

func TestIntInput(t *testing.T) {
	tests := []struct {
		raw   string
		want  int
		valid bool
	}{
		{`"2022"`, 2022, true},
		{`2022`, 2022, true},
		{`"180"`, 180, true},
		{`""`, 0, false},
		{`null`, 0, false},
		{`"  42cm"`, 42, true},
		{`"12.7"`, 12, true},
		{`12.7`, 12, true},
		{`"-3"`, -3, true},
		{`"+7"`, 7, true},
		{`"0x1A"`, 0, true},
		{`1e5`, 100000, true},
		{`2.022e3`, 2022, true},
		{`-0`, 0, true},
		{`1e21`, 1, true},
		{`1e-7`, 1, true},
		{`1e400`, 0, false},
		{`"1e5"`, 1, true},
		{`"abc"`, 0, false},
		{`"-"`, 0, false},
		{`true`, 0, false},
		{`{"a":1}`, 0, false},
		{`"99999999999"`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var got IntInput
			if err := json.Unmarshal([]byte(tt.raw), &got); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.raw, err)
			}
			if got.Valid != tt.valid || (tt.valid && got.Value != tt.want) {
				t.Errorf("Unmarshal(%s) = %+v, want value %d valid %v", tt.raw, got, tt.want, tt.valid)
			}
			if !tt.valid && got.Ptr() != nil {
				t.Errorf("Ptr() = %v, want nil", *got.Ptr())
			}
		})
	}
}

func TestIntInput_AbsentField(t *testing.T) {
	var in AchievementInput
	if err := json.Unmarshal([]byte(`{"title":"MVP"}`), &in); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if in.Year.Ptr() != nil {
		t.Error("absent year should be null")
	}
}

func TestTextInput(t *testing.T) {
	tests := []struct {
		raw     string
		value   string
		valid   bool
		present bool
	}{
		{`"d0abc123"`, "d0abc123", true, true},
		{`17`, "17", true, true},
		{`0`, "0", true, false},
		{`"0"`, "0", true, true},
		{`""`, "", true, false},
		{`null`, "", false, false},
		{`false`, "", false, false},
		{`true`, "true", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var got TextInput
			if err := json.Unmarshal([]byte(tt.raw), &got); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.raw, err)
			}
			if got.Value != tt.value || got.Valid != tt.valid {
				t.Errorf("Unmarshal(%s) = %+v", tt.raw, got)
			}
			if got.Present() != tt.present {
				t.Errorf("Present() = %v, want %v", got.Present(), tt.present)
			}
		})
	}
}

func TestTextInput_RejectsObjects(t *testing.T) {
	var got TextInput
	if err := json.Unmarshal([]byte(`{"id":1}`), &got); err == nil {
		t.Error("Unmarshal(object) should fail")
	}
}

func TestIDs_SkipsBlankEntries(t *testing.T) {
	var list []TextInput
	if err := json.Unmarshal([]byte(`["a", "", null, 5]`), &list); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}

	got := ids(list)
	if len(got) != 2 || got[0] != "a" || got[1] != "5" {
		t.Errorf("ids() = %v, want [a 5]", got)
	}
}
