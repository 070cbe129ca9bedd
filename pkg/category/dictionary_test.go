package category

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoad(t *testing.T) {
	dict, err := Load("testdata/channel-map.json")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	expectedNames := []string{"FOOTBALL", "BASKET", "SPORTS", "EMPTY"}
	if !reflect.DeepEqual(dict.Names(), expectedNames) {
		t.Errorf("Expected categories %v in file order, got %v", expectedNames, dict.Names())
	}

	// Non-string keywords are dropped, the rest lowercased.
	if !reflect.DeepEqual(dict[2].Keywords, []string{"sport", "espn"}) {
		t.Errorf("Expected SPORTS keywords [sport espn], got %v", dict[2].Keywords)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dict, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("Expected an error for a missing file")
	}
	if dict == nil || len(dict) != 0 {
		t.Errorf("Expected empty dictionary, got %v", dict)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte(`{"FOOTBALL": ["bein"`), 0o644); err != nil {
		t.Fatal(err)
	}

	dict, err := Load(path)
	if err == nil {
		t.Fatal("Expected an error for a truncated document")
	}
	if len(dict) != 0 {
		t.Errorf("Expected empty dictionary, got %v", dict)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantNames []string
		wantErr   error
	}{
		{
			name:      "empty object",
			input:     `{}`,
			wantNames: []string{},
		},
		{
			name:    "array document",
			input:   `["nba"]`,
			wantErr: ErrNotObject,
		},
		{
			name:      "duplicate key keeps first position",
			input:     `{"A": ["x"], "B": ["y"], "A": ["z"]}`,
			wantNames: []string{"A", "B"},
		},
		{
			name:      "null value ignored",
			input:     `{"A": null, "B": ["y"]}`,
			wantNames: []string{"B"},
		},
		{
			name:      "later non-array value drops category",
			input:     `{"A": ["x"], "B": ["y"], "A": "x"}`,
			wantNames: []string{"B"},
		},
		{
			name:      "object value ignored",
			input:     `{"A": {"kw": "x"}, "B": ["y"]}`,
			wantNames: []string{"B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dict, err := Parse([]byte(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(dict.Names(), tt.wantNames) {
				t.Errorf("Parse() names = %v, want %v", dict.Names(), tt.wantNames)
			}
		})
	}
}

func TestParseDuplicateKeyTakesLastValue(t *testing.T) {
	dict, err := Parse([]byte(`{"A": ["x"], "A": ["z"]}`))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(dict[0].Keywords, []string{"z"}) {
		t.Errorf("Expected keywords [z], got %v", dict[0].Keywords)
	}
}
