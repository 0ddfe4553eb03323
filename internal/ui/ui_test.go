package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/madara-alliance/madara-cli/internal/common"
)

func newTestUI() (*UI, *bytes.Buffer) {
	color.NoColor = true
	var buf bytes.Buffer
	u := NewWithWriter(&buf)
	u.SetNonInteractive(true)
	return u, &buf
}

func TestOutputPrefixes(t *testing.T) {
	u, buf := newTestUI()

	u.Info("resolving")
	u.Success("done")
	u.Warning("careful")
	u.Error("broken")
	u.Stage(3, 6, "Ensure secrets")
	u.KeyValue("Mode", "devnet")

	out := buf.String()
	for _, want := range []string{
		"[INFO] resolving",
		"[✓] done",
		"[WARNING] careful",
		"[ERROR] broken",
		"==> [3/6] Ensure secrets",
		"Mode:",
		"devnet",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestNonInteractiveAsk(t *testing.T) {
	u, _ := newTestUI()
	notFoo := func(s string) error {
		if s == "foo" {
			return errors.New("foo is not allowed")
		}
		return nil
	}

	got, err := u.Ask("Name", "Madara", notFoo)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if got != "Madara" {
		t.Errorf("Ask() = %q, want %q", got, "Madara")
	}

	if _, err := u.Ask("Name", "foo", notFoo); !errors.Is(err, common.ErrValidation) {
		t.Errorf("Ask() with invalid default error = %v, want a validation error", err)
	}

	got, err = u.Ask("Anything", "", nil)
	if err != nil || got != "" {
		t.Errorf("Ask() without validator = %q, %v", got, err)
	}
}

func TestNonInteractiveAskSecret(t *testing.T) {
	u, _ := newTestUI()

	got, err := u.AskSecret("API key", "", func(string) error { return errors.New("required") })
	if err != nil || got != "" {
		t.Errorf("AskSecret() without default = %q, %v; want empty answer", got, err)
	}

	got, err = u.AskSecret("API key", "persisted", nil)
	if err != nil || got != "persisted" {
		t.Errorf("AskSecret() = %q, %v", got, err)
	}

	_, err = u.AskSecret("API key", "persisted", func(string) error { return errors.New("bad key") })
	if !errors.Is(err, common.ErrValidation) {
		t.Errorf("AskSecret() with invalid default error = %v, want a validation error", err)
	}
}

func TestNonInteractiveSelect(t *testing.T) {
	u, _ := newTestUI()
	options := []string{"Dummy", "Atlantic", "Stwo"}

	tests := []struct {
		name    string
		def     string
		want    string
		wantErr bool
	}{
		{"default returned", "Atlantic", "Atlantic", false},
		{"first option without default", "", "Dummy", false},
		{"default not an option", "Other", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := u.Select("Prover", options, tt.def)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Select() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Select() = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := u.Select("Empty", nil, ""); err == nil {
		t.Error("Select() with no options should fail")
	}
}

func TestNonInteractiveConfirm(t *testing.T) {
	u, _ := newTestUI()

	for _, def := range []bool{true, false} {
		got, err := u.Confirm("Deploy L2 contracts?", def)
		if err != nil {
			t.Fatalf("Confirm() error = %v", err)
		}
		if got != def {
			t.Errorf("Confirm() = %v, want %v", got, def)
		}
	}
}

func TestPromptSelectIndex(t *testing.T) {
	u, _ := newTestUI()

	i, err := u.PromptSelect("Menu", []string{"Create", "Exit"})
	if err != nil {
		t.Fatalf("PromptSelect() error = %v", err)
	}
	if i != 0 {
		t.Errorf("PromptSelect() = %d, want 0", i)
	}
}
