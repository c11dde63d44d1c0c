package template

import (
	"reflect"
	"testing"
)

func TestRenderSubstitutes(t *testing.T) {
	got := Render("Hi {{parentName}}, {{childName}} is enrolled at {{schoolName}}.", map[string]string{
		"parentName": "Asha",
		"childName":  "Ravi",
		"schoolName": "Greenwood",
	})
	want := "Hi Asha, Ravi is enrolled at Greenwood."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderUnknownKeyPassthrough(t *testing.T) {
	got := Render("Hi {{x}}", map[string]string{})
	if got != "Hi {{x}}" {
		t.Fatalf("unknown key must pass through verbatim, got %q", got)
	}
}

func TestRenderIdempotent(t *testing.T) {
	tmpl := "Hello {{name}}, fee due {{amount}} by {{due}}"
	data := map[string]string{"name": "Meera", "amount": "1200"}

	once := Render(tmpl, data)
	twice := Render(once, data)
	if once != twice {
		t.Fatalf("render not idempotent: %q vs %q", once, twice)
	}
}

func TestRenderRepeatedPlaceholder(t *testing.T) {
	got := Render("{{a}} and {{a}}", map[string]string{"a": "x"})
	if got != "x and x" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderEmptyValue(t *testing.T) {
	got := Render("Hi {{name}}!", map[string]string{"name": ""})
	if got != "Hi !" {
		t.Fatalf("empty value must substitute, got %q", got)
	}
}

func TestPlaceholders(t *testing.T) {
	got := Placeholders("{{b}} {{a}} {{b}}")
	if !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Fatalf("got %v", got)
	}
	if got := Placeholders("no vars here"); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestCheckVars(t *testing.T) {
	unknown := CheckVars("Hi {{parentName}}, see {{scholName}}", []string{"parentName", "schoolName"})
	if !reflect.DeepEqual(unknown, []string{"scholName"}) {
		t.Fatalf("got %v", unknown)
	}
	if u := CheckVars("Hi {{parentName}}", []string{"parentName"}); u != nil {
		t.Fatalf("expected nil, got %v", u)
	}
}
