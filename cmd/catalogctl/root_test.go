package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/evora/catalog/internal/domain"
	"github.com/evora/catalog/internal/infrastructure/catalog"
)

const products = `[
	{"id": 1, "name": "iPhone 15", "brand": "Apple", "description": "Apple smartphone", "price": 799,
	 "specs": {"weight": "171 g", "features": ["Face ID", "USB-C"]}},
	{"id": 2, "name": "Galaxy S24", "brand": "Samsung", "description": "Android flagship", "price": 899}
]`

// workspace isolates a test from config files and returns the base flags
func workspace(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	source := filepath.Join(dir, "products.json")
	if err := os.WriteFile(source, []byte(products), 0o644); err != nil {
		t.Fatal(err)
	}
	return []string{"--source", source, "--store", "file", "--store-path", filepath.Join(dir, "compare")}
}

func runCLI(t *testing.T, base []string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), append(args, base...), &stdout, &stderr)
	return stdout.String(), err
}

func TestSearchCommand(t *testing.T) {
	base := workspace(t)

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name:    "keyword",
			args:    []string{"search", "iphone"},
			want:    []string{"iPhone 15", "$799.00", "1 result(s)"},
			notWant: []string{"Galaxy"},
		},
		{
			name:    "brand filter",
			args:    []string{"search", "--brand", "Samsung"},
			want:    []string{"Galaxy S24", "1 result(s)"},
			notWant: []string{"iPhone"},
		},
		{
			name: "price and sort",
			args: []string{"search", "--min", "700", "--sort", "price-desc"},
			want: []string{"2 result(s)"},
		},
		{
			name: "no match",
			args: []string{"search", "television"},
			want: []string{"0 result(s)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, base, tt.args...)
			if err != nil {
				t.Fatalf("run() unexpected error: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output contains %q:\n%s", w, out)
				}
			}
		})
	}

	t.Run("price descending order", func(t *testing.T) {
		out, err := runCLI(t, base, "search", "--sort", "price-desc")
		if err != nil {
			t.Fatalf("run() unexpected error: %v", err)
		}
		if strings.Index(out, "Galaxy") > strings.Index(out, "iPhone") {
			t.Errorf("Galaxy should be listed before iPhone:\n%s", out)
		}
	})

	t.Run("invalid sort", func(t *testing.T) {
		_, err := runCLI(t, base, "search", "--sort", "rating")
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("error = %v, want ErrInvalidRequest", err)
		}
	})
}

func TestFacetsAndShowCommands(t *testing.T) {
	base := workspace(t)

	out, err := runCLI(t, base, "facets")
	if err != nil {
		t.Fatalf("facets: %v", err)
	}
	if !strings.Contains(out, "Brands: Apple, Samsung") || !strings.Contains(out, "Price: $799.00 - $899.00") {
		t.Errorf("facets output:\n%s", out)
	}

	out, err = runCLI(t, base, "show", "1")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{"iPhone 15 (1)", "Weight:", "171 g", "Face ID, USB-C"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	_, err = runCLI(t, base, "show", "999")
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("show unknown id error = %v, want ErrProductNotFound", err)
	}
}

func TestCompareCommands(t *testing.T) {
	base := workspace(t)

	out, err := runCLI(t, base, "compare", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "comparison set is empty (0/3)") {
		t.Errorf("list output:\n%s", out)
	}

	if _, err := runCLI(t, base, "compare", "add", "1", "2"); err != nil {
		t.Fatalf("add: %v", err)
	}

	// each invocation reopens the file store
	out, err = runCLI(t, base, "compare", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"[1] iPhone 15 (1)", "[2] Galaxy S24 (2)", "Not available for this product", "2/3 compared"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}

	_, err = runCLI(t, base, "compare", "add", "1")
	if !errors.Is(err, domain.ErrDuplicateItem) {
		t.Errorf("duplicate add error = %v, want ErrDuplicateItem", err)
	}

	out, err = runCLI(t, base, "compare", "candidates", "galaxy")
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if !strings.Contains(out, "*") || !strings.Contains(out, "Galaxy S24") {
		t.Errorf("candidates output:\n%s", out)
	}

	if _, err := runCLI(t, base, "compare", "remove", "1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	out, err = runCLI(t, base, "compare", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.Contains(out, "iPhone") || !strings.Contains(out, "1/3 compared") {
		t.Errorf("list after remove:\n%s", out)
	}
}

func TestExportCommand(t *testing.T) {
	base := workspace(t)

	out, err := runCLI(t, base, "export")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	exported, err := catalog.Decode([]byte(out), catalog.DecodeOptions{})
	if err != nil {
		t.Fatalf("exported document does not decode: %v", err)
	}
	if len(exported) != 2 || exported[0].Specs[1].Value.String() != "Face ID, USB-C" {
		t.Errorf("exported catalog = %+v", exported)
	}

	path := filepath.Join(t.TempDir(), "catalog_v1.yaml")
	if _, err := runCLI(t, base, "export", "--format", "fallback", "-o", path); err != nil {
		t.Fatalf("export fallback: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "version: "+catalog.FallbackVersion) {
		t.Errorf("fallback export:\n%s", data)
	}

	if _, err := runCLI(t, base, "export", "--format", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestStatusCommand_Fallback(t *testing.T) {
	workspace(t)
	base := []string{"--source", filepath.Join(t.TempDir(), "missing.json"), "--store", "memory"}

	out, err := runCLI(t, base, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, want := range []string{"source:   embedded:" + catalog.FallbackVersion, "degraded: true", "notice:"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
}
