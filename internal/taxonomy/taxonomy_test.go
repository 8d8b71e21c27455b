package taxonomy

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultTable(t *testing.T) {
	tax := Default()
	if tax.Len() < 40 {
		t.Fatalf("expected at least 40 categories, got %d", tax.Len())
	}

	name, ok := tax.Lookup("market risk")
	if !ok || name != "Market Risk" {
		t.Fatalf("Lookup(market risk) = %q, %v", name, ok)
	}
	name, ok = tax.Lookup("FX RISK")
	if !ok || name != "Currency Risk" {
		t.Fatalf("Lookup(FX RISK) = %q, %v", name, ok)
	}
	if _, ok := tax.Lookup("no such keyword"); ok {
		t.Fatal("Lookup matched an unknown keyword")
	}
}

func TestDefaultTableHasNoDuplicateNames(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range Default().Categories() {
		if seen[c.Name] {
			t.Fatalf("duplicate category %q", c.Name)
		}
		seen[c.Name] = true
		if len(c.Keywords) == 0 {
			t.Fatalf("category %q has no keywords", c.Name)
		}
	}
}

func TestKeywordsSorted(t *testing.T) {
	kws := Default().Keywords()
	for i := 1; i < len(kws); i++ {
		if kws[i-1] > kws[i] {
			t.Fatalf("keywords not sorted: %q before %q", kws[i-1], kws[i])
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	body := `categories:
  - name: Market Risk
    keywords: ["market risk"]
  - name: Bespoke Risk
    keywords: ["bespoke exposure"]
    description: bespoke structured exposure
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	tax, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if tax.Len() != 2 {
		t.Fatalf("expected 2 categories, got %d", tax.Len())
	}
	if name, ok := tax.Lookup("bespoke exposure"); !ok || name != "Bespoke Risk" {
		t.Fatalf("Lookup(bespoke exposure) = %q, %v", name, ok)
	}
	if got := tax.Description("Bespoke Risk"); got != "bespoke structured exposure" {
		t.Fatalf("Description = %q", got)
	}
	if got := tax.Description("Market Risk"); got != "market risk" {
		t.Fatalf("Description fallback = %q", got)
	}
}

func TestNewRejectsBadTables(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for empty table")
	}
	if _, err := New([]Category{{Name: "X", Keywords: nil}}); err == nil {
		t.Fatal("expected error for category without keywords")
	}
	dup := []Category{
		{Name: "X", Keywords: []string{"a"}},
		{Name: "X", Keywords: []string{"b"}},
	}
	if _, err := New(dup); err == nil {
		t.Fatal("expected error for duplicate category name")
	}
}
