package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestWriteDataYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.yaml")
	splits := []string{"train", "val"}
	classes := []string{"healthy", "infected", "dead", "non-spruce"}

	if err := writeDataYAML(path, splits, classes); err != nil {
		t.Fatalf("writeDataYAML failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var got struct {
		Train string   `yaml:"train"`
		Val   string   `yaml:"val"`
		NC    int      `yaml:"nc"`
		Names []string `yaml:"names"`
	}
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}

	if got.Train != "images/train" || got.Val != "images/val" {
		t.Errorf("split paths: got %q, %q", got.Train, got.Val)
	}
	if got.NC != 4 {
		t.Errorf("nc: got %d, want 4", got.NC)
	}
	if len(got.Names) != 4 || got.Names[3] != "non-spruce" {
		t.Errorf("names: got %v", got.Names)
	}
}

func TestWriteDataYAMLSplitOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.yaml")
	if err := writeDataYAML(path, []string{"b", "a"}, []string{"x"}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	// Split keys keep generation order.
	if ib, ia := strings.Index(s, "b:"), strings.Index(s, "a:"); ib < 0 || ia < 0 || ib > ia {
		t.Errorf("split order not preserved:\n%s", s)
	}
}
