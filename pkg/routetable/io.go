package routetable

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/newtron-network/newtroute/pkg/util"
)

// Read loads a table document from path.
func Read(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading route table %s: %w", path, err)
	}
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing route table %s: %w", path, err)
	}
	if t == nil {
		t = Table{}
	}
	return t, nil
}

// Write stores a table document at path, indented.
func Write(path string, t Table) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding route table %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing route table %s: %w", path, err)
	}
	util.WithField("path", path).Debugf("wrote %d VRFs", len(t))
	return nil
}

// Tables is the pair of documents a tables directory holds.
type Tables struct {
	IPv4 Table
	IPv6 Table
}

// VRFs returns the sorted union of VRF names in both documents.
func (t *Tables) VRFs() []string {
	return UnionVRFs(t.IPv4, t.IPv6)
}

// ReadDir loads ipv4.json and ipv6.json from dir.
func ReadDir(dir string) (*Tables, error) {
	v4, err := Read(filepath.Join(dir, IPv4File))
	if err != nil {
		return nil, err
	}
	v6, err := Read(filepath.Join(dir, IPv6File))
	if err != nil {
		return nil, err
	}
	return &Tables{IPv4: v4, IPv6: v6}, nil
}

// WriteDir stores both documents in dir, creating it if needed.
func WriteDir(dir string, t *Tables) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating tables dir %s: %w", dir, err)
	}
	if err := Write(filepath.Join(dir, IPv4File), t.IPv4); err != nil {
		return err
	}
	return Write(filepath.Join(dir, IPv6File), t.IPv6)
}
