package legacy

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
)

//go:embed fixtures/loans.json
var defaultFixtures []byte

// LoadFixtures returns the legacy records bundled with the binary.
func LoadFixtures() ([]Record, error) {
	return DecodeRecords(bytes.NewReader(defaultFixtures))
}

// LoadFile reads legacy records from a JSON file on disk.
func LoadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open legacy fixtures: %w", err)
	}
	defer f.Close()
	return DecodeRecords(f)
}
