package testcase

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/jjudge-oj/fps-import/types"
)

// PackageZip packs a materialized test-case set into an in-memory zip holding
// exactly the manifest's {index}.in/{index}.out pairs, in index order. The
// judge's upload endpoint regenerates its own manifest server-side, so the
// sidecar "info" file is not included.
func PackageZip(dir string, manifest types.TestCaseManifest) ([]byte, error) {
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)

	for _, index := range caseIndexes(manifest) {
		for _, name := range []string{
			fmt.Sprintf("%d.in", index),
			fmt.Sprintf("%d.out", index),
		} {
			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", name, err)
			}
			entry, err := writer.Create(name)
			if err != nil {
				return nil, fmt.Errorf("add %s to bundle: %w", name, err)
			}
			if _, err := entry.Write(data); err != nil {
				return nil, fmt.Errorf("add %s to bundle: %w", name, err)
			}
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize bundle: %w", err)
	}
	return buf.Bytes(), nil
}

// caseIndexes converts the manifest's string keys back to ordered ints.
func caseIndexes(manifest types.TestCaseManifest) []int {
	indexes := make([]int, 0, len(manifest.TestCases))
	for key := range manifest.TestCases {
		if index, err := strconv.Atoi(key); err == nil {
			indexes = append(indexes, index)
		}
	}
	sort.Ints(indexes)
	return indexes
}
