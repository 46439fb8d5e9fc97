// Package testcase materializes a problem's test data on disk in the layout
// the judge expects: a directory named by the test-case-set id holding
// 1.in/1.out, 2.in/2.out, ... plus an "info" manifest with byte sizes and
// output digests.
package testcase

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jjudge-oj/fps-import/types"
)

// The judge runs test data with group access only; keep everyone else out.
const dirMode = 0o710

const manifestName = "info"

// trailingWhitespace is the cutset removed before computing the stripped
// output digest, matching what the judge strips from program output.
const trailingWhitespace = " \t\n\r\v\f"

// NewSetID mints a fresh opaque test-case-set identifier.
func NewSetID() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return ""
	}
	return hex.EncodeToString(buf[:])
}

// EnsureDir creates the directory for a test-case set under baseDir,
// idempotently, and returns its path. Reusing an existing set id recreates
// the directory if it went missing.
func EnsureDir(baseDir, setID string) (string, error) {
	dir := filepath.Join(baseDir, setID)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return "", fmt.Errorf("create test case directory: %w", err)
	}
	return dir, nil
}

// Materialize writes every test case of a set into dir as {index}.in and
// {index}.out (1-based, in the given order) and finalizes the manifest.
// The manifest is written only after every case file exists, so it never
// references a file that was not written; on any mid-set failure no manifest
// is produced and the partial files are left for the next run to overwrite.
func Materialize(dir string, cases []types.TestCaseSource, spj bool) (types.TestCaseManifest, error) {
	manifest := types.TestCaseManifest{
		SPJ:       spj,
		TestCases: make(map[string]types.TestCaseInfo, len(cases)),
	}

	for i, c := range cases {
		index := i + 1
		info, err := writeCase(dir, index, c.Input, c.Output)
		if err != nil {
			return types.TestCaseManifest{}, err
		}
		manifest.TestCases[strconv.Itoa(index)] = info
	}

	if err := writeManifest(dir, manifest); err != nil {
		return types.TestCaseManifest{}, err
	}
	return manifest, nil
}

func writeCase(dir string, index int, input, output string) (types.TestCaseInfo, error) {
	inputName := fmt.Sprintf("%d.in", index)
	outputName := fmt.Sprintf("%d.out", index)

	if err := os.WriteFile(filepath.Join(dir, inputName), []byte(input), 0o640); err != nil {
		return types.TestCaseInfo{}, fmt.Errorf("write %s: %w", inputName, err)
	}
	if err := os.WriteFile(filepath.Join(dir, outputName), []byte(output), 0o640); err != nil {
		return types.TestCaseInfo{}, fmt.Errorf("write %s: %w", outputName, err)
	}

	return types.TestCaseInfo{
		InputName:         inputName,
		InputSize:         len(input),
		OutputName:        outputName,
		OutputSize:        len(output),
		OutputMD5:         contentMD5(output),
		StrippedOutputMD5: contentMD5(strings.TrimRight(output, trailingWhitespace)),
	}, nil
}

func writeManifest(dir string, manifest types.TestCaseManifest) error {
	data, err := json.MarshalIndent(manifest, "", "    ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, manifestName), data, 0o640); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

func contentMD5(content string) string {
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}
