package common

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo()

	// Check if basic fields are populated
	if info.Hostname == "" {
		t.Error("Hostname is empty")
	}

	if info.OS == "" {
		t.Error("OS is empty")
	}

	if info.Version != Version {
		t.Errorf("Expected Version %q, got %q", Version, info.Version)
	}

	if info.GoVersion == "" {
		t.Error("GoVersion is empty")
	}

	if info.NumCPU <= 0 {
		t.Errorf("NumCPU should be positive, got %d", info.NumCPU)
	}
}

func TestInfoString(t *testing.T) {
	strInfo := GetInfo().String()

	for _, field := range []string{"webserver", "CPUs", "up "} {
		if !strings.Contains(strInfo, field) {
			t.Errorf("Expected to find '%s' in info string %q", field, strInfo)
		}
	}
}

// Setup a content root with a few files for testing
func setupContentRoot(t *testing.T) string {
	root := t.TempDir()

	files := map[string][]byte{
		"index.md":           []byte("# Hello"),
		"style/default.scss": []byte("body { color: red; }"),
		"img/logo.bin":       {0xff, 0xfe, 0x00, 0x81},
	}
	for name, data := range files {
		if err := SaveBlob(filepath.Join(root, filepath.FromSlash(name)), data); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return root
}

func TestStoreReadFile(t *testing.T) {
	store := NewStore(setupContentRoot(t))

	data, err := store.ReadFile("index.md")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "# Hello" {
		t.Errorf("Content mismatch. Got %q", data)
	}

	// Leading slash is accepted
	data, err = store.ReadFile("/style/default.scss")
	if err != nil {
		t.Fatalf("ReadFile with leading slash failed: %v", err)
	}
	if !bytes.Contains(data, []byte("color: red")) {
		t.Errorf("Content mismatch. Got %q", data)
	}
}

func TestStoreReadFileNotFound(t *testing.T) {
	store := NewStore(setupContentRoot(t))

	for _, name := range []string{"missing.md", "style", "style/"} {
		_, err := store.ReadFile(name)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("ReadFile(%q): expected ErrNotFound, got %v", name, err)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("ReadFile(%q): expected error to match fs.ErrNotExist", name)
		}
	}
}

func TestStoreRejectsTraversal(t *testing.T) {
	root := setupContentRoot(t)
	outside := filepath.Join(filepath.Dir(root), "secret.txt")
	if err := os.WriteFile(outside, []byte("secret"), 0644); err != nil {
		t.Fatalf("Failed to write file outside the root: %v", err)
	}
	defer os.Remove(outside)

	store := NewStore(root)
	for _, name := range []string{"../secret.txt", "/../secret.txt", "style/../../secret.txt", "", "/"} {
		_, err := store.ReadFile(name)
		if !errors.Is(err, ErrInvalidPath) {
			t.Errorf("ReadFile(%q): expected ErrInvalidPath, got %v", name, err)
		}
	}
}

func TestStoreReadText(t *testing.T) {
	store := NewStore(setupContentRoot(t))

	if _, err := store.ReadText("index.md"); err != nil {
		t.Errorf("ReadText failed on UTF-8 file: %v", err)
	}

	_, err := store.ReadText("img/logo.bin")
	if !errors.Is(err, ErrNotUTF8) {
		t.Errorf("Expected ErrNotUTF8, got %v", err)
	}

	// The raw bytes are still available
	if _, err := store.ReadFile("img/logo.bin"); err != nil {
		t.Errorf("ReadFile failed on binary file: %v", err)
	}
}

func TestSaveBlobAndFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "nested", "dir", "save-test.txt")

	if FileExists(filePath) {
		t.Fatalf("FileExists returned true before the file was written")
	}

	if err := SaveBlob(filePath, []byte("test data for SaveBlob")); err != nil {
		t.Fatalf("SaveBlob failed: %v", err)
	}

	if !FileExists(filePath) {
		t.Errorf("FileExists returned false for existing file %s", filePath)
	}

	data, err := ReadBlob(filePath)
	if err != nil {
		t.Fatalf("ReadBlob failed: %v", err)
	}
	if string(data) != "test data for SaveBlob" {
		t.Errorf("Content mismatch. Got %q", data)
	}
}
