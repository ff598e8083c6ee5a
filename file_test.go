package magisterium_test

import (
	"os"
	"strings"
	"testing"

	"github.com/mr-joshcrane/magisterium"
)

func TestMessageFromFile(t *testing.T) {
	t.Parallel()
	path := t.TempDir() + "/question.txt"
	contents := "What is the communion of saints?\n"
	err := os.WriteFile(path, []byte(contents), 0644)
	if err != nil {
		t.Fatal(err)
	}
	got, err := magisterium.MessageFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "What is the communion of saints?"
	if want != got {
		t.Fatalf("wanted %q, got %q", want, got)
	}
}

func TestMessageFromFileRejectsEmptyFile(t *testing.T) {
	t.Parallel()
	path := t.TempDir() + "/empty.txt"
	err := os.WriteFile(path, []byte("  \n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	_, err = magisterium.MessageFromFile(path)
	if err == nil {
		t.Fatal("wanted an error for an empty file")
	}
}

func TestMessageFromFileMissing(t *testing.T) {
	t.Parallel()
	_, err := magisterium.MessageFromFile(t.TempDir() + "/does-not-exist.txt")
	if err == nil {
		t.Fatal("wanted an error for a missing file")
	}
}

func TestMessageFromReader(t *testing.T) {
	t.Parallel()
	got, err := magisterium.MessageFromReader(strings.NewReader("  piped question \n"))
	if err != nil {
		t.Fatal(err)
	}
	want := "piped question"
	if want != got {
		t.Fatalf("wanted %q, got %q", want, got)
	}
}
