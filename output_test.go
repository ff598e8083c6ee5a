package magisterium_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
	"github.com/mr-joshcrane/magisterium"
)

func init() {
	color.NoColor = true
}

func TestPrintCompletion(t *testing.T) {
	t.Parallel()
	buf := new(bytes.Buffer)
	client, err := magisterium.NewClient(
		magisterium.WithAPIKey("test-key"),
		magisterium.WithOutput(buf, io.Discard),
	)
	if err != nil {
		t.Fatal(err)
	}
	err = client.PrintCompletion(magisterium.Completion{
		Role:    "assistant",
		Content: "The Magisterium is the teaching authority of the Church.",
		RelatedQuestions: []string{
			"What is the deposit of faith?",
			"Who exercises the Magisterium?",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := `{
  "role": "assistant",
  "content": "The Magisterium is the teaching authority of the Church."
}

--- Related Questions ---
1. What is the deposit of faith?
2. Who exercises the Magisterium?
`
	if got := buf.String(); !cmp.Equal(want, got) {
		t.Fatal(cmp.Diff(want, got))
	}
}

func TestPrintCompletionWithoutRelatedQuestions(t *testing.T) {
	t.Parallel()
	buf := new(bytes.Buffer)
	client, err := magisterium.NewClient(
		magisterium.WithAPIKey("test-key"),
		magisterium.WithOutput(buf, io.Discard),
	)
	if err != nil {
		t.Fatal(err)
	}
	err = client.PrintCompletion(magisterium.Completion{Role: "assistant", Content: "Amen."})
	if err != nil {
		t.Fatal(err)
	}
	want := `{
  "role": "assistant",
  "content": "Amen."
}
`
	if got := buf.String(); !cmp.Equal(want, got) {
		t.Fatal(cmp.Diff(want, got))
	}
}

func TestLogErrWritesToErrorStream(t *testing.T) {
	t.Parallel()
	errBuf := new(bytes.Buffer)
	client, err := magisterium.NewClient(
		magisterium.WithAPIKey("test-key"),
		magisterium.WithOutput(io.Discard, errBuf),
	)
	if err != nil {
		t.Fatal(err)
	}
	client.LogErr(&magisterium.APIError{Kind: magisterium.RateLimited, Message: "slow down"})
	want := "slow down\n"
	if got := errBuf.String(); got != want {
		t.Fatalf("wanted %q, got %q", want, got)
	}
}
