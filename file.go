package magisterium

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/cixtor/readability"
)

// MessageFromFile reads the message text from a file instead of the
// command line.
func MessageFromFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	message := strings.TrimSpace(string(content))
	if message == "" {
		return "", fmt.Errorf("%s is empty", path)
	}
	return message, nil
}

// MessageFromURL fetches a web page and extracts its readable text, so a
// whole article can be sent as the question context.
func MessageFromURL(pageURL string) (string, error) {
	resp, err := http.Get(pageURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: unexpected status %d", pageURL, resp.StatusCode)
	}
	parser := readability.New()
	article, err := parser.Parse(resp.Body, pageURL)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(article.TextContent), nil
}

// MessageFromReader drains a piped input stream, typically stdin.
func MessageFromReader(r io.Reader) (string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(content)), nil
}
