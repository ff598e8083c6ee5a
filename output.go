package magisterium

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
)

// PrintCompletion renders the assistant message as an indented JSON block,
// followed by any related questions, numbered. A filtered completion takes
// the same path and simply shows its blank or fallback content.
func (c *Client) PrintCompletion(completion Completion) error {
	block, err := json.MarshalIndent(Message{
		Role:    completion.Role,
		Content: completion.Content,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.output, string(block))

	if len(completion.RelatedQuestions) > 0 {
		fmt.Fprintln(c.output)
		color.New(color.FgYellow).Fprintln(c.output, "--- Related Questions ---")
		for i, question := range completion.RelatedQuestions {
			fmt.Fprintf(c.output, "%d. %s\n", i+1, question)
		}
	}
	return nil
}

// LogErr writes a failure to the client's error stream.
func (c *Client) LogErr(err error) {
	color.New(color.FgRed).Fprintln(c.errorStream, err)
}
