package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scenedsl/pkg/core/scene"
	sceneio "github.com/matzehuels/scenedsl/pkg/io"
)

// readInput reads path, or the command's stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == stdinArg {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// readScene reads a JSON scene from path or stdin.
func readScene(cmd *cobra.Command, path string) (scene.Scene, error) {
	if path != stdinArg {
		return sceneio.ImportJSON(path)
	}
	return sceneio.ReadJSON(cmd.InOrStdin())
}

// writeOutput writes data to path, or to the command's stdout when path is
// empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printFile(path)
	return nil
}

// writeScene writes s as JSON to path or stdout.
func writeScene(cmd *cobra.Command, path string, s scene.Scene) error {
	var buf bytes.Buffer
	if err := sceneio.WriteJSON(s, &buf); err != nil {
		return err
	}
	return writeOutput(cmd, path, buf.Bytes())
}

// withNewline terminates text with a newline for terminal output.
func withNewline(text string) []byte {
	if text == "" || text[len(text)-1] == '\n' {
		return []byte(text)
	}
	return []byte(text + "\n")
}
