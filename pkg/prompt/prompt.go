// Package prompt builds few-shot prompts for the text model from a training
// scene.
//
// A training scene is a sequence of example frames. Each frame holds exactly
// two examples whose names follow the "<id>. <label>" convention; sorted by
// name, the first is the "before" example and the second the "after"
// example. The label of the before example describes how to create it, the
// label of the after example describes the modification that turns before
// into after.
//
// Two prefixes are derived from a training scene:
//   - the primary prefix teaches creation: label, then DSL
//   - the edit prefix teaches modification: DSL, label, then patch
//
// Frames whose name contains [PrimaryOnly] are left out of the edit prefix.
package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matzehuels/scenedsl/pkg/core/diff"
	"github.com/matzehuels/scenedsl/pkg/core/dsl"
	"github.com/matzehuels/scenedsl/pkg/core/scene"
	"github.com/matzehuels/scenedsl/pkg/errors"
)

const (
	// Fence delimits DSL blocks in prompts and ends generated output.
	Fence = "```"

	// PrimaryOnly marks example frames that only teach creation.
	PrimaryOnly = "(Primary Only)"

	// InputName replaces example names in edit entries so the model does not
	// learn to rename nodes.
	InputName = "Input"

	entrySeparator = "---\n"
)

// Examples returns the before and after examples of an example frame.
func Examples(frame scene.Node) (before, after scene.Node, err error) {
	children := frame.Props.Children
	if len(children) != 2 {
		return scene.Node{}, scene.Node{}, errors.New(errors.ErrCodeExampleCount,
			"example frame %q must have exactly 2 examples, got %d", frame.Name, len(children))
	}
	examples := []scene.Node{children[0].Clone(), children[1].Clone()}
	sort.SliceStable(examples, func(i, j int) bool {
		return examples[i].Name < examples[j].Name
	})
	return examples[0], examples[1], nil
}

// Label returns the label part of an "<id>. <label>" name. Names without a
// dot are returned trimmed.
func Label(name string) string {
	if _, label, ok := strings.Cut(name, "."); ok {
		return strings.TrimSpace(label)
	}
	return strings.TrimSpace(name)
}

// PrimaryEntry renders the creation example of one frame.
func PrimaryEntry(frame scene.Node) (string, error) {
	before, _, err := Examples(frame)
	if err != nil {
		return "", err
	}
	text, _, err := dsl.Encode(scene.SingleNode(before))
	if err != nil {
		return "", fmt.Errorf("example %q: %w", before.Name, err)
	}
	return Label(before.Name) + "\n" + Fence + "\n" + text + Fence + "\n" + entrySeparator, nil
}

// EditEntry renders the modification example of one frame.
func EditEntry(frame scene.Node) (string, error) {
	before, after, err := Examples(frame)
	if err != nil {
		return "", err
	}
	label := Label(after.Name)
	before.Name = InputName
	after.Name = InputName

	beforeText, _, err := dsl.Encode(scene.SingleNode(before))
	if err != nil {
		return "", fmt.Errorf("example frame %q: %w", frame.Name, err)
	}
	patch, err := diff.Diff(scene.SingleNode(before), scene.SingleNode(after))
	if err != nil {
		return "", fmt.Errorf("example frame %q: %w", frame.Name, err)
	}
	patchText, err := diff.Marshal(patch)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Input:\n")
	b.WriteString(Fence + "\n" + beforeText + "\n" + Fence + "\n\n")
	b.WriteString("Modification: " + label + "\n")
	b.WriteString(Fence + "\n" + string(patchText) + "\n" + Fence + "\n")
	b.WriteString(entrySeparator)
	return b.String(), nil
}

// PrimaryPrefix joins the primary entries of every frame in training.
func PrimaryPrefix(training scene.Scene) (string, error) {
	entries := make([]string, 0, len(training.Nodes))
	for _, frame := range training.Nodes {
		e, err := PrimaryEntry(frame)
		if err != nil {
			return "", err
		}
		entries = append(entries, e)
	}
	return strings.Join(entries, "\n"), nil
}

// EditPrefix joins the edit entries of every frame in training that is not
// marked PrimaryOnly.
func EditPrefix(training scene.Scene) (string, error) {
	entries := make([]string, 0, len(training.Nodes))
	for _, frame := range training.Nodes {
		if strings.Contains(frame.Name, PrimaryOnly) {
			continue
		}
		e, err := EditEntry(frame)
		if err != nil {
			return "", err
		}
		entries = append(entries, e)
	}
	return strings.Join(entries, "\n"), nil
}

// LiveEdit renders the open-ended edit request for s. The model completes it
// with a patch.
func LiveEdit(request string, s scene.Scene) (string, error) {
	text, _, err := dsl.Encode(s)
	if err != nil {
		return "", err
	}
	return "Input: \n" + Fence + "\n" + text + "\n" + Fence + "\nModification: " + request + "\n" + Fence, nil
}

// Prefixes holds the prompt prefixes derived from one training scene.
type Prefixes struct {
	Primary string `json:"primary"`
	Edit    string `json:"edit"`
}

// Build derives both prefixes from training.
func Build(training scene.Scene) (Prefixes, error) {
	primary, err := PrimaryPrefix(training)
	if err != nil {
		return Prefixes{}, err
	}
	edit, err := EditPrefix(training)
	if err != nil {
		return Prefixes{}, err
	}
	return Prefixes{Primary: primary, Edit: edit}, nil
}

// PrimaryQuery returns the full prompt for creating something new.
func (p Prefixes) PrimaryQuery(request string) string {
	return p.Primary + "\n" + request + "\n" + Fence
}

// EditQuery returns the full prompt for modifying s.
func (p Prefixes) EditQuery(request string, s scene.Scene) (string, error) {
	live, err := LiveEdit(request, s)
	if err != nil {
		return "", err
	}
	return p.Edit + "\n" + live, nil
}

// ExtractDSL returns generated text up to the first code fence.
func ExtractDSL(generated string) string {
	before, _, _ := strings.Cut(generated, Fence)
	return before
}
