package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ErrNoConverter is returned when rsvg-convert cannot be found.
var ErrNoConverter = errors.New("rsvg-convert not found; install librsvg (brew install librsvg, apt install librsvg2-bin)")

// Converter turns SVG into PDF or PNG with rsvg-convert.
type Converter struct {
	// Path is the rsvg-convert binary. Empty means look it up on PATH.
	Path string
}

// ToPDF converts svg with the rsvg-convert found on PATH.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return Converter{}.PDF(ctx, svg)
}

// ToPNG converts svg with the rsvg-convert found on PATH. A scale of 2
// doubles the resolution.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	return Converter{}.PNG(ctx, svg, scale)
}

func (c Converter) PDF(ctx context.Context, svg []byte) ([]byte, error) {
	return c.run(ctx, svg, "--format=pdf")
}

// PNG renders svg at scale; non-positive scales render at 1.
func (c Converter) PNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return c.run(ctx, svg, "--format=png", "--zoom="+strconv.FormatFloat(scale, 'f', 2, 64))
}

func (c Converter) binary() (string, error) {
	if c.Path != "" {
		return c.Path, nil
	}
	path, err := exec.LookPath("rsvg-convert")
	if err != nil {
		return "", ErrNoConverter
	}
	return path, nil
}

func (c Converter) run(ctx context.Context, svg []byte, args ...string) ([]byte, error) {
	bin, err := c.binary()
	if err != nil {
		return nil, err
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = bytes.NewReader(svg)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, ErrNoConverter
		}
		return nil, fmt.Errorf("rsvg-convert %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
