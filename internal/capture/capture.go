package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os/exec"
	"strconv"
	"time"
)

var ErrEmptyFrame = errors.New("camera returned an empty frame")

// Camera acquires one still frame encoded as JPEG.
type Camera interface {
	Name() string
	Capture(ctx context.Context) ([]byte, error)
}

// CommandCamera runs a still-capture binary that writes one JPEG to stdout,
// e.g. rpicam-still on a Raspberry Pi.
type CommandCamera struct {
	command string
	width   int
	height  int
}

func NewCommandCamera(command string, width, height int) *CommandCamera {
	return &CommandCamera{command: command, width: width, height: height}
}

func (c *CommandCamera) Name() string { return c.command }

func (c *CommandCamera) Capture(ctx context.Context) ([]byte, error) {
	args := []string{
		"--nopreview",
		"--immediate",
		"--width", strconv.Itoa(c.width),
		"--height", strconv.Itoa(c.height),
		"--encoding", "jpg",
		"-o", "-",
	}
	if deadline, ok := ctx.Deadline(); ok {
		// Let the device give up before the context kills it.
		ms := time.Until(deadline).Milliseconds()
		if ms > 1 {
			args = append(args, "--timeout", strconv.FormatInt(ms/2, 10))
		}
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.command, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w: %s", c.command, err, bytes.TrimSpace(stderr.Bytes()))
	}
	if stdout.Len() == 0 {
		return nil, ErrEmptyFrame
	}
	return stdout.Bytes(), nil
}

// PatternCamera renders a synthetic test pattern. It stands in for a real
// device in development and tests.
type PatternCamera struct {
	width  int
	height int
	now    func() time.Time
}

func NewPatternCamera(width, height int) *PatternCamera {
	return &PatternCamera{width: width, height: height, now: time.Now}
}

func (c *PatternCamera) Name() string { return "pattern" }

func (c *PatternCamera) Capture(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	bars := []color.RGBA{
		{255, 255, 255, 255},
		{255, 255, 0, 255},
		{0, 255, 255, 255},
		{0, 255, 0, 255},
		{255, 0, 255, 255},
		{255, 0, 0, 255},
		{0, 0, 255, 255},
	}
	// The moving stripe makes successive frames differ.
	offset := int(c.now().UnixMilli()/100) % c.width
	for x := 0; x < c.width; x++ {
		bar := bars[x*len(bars)/c.width]
		for y := 0; y < c.height; y++ {
			px := bar
			if (x+offset)%c.width < 4 {
				px = color.RGBA{0, 0, 0, 255}
			}
			img.SetRGBA(x, y, px)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
