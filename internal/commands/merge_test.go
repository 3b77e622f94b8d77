package commands

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"mp3tool/internal/audio"
	"mp3tool/internal/audio/mp3test"
)

func TestMergeSumsSamplesOfMP3Inputs(t *testing.T) {
	dir := t.TempDir()
	a := newTrack(t, dir, "a.mp3", 10)
	b := newTrack(t, dir, "b.mp3", 7)
	notes := writeFile(t, dir, "notes.txt", []byte("not audio"))
	upper := writeFile(t, dir, "LOUD.MP3", []byte("skipped by the case-sensitive filter"))
	output := filepath.Join(dir, "merged.mp3")

	h, out := newHandler(t)
	got, err := h.Merge([]string{a, notes, upper, b}, output)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if got != output {
		t.Fatalf("expected output %s, got %s", output, got)
	}

	merged, err := audio.Decode(output)
	if err != nil {
		t.Fatalf("decode merged: %v", err)
	}
	if want := int64(17 * mp3test.SamplesPerFrame); merged.Samples() != want {
		t.Fatalf("expected %d samples, got %d", want, merged.Samples())
	}
	if !strings.Contains(out.String(), "Exporting finished: "+output+" created") {
		t.Fatalf("expected confirmation, got %q", out.String())
	}
}

func TestMergeKeepsInputOrder(t *testing.T) {
	dir := t.TempDir()
	first := mp3test.Stream{Frames: 3}.Bytes()
	frameSize := len(first) / 3
	for i := 0; i < 3; i++ {
		first[i*frameSize+200] = 0xAA
	}
	a := writeFile(t, dir, "a.mp3", first)
	b := newTrack(t, dir, "b.mp3", 2)
	output := filepath.Join(dir, "merged.mp3")

	h, _ := newHandler(t)
	if _, err := h.Merge([]string{a, b}, output); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read merged: %v", err)
	}
	if len(data) != 5*frameSize {
		t.Fatalf("expected %d bytes, got %d", 5*frameSize, len(data))
	}
	if data[200] != 0xAA || data[2*frameSize+200] != 0xAA {
		t.Fatalf("expected frames of the first input at the start")
	}
	if data[3*frameSize+200] != 0 {
		t.Fatalf("expected frames of the second input after the first")
	}
}

func TestMergeSubstitutesDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	a := newTrack(t, dir, "a.mp3", 4)
	b := newTrack(t, dir, "b.mp3", 4)

	h, out := newHandler(t)
	got, err := h.Merge([]string{a, b}, filepath.Join(dir, "merged.wav"))
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if got != DefaultOutput {
		t.Fatalf("expected %s, got %s", DefaultOutput, got)
	}
	if _, err := os.Stat(filepath.Join(dir, DefaultOutput)); err != nil {
		t.Fatalf("expected %s to exist: %v", DefaultOutput, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "merged.wav")); !os.IsNotExist(err) {
		t.Fatalf("expected requested name to be ignored, got %v", err)
	}
	if !strings.Contains(out.String(), DefaultOutput) {
		t.Fatalf("expected confirmation to name %s, got %q", DefaultOutput, out.String())
	}
}

func TestResolveOutput(t *testing.T) {
	cases := map[string]string{
		"mix.mp3":        "mix.mp3",
		"dir/mix.mp3":    "dir/mix.mp3",
		"mix.MP3":        DefaultOutput,
		"mix.wav":        DefaultOutput,
		"mix":            DefaultOutput,
		"mix.mp3.backup": DefaultOutput,
	}
	for in, want := range cases {
		if got := ResolveOutput(in); got != want {
			t.Fatalf("ResolveOutput(%q): expected %s, got %s", in, want, got)
		}
	}
}

func TestMergeWithoutMP3Inputs(t *testing.T) {
	dir := t.TempDir()
	notes := writeFile(t, dir, "notes.txt", []byte("text"))

	h, _ := newHandler(t)
	_, err := h.Merge([]string{notes}, filepath.Join(dir, "out.mp3"))
	if !errors.Is(err, ErrNoInputs) {
		t.Fatalf("expected ErrNoInputs, got %v", err)
	}
}

func TestMergeFailsWithoutPartialOutput(t *testing.T) {
	dir := t.TempDir()
	a := newTrack(t, dir, "a.mp3", 4)
	broken := writeFile(t, dir, "broken.mp3", []byte("definitely not mpeg audio"))
	output := filepath.Join(dir, "out.mp3")

	h, out := newHandler(t)
	if _, err := h.Merge([]string{a, broken}, output); err == nil {
		t.Fatalf("expected error for undecodable input")
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Fatalf("expected no output file, got %v", err)
	}
	if out.String() != "" {
		t.Fatalf("expected no confirmation, got %q", out.String())
	}
}

func TestMergeRejectsMixedFormats(t *testing.T) {
	dir := t.TempDir()
	a := newTrack(t, dir, "a.mp3", 4)
	b := mp3test.WriteFile(t, dir, "b.mp3", mp3test.Stream{Frames: 4, SampleRate: 48000})

	h, _ := newHandler(t)
	_, err := h.Merge([]string{a, b}, filepath.Join(dir, "out.mp3"))
	var mismatch *audio.FormatMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected FormatMismatchError, got %v", err)
	}
}

func TestMergeDropsInfoFrames(t *testing.T) {
	dir := t.TempDir()
	first := mp3test.Stream{Frames: 10, Info: true}
	second := mp3test.Stream{Frames: 30, Info: true}
	a := mp3test.WriteFile(t, dir, "a.mp3", first)
	b := mp3test.WriteFile(t, dir, "b.mp3", second)
	output := filepath.Join(dir, "merged.mp3")

	h, _ := newHandler(t)
	if _, err := h.Merge([]string{a, b}, output); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read merged: %v", err)
	}
	if want := 40 * first.FrameSize(); len(data) != want {
		t.Fatalf("expected %d bytes of audio frames, got %d", want, len(data))
	}
	if n := bytes.Count(data, []byte("Info")); n != 0 {
		t.Fatalf("expected no Info headers in the output, got %d", n)
	}

	merged, err := audio.Decode(output)
	if err != nil {
		t.Fatalf("decode merged: %v", err)
	}
	if want := first.Samples() + second.Samples(); merged.Samples() != want {
		t.Fatalf("expected %d samples, got %d", want, merged.Samples())
	}
}

func TestMergeLogsProgress(t *testing.T) {
	dir := t.TempDir()
	a := newTrack(t, dir, "a.mp3", 2)
	b := newTrack(t, dir, "b.mp3", 2)

	logger, hook := logtest.NewNullLogger()
	h := New(&syncBuffer{}, logger)
	if _, err := h.Merge([]string{a, b}, filepath.Join(dir, "out.mp3")); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	var messages []string
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.InfoLevel {
			messages = append(messages, entry.Message)
		}
	}
	want := []string{"Merging files...", "Exporting output..."}
	if strings.Join(messages, "|") != strings.Join(want, "|") {
		t.Fatalf("expected progress messages %v, got %v", want, messages)
	}
}
