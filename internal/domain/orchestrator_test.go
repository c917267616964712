package domain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"picobuild.dev/pkg/picobuild/internal/adapter"
	m "picobuild.dev/pkg/picobuild/internal/model"
)

func newTestOrchestrator(sink EventSink) Orchestrator {
	return NewOrchestrator(adapter.NewLocalProjectFSAdapter(), false, sink)
}

func defaultBuildArgs(root m.Path, out m.Path) BuildArgs {
	return BuildArgs{
		Root:    root,
		Out:     out,
		Layout:  m.LayoutFolderPerTab,
		Profile: m.ConstraintProfile{MaxTabs: 15},
		Format:  m.DefaultCartFormat(),
		Workers: 2,
	}
}

func TestOrchestrator_BuildSuccess(t *testing.T) {
	root := writeProject(t, map[string]string{
		"intro/main.txt": "intro code",
		"menu/ui.txt":    "ui code",
		"menu/draw.txt":  "draw code",
	})
	out := m.Path(filepath.Join(t.TempDir(), "game.p8"))

	report := newTestOrchestrator(nil).Build(context.Background(), defaultBuildArgs(root, out))

	require.Equal(t, m.StatusSuccess, report.Status)
	assert.Equal(t, m.StageDone, report.Stage)
	assert.Equal(t, out, report.ArtifactPath)
	assert.Equal(t, 2, report.TabCount)
	assert.Empty(t, report.Diagnostics)

	content, err := os.ReadFile(string(out))
	require.NoError(t, err)

	// intro before menu (lexicographic), draw before ui within menu.
	want := "pico-8 cartridge // http://www.pico-8.com\n" +
		"version 42\n" +
		"__lua__\n" +
		"intro code\n" +
		"-->8\n" +
		"draw code\nui code\n"
	assert.Equal(t, want, string(content))
}

func TestOrchestrator_BuildIdempotent(t *testing.T) {
	root := writeProject(t, map[string]string{
		"intro/main.txt": "intro code",
		"menu/ui.txt":    "ui code",
	})
	out := m.Path(filepath.Join(t.TempDir(), "game.p8"))

	orch := newTestOrchestrator(nil)
	args := defaultBuildArgs(root, out)

	first := orch.Build(context.Background(), args)
	require.Equal(t, m.StatusSuccess, first.Status)

	firstBytes, err := os.ReadFile(string(out))
	require.NoError(t, err)

	second := orch.Build(context.Background(), args)
	require.Equal(t, m.StatusSuccess, second.Status)

	secondBytes, err := os.ReadFile(string(out))
	require.NoError(t, err)

	assert.Equal(t, firstBytes, secondBytes, "rebuilding an unchanged tree is byte-identical")
}

func TestOrchestrator_TooManyTabsNoArtifact(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 16; i++ {
		files[fmt.Sprintf("tab%02d/code.lua", i)] = "x"
	}

	root := writeProject(t, files)
	out := m.Path(filepath.Join(t.TempDir(), "game.p8"))

	report := newTestOrchestrator(nil).Build(context.Background(), defaultBuildArgs(root, out))

	require.Equal(t, m.StatusFailed, report.Status)
	assert.Equal(t, m.StageValidate, report.Stage)
	assert.Empty(t, report.ArtifactPath)

	errors := report.Errors()
	require.Len(t, errors, 1)
	assert.Equal(t, m.CodeTooManyTabs, errors[0].Code)
	assert.Contains(t, errors[0].Message, "16")
	assert.Contains(t, errors[0].Message, "15")

	_, err := os.Stat(string(out))
	assert.True(t, os.IsNotExist(err), "no output file created or modified")
}

func TestOrchestrator_AllOversizedTabsReported(t *testing.T) {
	root := writeProject(t, map[string]string{
		"big1/code.lua":  "this is definitely too long",
		"big2/code.lua":  "this one is also far too long",
		"small/code.lua": "ok",
	})
	out := m.Path(filepath.Join(t.TempDir(), "game.p8"))

	args := defaultBuildArgs(root, out)
	args.Profile.MaxTabBytes = 10

	report := newTestOrchestrator(nil).Build(context.Background(), args)

	require.Equal(t, m.StatusFailed, report.Status)

	errors := report.Errors()
	require.Len(t, errors, 2)
	assert.Equal(t, "big1", errors[0].Tab)
	assert.Equal(t, "big2", errors[1].Tab)

	_, statErr := os.Stat(string(out))
	assert.True(t, os.IsNotExist(statErr))
}

func TestOrchestrator_ScanFailure(t *testing.T) {
	out := m.Path(filepath.Join(t.TempDir(), "game.p8"))
	missing := m.Path(filepath.Join(t.TempDir(), "nope"))

	report := newTestOrchestrator(nil).Build(context.Background(), defaultBuildArgs(missing, out))

	require.Equal(t, m.StatusFailed, report.Status)
	assert.Equal(t, m.StageScan, report.Stage)

	errors := report.Errors()
	require.Len(t, errors, 1)
	assert.Equal(t, m.CodeScanError, errors[0].Code)
}

func TestOrchestrator_EncodingFailure(t *testing.T) {
	root := writeProject(t, map[string]string{
		"good/fine.lua":    "fine",
		"bad/mojibake.lua": "\xff\xfe broken",
	})
	out := m.Path(filepath.Join(t.TempDir(), "game.p8"))

	report := newTestOrchestrator(nil).Build(context.Background(), defaultBuildArgs(root, out))

	require.Equal(t, m.StatusFailed, report.Status)
	assert.Equal(t, m.StageAssemble, report.Stage)

	errors := report.Errors()
	require.Len(t, errors, 1)
	assert.Equal(t, m.CodeEncodingError, errors[0].Code)
	assert.Equal(t, "bad", errors[0].Tab)
	assert.Contains(t, string(errors[0].File), "mojibake.lua")

	_, statErr := os.Stat(string(out))
	assert.True(t, os.IsNotExist(statErr))
}

func TestOrchestrator_WarningsDoNotFailBuild(t *testing.T) {
	root := writeProject(t, map[string]string{
		"intro/main.txt":  "code",
		"intro/blob.bin":  binaryBlob,
		"stray.txt":       "loose",
		"empty/":          "",
	})
	out := m.Path(filepath.Join(t.TempDir(), "game.p8"))

	report := newTestOrchestrator(nil).Build(context.Background(), defaultBuildArgs(root, out))

	require.Equal(t, m.StatusSuccess, report.Status)
	assert.Len(t, report.Warnings(), 3)
	assert.Empty(t, report.Errors())

	_, err := os.Stat(string(out))
	assert.NoError(t, err, "warnings alone never block the artifact")
}

func TestOrchestrator_DryRunWritesNothing(t *testing.T) {
	root := writeProject(t, map[string]string{"intro/main.txt": "code"})
	out := m.Path(filepath.Join(t.TempDir(), "game.p8"))

	args := defaultBuildArgs(root, out)
	args.DryRun = true

	report := newTestOrchestrator(nil).Build(context.Background(), args)

	require.Equal(t, m.StatusSuccess, report.Status)
	assert.Empty(t, report.ArtifactPath)

	_, err := os.Stat(string(out))
	assert.True(t, os.IsNotExist(err))
}

func TestOrchestrator_IOFailureReported(t *testing.T) {
	root := writeProject(t, map[string]string{"intro/main.txt": "code"})
	out := m.Path(filepath.Join(t.TempDir(), "missing-dir", "game.p8"))

	report := newTestOrchestrator(nil).Build(context.Background(), defaultBuildArgs(root, out))

	require.Equal(t, m.StatusFailed, report.Status)
	assert.Equal(t, m.StageSerialize, report.Stage)

	errors := report.Errors()
	require.Len(t, errors, 1)
	assert.Equal(t, m.CodeIOError, errors[0].Code)
	assert.Equal(t, out, errors[0].File)
}

func TestOrchestrator_CancellationLeavesNoArtifact(t *testing.T) {
	root := writeProject(t, map[string]string{"intro/main.txt": "code"})
	out := m.Path(filepath.Join(t.TempDir(), "game.p8"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := newTestOrchestrator(nil).Build(ctx, defaultBuildArgs(root, out))

	require.Equal(t, m.StatusFailed, report.Status)

	_, err := os.Stat(string(out))
	assert.True(t, os.IsNotExist(err))
}

func TestOrchestrator_EventsReachSink(t *testing.T) {
	root := writeProject(t, map[string]string{
		"intro/main.txt": "code",
		"stray.txt":      "loose",
	})
	out := m.Path(filepath.Join(t.TempDir(), "game.p8"))

	sink := NewChannelSink(16)

	report := newTestOrchestrator(sink).Build(context.Background(), defaultBuildArgs(root, out))
	require.Equal(t, m.StatusSuccess, report.Status)

	select {
	case diag := <-sink.Events():
		assert.Equal(t, m.CodeLooseFile, diag.Code)
	default:
		t.Fatal("expected the loose-file warning on the sink")
	}
}
