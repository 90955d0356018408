package renamer_test

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightconcept/rename-plugin/internal/core/cmake"
	"github.com/nightconcept/rename-plugin/internal/core/layout"
	"github.com/nightconcept/rename-plugin/internal/core/renamer"
	"github.com/nightconcept/rename-plugin/internal/testutil"
)

func TestRun_RenamesProject(t *testing.T) {
	t.Parallel()
	root := testutil.NewPluginProject(t, "MyPlugin")
	before := testutil.Snapshot(t, root)

	var out bytes.Buffer
	plan, res, err := renamer.Run(root, layout.Default(), "CoolPlugin", renamer.Options{}, renamer.NewReporter(&out, false))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "MyPlugin", plan.OldName)
	assert.Len(t, plan.Files, 9)

	_, err = os.Stat(filepath.Join(root, "plugin", "include", "MyPlugin"))
	assert.True(t, os.IsNotExist(err), "old include directory should be gone")
	info, err := os.Stat(filepath.Join(root, "plugin", "include", "CoolPlugin"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	after := testutil.Snapshot(t, root)
	expected := testutil.PluginFiles("CoolPlugin")
	// Common.h is moved with the directory but is not in the target set.
	expected["plugin/include/CoolPlugin/Common.h"] = before["plugin/include/MyPlugin/Common.h"]
	assert.Equal(t, expected, after)

	for path, content := range after {
		if strings.HasSuffix(path, "Common.h") {
			continue
		}
		assert.NotContains(t, content, "MyPlugin", "%s still mentions the old name", path)
	}

	// Identifiers.h has no occurrence and is left alone.
	assert.NotContains(t, res.Updated, filepath.Join("plugin", "include", "CoolPlugin", "Identifiers.h"))
	assert.Len(t, res.Updated, 8)
	assert.Equal(t, plan.Occurrences(), res.Replacements)
}

func TestRun_ProgressOutput(t *testing.T) {
	t.Parallel()
	root := testutil.NewPluginProject(t, "MyPlugin")

	var out bytes.Buffer
	_, _, err := renamer.Run(root, layout.Default(), "CoolPlugin", renamer.Options{}, renamer.NewReporter(&out, false))
	require.NoError(t, err)

	lines := []string{
		"Changing plugin's name to CoolPlugin. . .",
		"Found previous name 'MyPlugin'. . .",
		"Renaming include directory",
		"Updating cmake file",
		"Updating header files",
		"Updating source files",
		"Updating test files",
		"Name change finished!",
	}
	text := out.String()
	last := -1
	for _, line := range lines {
		idx := strings.Index(text, line)
		require.NotEqual(t, -1, idx, "missing progress line %q in:\n%s", line, text)
		assert.Greater(t, idx, last, "progress line %q out of order", line)
		last = idx
	}
	assert.NotContains(t, text, "replacement(s)", "detail lines are only printed in verbose mode")
}

func TestRun_VerboseOutput(t *testing.T) {
	t.Parallel()
	root := testutil.NewPluginProject(t, "MyPlugin")

	var out bytes.Buffer
	_, _, err := renamer.Run(root, layout.Default(), "CoolPlugin", renamer.Options{}, renamer.NewReporter(&out, true))
	require.NoError(t, err)
	assert.Contains(t, out.String(), filepath.Join("plugin", "source", "Common.cpp")+": 1 replacement(s)")
}

func TestRun_RoundTrip(t *testing.T) {
	t.Parallel()
	root := testutil.NewPluginProject(t, "MyPlugin")
	original := testutil.Snapshot(t, root)

	_, _, err := renamer.Run(root, layout.Default(), "CoolPlugin", renamer.Options{}, nil)
	require.NoError(t, err)
	_, _, err = renamer.Run(root, layout.Default(), "MyPlugin", renamer.Options{}, nil)
	require.NoError(t, err)

	assert.Equal(t, original, testutil.Snapshot(t, root))
}

func TestRun_SecondRunIsNoop(t *testing.T) {
	t.Parallel()
	root := testutil.NewPluginProject(t, "MyPlugin")

	_, _, err := renamer.Run(root, layout.Default(), "CoolPlugin", renamer.Options{}, nil)
	require.NoError(t, err)
	renamed := testutil.Snapshot(t, root)

	var out bytes.Buffer
	plan, res, err := renamer.Run(root, layout.Default(), "CoolPlugin", renamer.Options{}, renamer.NewReporter(&out, false))
	require.NoError(t, err)
	assert.True(t, plan.Noop())
	assert.Zero(t, res.Replacements)
	assert.Contains(t, out.String(), "already named 'CoolPlugin'")
	assert.Equal(t, renamed, testutil.Snapshot(t, root))
}

func TestRun_DryRun(t *testing.T) {
	t.Parallel()
	root := testutil.NewPluginProject(t, "MyPlugin")
	before := testutil.Snapshot(t, root)

	var out bytes.Buffer
	plan, res, err := renamer.Run(root, layout.Default(), "CoolPlugin", renamer.Options{DryRun: true}, renamer.NewReporter(&out, false))
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.NotNil(t, plan)
	assert.Equal(t, before, testutil.Snapshot(t, root), "dry run must not modify anything")
	assert.Contains(t, out.String(), "Dry run")
	assert.Contains(t, out.String(), filepath.Join("plugin", "include", "CoolPlugin"))
	assert.NotContains(t, out.String(), "Name change finished!")
}

func TestRun_MissingMarker(t *testing.T) {
	t.Parallel()
	root := testutil.NewPluginProject(t, "MyPlugin")
	testutil.WriteFiles(t, root, map[string]string{
		"plugin/CMakeLists.txt": "cmake_minimum_required(VERSION 3.22)\nadd_subdirectory(MyPlugin)\n",
	})
	before := testutil.Snapshot(t, root)

	_, _, err := renamer.Run(root, layout.Default(), "CoolPlugin", renamer.Options{}, nil)
	assert.ErrorIs(t, err, cmake.ErrNameNotFound)
	assert.Equal(t, before, testutil.Snapshot(t, root), "no side effects expected")
}

func TestRun_MissingConfigFile(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	_, _, err := renamer.Run(root, layout.Default(), "CoolPlugin", renamer.Options{}, nil)
	assert.ErrorIs(t, err, renamer.ErrPathNotFound)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestRun_MissingIncludeDirectory(t *testing.T) {
	t.Parallel()
	root := testutil.NewPluginProject(t, "MyPlugin")
	require.NoError(t, os.RemoveAll(filepath.Join(root, "plugin", "include", "MyPlugin")))
	before := testutil.Snapshot(t, root)

	_, _, err := renamer.Run(root, layout.Default(), "CoolPlugin", renamer.Options{}, nil)
	assert.ErrorIs(t, err, renamer.ErrPathNotFound)
	assert.ErrorContains(t, err, "include directory")
	assert.Equal(t, before, testutil.Snapshot(t, root), "configuration file must not be rewritten")
}

func TestRun_TargetDirectoryExists(t *testing.T) {
	t.Parallel()
	root := testutil.NewPluginProject(t, "MyPlugin")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "plugin", "include", "CoolPlugin"), 0755))
	before := testutil.Snapshot(t, root)

	_, _, err := renamer.Run(root, layout.Default(), "CoolPlugin", renamer.Options{}, nil)
	assert.ErrorIs(t, err, renamer.ErrPathConflict)
	assert.ErrorIs(t, err, fs.ErrExist)
	assert.Equal(t, before, testutil.Snapshot(t, root))
	_, err = os.Stat(filepath.Join(root, "plugin", "include", "MyPlugin"))
	assert.NoError(t, err, "old include directory must stay in place")
}

func TestRun_MissingTargetFile(t *testing.T) {
	t.Parallel()
	root := testutil.NewPluginProject(t, "MyPlugin")
	require.NoError(t, os.Remove(filepath.Join(root, "test", "source", "AudioProcessorTest.cpp")))
	before := testutil.Snapshot(t, root)

	_, _, err := renamer.Run(root, layout.Default(), "CoolPlugin", renamer.Options{}, nil)
	assert.ErrorIs(t, err, renamer.ErrPathNotFound)
	assert.ErrorContains(t, err, "AudioProcessorTest.cpp")
	assert.Equal(t, before, testutil.Snapshot(t, root), "validation failures must not leave partial changes")
}

func TestRun_InvalidName(t *testing.T) {
	t.Parallel()
	root := testutil.NewPluginProject(t, "MyPlugin")

	for _, name := range []string{"", "Cool Plugin", "a/b", `a\b`, "x)", "..", "."} {
		_, _, err := renamer.Run(root, layout.Default(), name, renamer.Options{}, nil)
		assert.ErrorIs(t, err, renamer.ErrInvalidName, "name %q", name)
	}
}

func TestApply_StaleFile(t *testing.T) {
	t.Parallel()
	root := testutil.NewPluginProject(t, "MyPlugin")

	plan, err := renamer.NewPlan(root, layout.Default(), "CoolPlugin")
	require.NoError(t, err)

	testutil.WriteFiles(t, root, map[string]string{
		"plugin/source/Common.cpp": "// edited behind our back\n",
	})

	_, err = renamer.Apply(plan, nil)
	assert.ErrorIs(t, err, renamer.ErrStale)
	_, err = os.Stat(filepath.Join(root, "plugin", "include", "MyPlugin"))
	assert.NoError(t, err, "include directory must not be renamed when a file is stale")
}

func TestApply_ConflictAppearsAfterPlanning(t *testing.T) {
	t.Parallel()
	root := testutil.NewPluginProject(t, "MyPlugin")

	plan, err := renamer.NewPlan(root, layout.Default(), "CoolPlugin")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "plugin", "include", "CoolPlugin"), 0755))

	_, err = renamer.Apply(plan, nil)
	assert.ErrorIs(t, err, renamer.ErrPathConflict)
}

func TestNewPlan_CustomLayout(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{
		"CMakeLists.txt":      "project(Synth)\n",
		"include/Synth/Dsp.h": "namespace Synth {}\n",
	})
	l := &layout.Layout{
		ConfigFile:  "CMakeLists.txt",
		IncludeRoot: "include",
		Targets: []layout.Target{
			{Role: layout.RoleCMake, Path: "CMakeLists.txt"},
			{Role: layout.RoleHeader, Path: "Dsp.h"},
		},
	}

	plan, err := renamer.NewPlan(root, l, "Drum")
	require.NoError(t, err)
	require.Len(t, plan.Files, 2)
	assert.Equal(t, filepath.Join("include", "Synth", "Dsp.h"), plan.Files[1].Path)
	assert.Equal(t, filepath.Join("include", "Drum", "Dsp.h"), plan.Files[1].FinalPath)
	assert.Equal(t, 1, plan.Files[1].Occurrences)
	assert.Equal(t, 2, plan.Occurrences())

	_, err = renamer.Apply(plan, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"CMakeLists.txt":     "project(Drum)\n",
		"include/Drum/Dsp.h": "namespace Drum {}\n",
	}, testutil.Snapshot(t, root))
}

func TestPartialError(t *testing.T) {
	t.Parallel()
	cause := errors.New("disk full")
	err := &renamer.PartialError{
		Err:        cause,
		DirRenamed: true,
		Done:       []string{"plugin/CMakeLists.txt", "a.h"},
	}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "disk full; the include directory was already renamed; already updated: plugin/CMakeLists.txt, a.h", err.Error())
}

func TestApply_PartialFailure(t *testing.T) {
	t.Parallel()
	root := testutil.NewPluginProject(t, "MyPlugin")

	plan, err := renamer.NewPlan(root, layout.Default(), "CoolPlugin")
	require.NoError(t, err)
	require.Len(t, plan.Files, 9)
	last := &plan.Files[len(plan.Files)-1]
	require.Equal(t, layout.RoleTest, last.Target.Role)
	// The test file is rewritten last; point it somewhere that does not exist.
	last.FinalPath = filepath.Join("test", "missing", "AudioProcessorTest.cpp")

	_, err = renamer.Apply(plan, nil)
	require.Error(t, err)

	var partial *renamer.PartialError
	require.ErrorAs(t, err, &partial)
	assert.True(t, partial.DirRenamed)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	var earlier []string
	for _, f := range plan.Files[:len(plan.Files)-1] {
		earlier = append(earlier, f.FinalPath)
	}
	assert.Equal(t, earlier, partial.Done)

	after := testutil.Snapshot(t, root)
	assert.Contains(t, after["plugin/CMakeLists.txt"], "project(CoolPlugin VERSION 0.1.0)")
	assert.Contains(t, after["test/source/AudioProcessorTest.cpp"], "MyPluginAudioProcessor", "failed file should be untouched")
}

func TestNewPlan_SameFileListedTwice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		targets []layout.Target
	}{
		{"dot prefix", []layout.Target{
			{Role: layout.RoleCMake, Path: "CMakeLists.txt"},
			{Role: layout.RoleSource, Path: "./CMakeLists.txt"},
		}},
		{"header reached from the root", []layout.Target{
			{Role: layout.RoleCMake, Path: "CMakeLists.txt"},
			{Role: layout.RoleHeader, Path: "Dsp.h"},
			{Role: layout.RoleSource, Path: "include/Synth/Dsp.h"},
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root := t.TempDir()
			testutil.WriteFiles(t, root, map[string]string{
				"CMakeLists.txt":      "project(Synth VERSION 1.0)\n",
				"include/Synth/Dsp.h": "namespace Synth {}\n",
			})
			before := testutil.Snapshot(t, root)
			// Built directly so the plan has to catch the overlap on its own.
			l := &layout.Layout{ConfigFile: "CMakeLists.txt", IncludeRoot: "include", Targets: tt.targets}

			_, _, err := renamer.Run(root, l, "SynthPro", renamer.Options{}, nil)
			assert.ErrorIs(t, err, renamer.ErrDuplicateTarget)
			assert.Equal(t, before, testutil.Snapshot(t, root), "nothing should be modified")
		})
	}
}

func TestNewPlan_InvalidDeclaredName(t *testing.T) {
	t.Parallel()

	for _, declared := range []string{"..", "../source", `My\Plugin`} {
		declared := declared
		t.Run(declared, func(t *testing.T) {
			t.Parallel()
			root := testutil.NewPluginProject(t, "MyPlugin")
			config := filepath.Join(root, "plugin", "CMakeLists.txt")
			require.NoError(t, os.WriteFile(config, []byte("project("+declared+" VERSION 1.0)\n"), 0644))
			before := testutil.Snapshot(t, root)

			_, err := renamer.NewPlan(root, layout.Default(), "CoolPlugin")
			assert.ErrorIs(t, err, renamer.ErrInvalidName)
			assert.ErrorContains(t, err, "on line 1")
			assert.Equal(t, before, testutil.Snapshot(t, root))
		})
	}
}

func TestPlan_FilesWithRole(t *testing.T) {
	t.Parallel()
	root := testutil.NewPluginProject(t, "MyPlugin")

	plan, err := renamer.NewPlan(root, layout.Default(), "CoolPlugin")
	require.NoError(t, err)

	sources := plan.FilesWithRole(layout.RoleSource)
	require.Len(t, sources, 4)
	assert.Equal(t, filepath.Join("plugin", "source", "PluginEditor.cpp"), sources[0].Path)
	assert.Len(t, plan.FilesWithRole(layout.RoleCMake), 1)
	assert.Empty(t, plan.FilesWithRole("docs"))
}
