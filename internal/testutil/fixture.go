// Package testutil builds throwaway plugin projects for tests.
package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// PluginFiles returns the files of a minimal JUCE plugin project named name,
// keyed by slash-separated path relative to the project root.
func PluginFiles(name string) map[string]string {
	inc := "plugin/include/" + name + "/"
	files := map[string]string{
		"plugin/CMakeLists.txt": `cmake_minimum_required(VERSION 3.22)

project(@NAME@ VERSION 0.1.0)

juce_add_plugin(${PROJECT_NAME}
    COMPANY_NAME Acme
    PRODUCT_NAME "@NAME@"
)

target_include_directories(${PROJECT_NAME} PUBLIC include/@NAME@)
`,
		inc + "PluginEditor.h": `#pragma once
#include "PluginProcessor.h"

class @NAME@ProcessorEditor : public juce::AudioProcessorEditor {
public:
  explicit @NAME@ProcessorEditor(@NAME@AudioProcessor&);
};
`,
		inc + "PluginProcessor.h": `#pragma once

class @NAME@AudioProcessor : public juce::AudioProcessor {
public:
  @NAME@AudioProcessor();
};
`,
		inc + "Identifiers.h": "#pragma once\n#include <juce_core/juce_core.h>\n",
		inc + "Common.h":      "#pragma once\n// @NAME@ shared helpers\n",
		"plugin/source/PluginEditor.cpp": `#include "@NAME@/PluginEditor.h"

@NAME@ProcessorEditor::@NAME@ProcessorEditor(@NAME@AudioProcessor& p)
    : AudioProcessorEditor(&p) {}
`,
		"plugin/source/PluginProcessor.cpp": "#include \"@NAME@/PluginProcessor.h\"\r\n\r\n@NAME@AudioProcessor::@NAME@AudioProcessor() {}\r\n",
		"plugin/source/Common.cpp":          "#include \"@NAME@/Common.h\"",
		"plugin/source/Identifiers.cpp":     "#include \"@NAME@/Identifiers.h\"\n",
		"test/source/AudioProcessorTest.cpp": `#include <@NAME@/PluginProcessor.h>
#include <gtest/gtest.h>

TEST(AudioProcessorTest, Foo) {
  audio_plugin::@NAME@AudioProcessor processor{};
}
`,
	}
	for path, content := range files {
		files[path] = strings.ReplaceAll(content, "@NAME@", name)
	}
	return files
}

// NewPluginProject writes PluginFiles(name) into a fresh temporary directory and returns it.
func NewPluginProject(t *testing.T, name string) string {
	t.Helper()
	root := t.TempDir()
	WriteFiles(t, root, PluginFiles(name))
	return root
}

// WriteFiles writes files (slash-separated relative path to content) below root.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for relPath, content := range files {
		absPath := filepath.Join(root, filepath.FromSlash(relPath))
		err := os.MkdirAll(filepath.Dir(absPath), 0755)
		require.NoError(t, err, "Failed to create directory for %s", relPath)
		err = os.WriteFile(absPath, []byte(content), 0644)
		require.NoError(t, err, "Failed to write %s", relPath)
	}
}

// Snapshot returns every regular file below root keyed by slash-separated relative path.
func Snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(content)
		return nil
	})
	require.NoError(t, err, "Failed to snapshot %s", root)
	return out
}
