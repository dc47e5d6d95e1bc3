//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

const (
	binaryName = "vulkan-eng"
	shaderDir  = "shaders"
)

// Downloads the modules and builds the engine binary.
func (Build) Engine() error {
	if _, err := executeCmd("go", withArgs("mod", "download")); err != nil {
		return err
	}
	fmt.Println("Build engine...")
	_, err := executeCmd("go", withArgs("build", "-o", filepath.Join("bin", binaryName), "."), withStream())
	return err
}

// Compiles every GLSL stage under shaders/ to SPIR-V with glslc.
func (Build) Shaders() error {
	entries, err := os.ReadDir(shaderDir)
	if os.IsNotExist(err) {
		fmt.Println("no shaders to compile")
		return nil
	}
	if err != nil {
		return err
	}
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".vert" && ext != ".frag") {
			continue
		}
		out := strings.TrimPrefix(ext, ".") + ".spv"
		if _, err := executeCmd("glslc", withArgs(entry.Name(), "-o", out), withDir(shaderDir), withStream()); err != nil {
			return err
		}
	}
	return nil
}
