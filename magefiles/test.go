//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Packages whose tests build without window system headers. The vulkan
// backend only needs cgo and the headers bundled with goki/vulkan.
var headlessPackages = []string{
	"./engine/core/...",
	"./engine/containers/...",
	"./engine/math/...",
	"./engine/renderer",
	"./engine/renderer/components/...",
	"./engine/renderer/metadata/...",
	"./engine/renderer/mock/...",
	"./engine/renderer/vulkan/...",
	"./engine/systems/...",
}

// Packages that link glfw and need the X11 or Wayland development headers.
var windowPackages = []string{
	".",
	"./engine",
	"./testbed/...",
}

func allPackages() []string {
	return append(append([]string{}, headlessPackages...), windowPackages...)
}

func goTest(flags ...string) error {
	args := append([]string{"test", "-count=1"}, flags...)
	_, err := executeCmd("go", withArgs(append(args, allPackages()...)...), withStream())
	return err
}

// Type checks every package, the Vulkan backend and main included.
func (Test) Vet() error {
	_, err := executeCmd("go", withArgs("vet", "./..."), withStream())
	return err
}

// Runs the headless tests only, for machines without window system headers.
func (Test) Headless() error {
	_, err := executeCmd("go", withArgs(append([]string{"test", "-count=1"}, headlessPackages...)...), withStream())
	return err
}

// Vets the whole module, then runs every test against the mock device.
func (Test) Unit() error {
	mg.Deps(Test.Vet)
	return goTest()
}

// Runs every test with the race detector.
func (Test) Race() error {
	mg.Deps(Test.Vet)
	return goTest("-race")
}
