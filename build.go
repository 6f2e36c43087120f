//go:build ignore

// build.go - wastelookup build script
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, web, wastectl, test, clean, release

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	version = "0.1.0"
	module  = "wastelookup"
)

// BuildContext holds configuration for one build run.
type BuildContext struct {
	Verbose bool
	GOOS    string
	GOARCH  string
	OutDir  string
}

var (
	rootDir string
	distDir string

	// key = cmd directory, value = output binary name
	executables = map[string]string{
		"web":      "wastelookup",
		"wastectl": "wastectl",
	}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

func init() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(fmt.Sprintf("Failed to get current directory: %v", err))
	}
	rootDir = cwd
	distDir = filepath.Join(rootDir, "dist")

	if _, err := os.Stat(filepath.Join(rootDir, "go.mod")); os.IsNotExist(err) {
		panic(fmt.Sprintf("go.mod not found in %s. Run build.go from the module root.", rootDir))
	}
}

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	if runtime.GOOS == "windows" {
		colorReset, colorRed, colorGreen, colorYellow, colorBlue, colorCyan = "", "", "", "", "", ""
	}

	printHeader()
	startTime := time.Now()

	ctx := &BuildContext{
		Verbose: *verbose,
		GOOS:    runtime.GOOS,
		GOARCH:  runtime.GOARCH,
		OutDir:  distDir,
	}

	switch *target {
	case "all":
		buildAll(ctx)
	case "web", "wastectl":
		buildExecutable(*target, ctx)
	case "test":
		runTests(ctx.Verbose)
	case "clean":
		clean()
	case "release":
		buildRelease(ctx)
	default:
		showHelp()
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "        wastelookup - Build System         " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[OK]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func printWarning(msg string) {
	fmt.Printf("%s[WARN]%s %s\n", colorYellow, colorReset, msg)
}

func buildAll(ctx *BuildContext) {
	printInfo("Building all executables...")
	if err := os.MkdirAll(ctx.OutDir, 0o755); err != nil {
		printError(fmt.Sprintf("Failed to create %s: %v", ctx.OutDir, err))
		os.Exit(1)
	}
	for name := range executables {
		buildExecutable(name, ctx)
	}
	printSuccess("All components built successfully!")
}

func ldflags() string {
	return strings.Join([]string{
		"-s -w",
		fmt.Sprintf("-X %s/internal/infrastructure.Version=%s", module, version),
		fmt.Sprintf("-X %s/internal/app.BuildTime=%s", module, time.Now().UTC().Format(time.RFC3339)),
	}, " ")
}

func buildExecutable(name string, ctx *BuildContext) {
	exeName, ok := executables[name]
	if !ok {
		printError(fmt.Sprintf("Unknown executable: %s", name))
		os.Exit(1)
	}
	if ctx.GOOS == "windows" {
		exeName += ".exe"
	}
	outputPath := filepath.Join(ctx.OutDir, exeName)
	printInfo(fmt.Sprintf("Building %s for %s/%s...", name, ctx.GOOS, ctx.GOARCH))

	args := []string{"build", "-trimpath", "-ldflags", ldflags(), "-o", outputPath, "./cmd/" + name}
	if ctx.Verbose {
		args = append([]string{"build", "-v"}, args[1:]...)
	}

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Env = append(os.Environ(), "GOOS="+ctx.GOOS, "GOARCH="+ctx.GOARCH, "CGO_ENABLED=0")
	if ctx.Verbose {
		fmt.Printf("Running from %s: go %s\n", rootDir, strings.Join(args, " "))
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", name, err))
		os.Exit(1)
	}

	if info, err := os.Stat(outputPath); err == nil {
		sizeMB := float64(info.Size()) / 1024 / 1024
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", exeName, sizeMB))
	}
}

func clean() {
	printInfo("Cleaning build artifacts and logs...")
	for _, dir := range []string{distDir, filepath.Join(rootDir, "logs")} {
		if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
			printError(fmt.Sprintf("Failed to clean %s: %v", dir, err))
		}
	}
	printSuccess("Build artifacts cleaned")
}

func runTests(verbose bool) {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}
	printSuccess("All tests passed")
}

// buildRelease cross-compiles both binaries into dist/<os>-<arch>.
func buildRelease(ctx *BuildContext) {
	printInfo(fmt.Sprintf("Building release %s...", version))
	runTests(ctx.Verbose)

	platforms := [][2]string{{"linux", "amd64"}, {"linux", "arm64"}, {"windows", "amd64"}, {"darwin", "arm64"}}
	for _, p := range platforms {
		release := *ctx
		release.GOOS, release.GOARCH = p[0], p[1]
		release.OutDir = filepath.Join(distDir, p[0]+"-"+p[1])
		if err := os.MkdirAll(release.OutDir, 0o755); err != nil {
			printWarning(fmt.Sprintf("Skipping %s/%s: %v", p[0], p[1], err))
			continue
		}
		for name := range executables {
			buildExecutable(name, &release)
		}
	}
	printSuccess(fmt.Sprintf("Release %s ready in %s", version, distDir))
}

func showHelp() {
	fmt.Println("Usage: go run build.go -target=TARGET [-v]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all       Build the web server and wastectl (default)")
	fmt.Println("  web       Build the HTTP server only")
	fmt.Println("  wastectl  Build the command-line tool only")
	fmt.Println("  test      Run Go tests with the race detector")
	fmt.Println("  clean     Remove dist/ and logs/")
	fmt.Println("  release   Run tests, then cross-compile for all platforms")
}
