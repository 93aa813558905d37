package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"

	"github.com/df07/go-parallel-pathtracer/pkg/output"
	"github.com/df07/go-parallel-pathtracer/pkg/renderer"
	"github.com/df07/go-parallel-pathtracer/pkg/scene"
	"github.com/df07/go-parallel-pathtracer/web/server"
)

// options holds the command line configuration
type options struct {
	scene   string
	width   int
	height  int
	samples int
	depth   int
	workers int
	seed    int64
	outDir  string
	serve   int
}

func main() {
	var opts options
	flag.StringVar(&opts.scene, "scene", "default", "Scene: built-in name, json:<name> or path to a .json scene file")
	flag.IntVar(&opts.width, "width", 0, "Image width in pixels (0 = scene default)")
	flag.IntVar(&opts.height, "height", 0, "Image height in pixels (0 = derived from the aspect ratio)")
	flag.IntVar(&opts.samples, "samples", 0, "Samples per pixel (0 = scene default)")
	flag.IntVar(&opts.depth, "depth", 0, "Maximum bounces per path (0 = scene default)")
	flag.IntVar(&opts.workers, "workers", 0, "Worker goroutines (0 = "+renderer.WorkersEnvVar+" or CPU count)")
	flag.Int64Var(&opts.seed, "seed", renderer.DefaultRenderConfig().Seed, "Random seed; equal seeds give identical images")
	flag.StringVar(&opts.outDir, "out", "output", "Directory receiving output/<scene>/render_<timestamp>.png")
	flag.IntVar(&opts.serve, "serve", 0, "After rendering, serve the frame over HTTP on this port until interrupted")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("Parallel Path Tracer")
	fmt.Println("Usage: pathtracer [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Available scenes:")
	for _, id := range scene.ListScenes() {
		fmt.Printf("  %s\n", id)
	}
	fmt.Println()
	fmt.Println("Output will be saved to output/<scene>/render_<timestamp>.png")
}

func run(ctx context.Context, opts options) error {
	fmt.Println("Starting Parallel Path Tracer...")
	logHostInfo()

	selectedScene, err := createScene(opts.scene, renderer.CameraConfig{Width: opts.width, Height: opts.height})
	if err != nil {
		return err
	}
	fmt.Printf("Using scene %s (%d objects)\n", opts.scene, selectedScene.GetObjectCount())

	raytracer := renderer.NewRaytracer(selectedScene, renderer.RenderConfig{
		SamplesPerPixel: opts.samples,
		MaxDepth:        opts.depth,
		NumWorkers:      opts.workers,
		Seed:            opts.seed,
	}, renderer.NewDefaultLogger())

	frame, stats, err := raytracer.Render(ctx)
	if err != nil {
		return err
	}
	if stats.FailedPixels > 0 {
		fmt.Printf("Warning: %d pixels failed and are marked magenta\n", stats.FailedPixels)
	}

	pngSink := output.NewPNGSink(filepath.Join(opts.outDir, sceneDirName(opts.scene)))
	sinks := output.MultiSink{pngSink}

	var webServer *server.Server
	if opts.serve > 0 {
		webServer = server.NewServer(opts.serve)
		webServer.SetLabel(opts.scene)
		sinks = append(sinks, webServer)
	}

	if err := sinks.Upload(ctx, frame); err != nil {
		return fmt.Errorf("save render: %w", err)
	}
	fmt.Printf("Render saved as %s\n", pngSink.LastPath())

	if webServer == nil {
		return nil
	}
	return serveUntilDone(ctx, webServer)
}

// serveUntilDone runs the web server until ctx is cancelled
func serveUntilDone(ctx context.Context, webServer *server.Server) error {
	errCh := make(chan error, 1)
	go func() { errCh <- webServer.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return webServer.Shutdown(shutdownCtx)
}

// createScene resolves a scene name given on the command line
func createScene(name string, cameraOverrides ...renderer.CameraConfig) (*scene.Scene, error) {
	if name == "" {
		return nil, errors.New("scene name is empty")
	}
	return scene.Create(name, cameraOverrides...)
}

// sceneDirName turns a scene argument into an output directory name
func sceneDirName(name string) string {
	name = strings.TrimPrefix(name, "json:")
	name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if name == "" || name == "." {
		return "scene"
	}
	return name
}

// logHostInfo reports the CPU and memory available to the worker pool
func logHostInfo() {
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		fmt.Printf("CPU: %s\n", strings.TrimSpace(infos[0].ModelName))
	}
	if logical, err := cpu.Counts(true); err == nil {
		physical, _ := cpu.Counts(false)
		fmt.Printf("Cores: %d logical, %d physical\n", logical, physical)
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		fmt.Printf("Memory: %.1f GiB available of %.1f GiB\n",
			float64(vm.Available)/(1<<30), float64(vm.Total)/(1<<30))
	}
}
