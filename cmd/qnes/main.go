// Package main implements the qnes NES emulator executable, a thin host
// driver wiring internal/system to a graphics backend.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gones/internal/cartridge"
	"gones/internal/graphics"
	"gones/internal/input"
	"gones/internal/system"
	"gones/internal/version"
)

func main() {
	var (
		romFile    = flag.String("rom", "", "Path to NES ROM file")
		nogui      = flag.Bool("nogui", false, "Run without a GUI window (headless mode)")
		help       = flag.Bool("help", false, "Show help message")
		showVer    = flag.Bool("version", false, "Show version information")
		brightness = flag.Float64("brightness", 1.0, "Output brightness multiplier")
		contrast   = flag.Float64("contrast", 1.0, "Output contrast multiplier")
		saturation = flag.Float64("saturation", 1.0, "Output saturation multiplier")
	)
	flag.Parse()

	if *help {
		printUsage()
		return
	}
	if *showVer {
		version.PrintBuildInfo()
		return
	}
	if *romFile == "" {
		log.Fatal("a ROM file is required: qnes -rom <file>")
	}

	setupGracefulShutdown()

	cart, err := cartridge.LoadFromFile(*romFile)
	if err != nil {
		log.Fatalf("failed to load ROM: %v", err)
	}

	nes := system.New(cart)
	if err := nes.Reset(); err != nil {
		log.Fatalf("failed to reset system: %v", err)
	}

	if *nogui {
		runHeadless(nes)
		return
	}

	vp := graphics.NewVideoProcessor(float32(*brightness), float32(*contrast), float32(*saturation))
	if err := runGUI(nes, vp); err != nil {
		log.Fatalf("GUI mode failed: %v", err)
	}
}

func runHeadless(nes *system.System) {
	const targetFrames = 120
	for frame := 0; frame < targetFrames; frame++ {
		if err := nes.StepFrame(); err != nil {
			log.Fatalf("frame %d: %v", frame, err)
		}
	}
	fmt.Printf("ran %d frames\n", targetFrames)
}

func runGUI(nes *system.System, vp *graphics.VideoProcessor) error {
	backend, err := graphics.CreateBackend(graphics.BackendEbitengine)
	if err != nil {
		return fmt.Errorf("create backend: %w", err)
	}
	if err := backend.Initialize(graphics.Config{
		WindowTitle:  "qnes",
		WindowWidth:  256 * 3,
		WindowHeight: 240 * 3,
		Filter:       "nearest",
		AspectRatio:  "4:3",
	}); err != nil {
		return fmt.Errorf("initialize backend: %w", err)
	}
	defer func() {
		if err := backend.Cleanup(); err != nil {
			log.Printf("backend cleanup: %v", err)
		}
	}()

	window, err := backend.CreateWindow("qnes", 256*3, 240*3)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer func() {
		if err := window.Cleanup(); err != nil {
			log.Printf("window cleanup: %v", err)
		}
	}()

	for !window.ShouldClose() {
		applyInput(nes.Input, window.PollEvents())

		if err := nes.StepFrame(); err != nil {
			return fmt.Errorf("step frame: %w", err)
		}
		frame := nes.PPU.GetFrameBuffer()
		processed := vp.ProcessFrame(frame[:])
		var out [256 * 240]uint32
		copy(out[:], processed)
		if err := window.RenderFrame(out); err != nil {
			return fmt.Errorf("render frame: %w", err)
		}
		window.SwapBuffers()
	}
	return nil
}

// applyInput folds a batch of window input events into controller 1's
// button latch, the only port a host frontend currently drives.
func applyInput(in *input.InputState, events []graphics.InputEvent) {
	for _, ev := range events {
		if ev.Type != graphics.InputEventTypeKey {
			continue
		}
		if button, ok := keyToButton(ev.Key); ok {
			in.Controller1.SetButton(button, ev.Pressed)
		}
	}
}

func keyToButton(key graphics.Key) (input.Button, bool) {
	switch key {
	case graphics.KeyJ, graphics.KeyZ:
		return input.ButtonA, true
	case graphics.KeyK, graphics.KeyX:
		return input.ButtonB, true
	case graphics.KeyEnter:
		return input.ButtonStart, true
	case graphics.KeySpace:
		return input.ButtonSelect, true
	case graphics.KeyUp, graphics.KeyW:
		return input.ButtonUp, true
	case graphics.KeyDown, graphics.KeyS:
		return input.ButtonDown, true
	case graphics.KeyLeft, graphics.KeyA:
		return input.ButtonLeft, true
	case graphics.KeyRight, graphics.KeyD:
		return input.ButtonRight, true
	default:
		return 0, false
	}
}

func setupGracefulShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		os.Exit(0)
	}()
}

func printUsage() {
	fmt.Println("qnes - cycle-accurate NES emulator core")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  qnes -rom <file> [options]")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
}
