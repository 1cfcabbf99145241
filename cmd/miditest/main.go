package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-lightshow/editor"
	"go-lightshow/lightshow"
	"go-lightshow/midi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "detect":
		detectLaunchpad()
	case "fill":
		withLaunchpad(fill)
	case "palette":
		withLaunchpad(showPalette)
	case "text":
		withLaunchpad(scrollText)
	case "input":
		withLaunchpad(echoInput)
	case "play":
		withLaunchpad(playSave)
	case "export":
		if err := exportSave(os.Args[2:]); err != nil {
			fmt.Println("Error:", err)
		}
	case "poll":
		pollDevices()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("Launchpad MK2 test scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                        - List all MIDI ports")
	fmt.Println("  detect                      - Find a Launchpad MK2")
	fmt.Println("  fill <colour>               - Fill the surface with a palette colour")
	fmt.Println("  palette [0|64]              - Show 64 palette colours")
	fmt.Println("  text <message>              - Scroll text and wait for the device")
	fmt.Println("  input                       - Print button presses")
	fmt.Println("  play <project> <page> <pad> - Play an animation from the latest save")
	fmt.Println("  export <project> <page> <pad> <file.mid>")
	fmt.Println("                              - Write an animation as a MIDI file")
	fmt.Println("  poll                        - Poll for device changes")
}

type ports struct {
	ins  []drivers.In
	outs []drivers.Out
}

func getPorts() (ports, bool) {
	ch := make(chan ports, 1)
	go func() {
		ch <- ports{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		return r, true
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! The MIDI backend is hung.")
		return ports{}, false
	}
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	r, ok := getPorts()
	if !ok {
		return
	}
	for i, p := range r.ins {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range r.outs {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
}

func isLaunchpad(name string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(midi.DefaultPortMatch))
}

func findLaunchpad() (drivers.In, drivers.Out) {
	r, ok := getPorts()
	if !ok {
		return nil, nil
	}
	var in drivers.In
	var out drivers.Out
	for _, p := range r.ins {
		if isLaunchpad(p.String()) {
			in = p
			break
		}
	}
	for _, p := range r.outs {
		if isLaunchpad(p.String()) {
			out = p
			break
		}
	}
	return in, out
}

func detectLaunchpad() {
	fmt.Println("Looking for Launchpad MK2...")

	in, out := findLaunchpad()
	if in != nil {
		fmt.Printf("Found input: %s\n", in.String())
	}
	if out != nil {
		fmt.Printf("Found output: %s\n", out.String())
	}

	if in != nil && out != nil {
		fmt.Println("\nLaunchpad MK2 detected!")
	} else {
		fmt.Println("\nLaunchpad MK2 not found")
	}
}

func withLaunchpad(run func(lp *midi.Launchpad, args []string) error) {
	in, out := findLaunchpad()
	if out == nil {
		fmt.Println("No Launchpad found")
		return
	}
	fmt.Printf("Using output: %s\n", out.String())

	lp, err := midi.NewLaunchpad(out.String(), in, out, 0)
	if err != nil {
		fmt.Printf("Error opening ports: %v\n", err)
		return
	}
	defer lp.Close()

	if err := run(lp, os.Args[2:]); err != nil {
		fmt.Printf("Error: %v\n", err)
	}
}

func colourArg(args []string, i int, def uint8) (uint8, error) {
	if len(args) <= i {
		return def, nil
	}
	v, err := strconv.Atoi(args[i])
	if err != nil || v < 0 || v >= midi.PaletteSize {
		return 0, fmt.Errorf("colour %q: want 0-%d", args[i], midi.PaletteSize-1)
	}
	return uint8(v), nil
}

func fill(lp *midi.Launchpad, args []string) error {
	colour, err := colourArg(args, 0, 13)
	if err != nil {
		return err
	}
	lp.PerformActions(midi.FillAction{Colour: colour})

	fmt.Println("Press Enter to clear...")
	fmt.Scanln()
	return nil
}

func showPalette(lp *midi.Launchpad, args []string) error {
	bias, err := colourArg(args, 0, 0)
	if err != nil {
		return err
	}
	if bias > 64 {
		bias = 64
	}

	var actions []midi.Action
	for y := 1; y <= 8; y++ {
		for x := 1; x <= 8; x++ {
			actions = append(actions, midi.PaletteAction{
				Note:   midi.SessionNote(x, y),
				Colour: uint8((y-1)*8+x-1) + bias,
			})
		}
	}
	lp.PerformActions(actions...)

	fmt.Println("Press Enter to clear...")
	fmt.Scanln()
	return nil
}

func scrollText(lp *midi.Launchpad, args []string) error {
	text := strings.Join(args, " ")
	if text == "" {
		text = "hello"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	start := time.Now()
	if err := lp.WriteTextAndWait(ctx, 21, text); err != nil {
		return err
	}
	fmt.Printf("Scroll finished after %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func echoInput(lp *midi.Launchpad, _ []string) error {
	fmt.Println("Press buttons on the Launchpad. Ctrl+C to exit.")
	for {
		select {
		case ev := <-lp.Buttons():
			state, colour := "release", uint8(0)
			if ev.Pressed {
				state, colour = "press", 21
			}
			x, y := midi.SessionPos(ev.Note)
			fmt.Printf("  %-8s %-7s note %3d  (%d, %d)\n", ev.Kind, state, ev.Note, x, y)
			lp.PerformActions(midi.PaletteAction{Note: ev.Note, Colour: colour})
		case <-lp.Done():
			return midi.ErrDisconnected
		}
	}
}

// saveArgs parses <project> <page> <pad> and loads the project's latest save.
func saveArgs(args []string) (*lightshow.Project, int, uint8, error) {
	if len(args) < 3 {
		return nil, 0, 0, fmt.Errorf("need <project> <page> <pad>")
	}
	page, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, 0, 0, fmt.Errorf("page %q: %w", args[1], err)
	}
	pad, err := strconv.Atoi(args[2])
	if err != nil || pad < 0 || pad > 127 {
		return nil, 0, 0, fmt.Errorf("pad %q: not a note", args[2])
	}

	store, err := lightshow.DefaultStore()
	if err != nil {
		return nil, 0, 0, err
	}
	project, err := store.Load(args[0], "")
	if err != nil {
		return nil, 0, 0, err
	}
	return project, page, uint8(pad), nil
}

func exportSave(args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("usage: export <project> <page> <pad> <file.mid>")
	}
	project, page, pad, err := saveArgs(args)
	if err != nil {
		return err
	}
	if page < 1 || page > lightshow.PageCount {
		return fmt.Errorf("page %d: out of range", page)
	}
	a, err := project.Page(page).AnimationAt(pad)
	if err != nil {
		return err
	}
	if err := a.ExportSMF(args[3]); err != nil {
		return err
	}
	fmt.Printf("Wrote %d frames to %s\n", a.FrameCount(), args[3])
	return nil
}

func playSave(lp *midi.Launchpad, args []string) error {
	project, page, pad, err := saveArgs(args)
	if err != nil {
		return fmt.Errorf("usage: play <project> <page> <pad>: %w", err)
	}

	ed := editor.NewManager(nil)
	ed.SetProject(project)
	if err := ed.SelectPage(page); err != nil {
		return err
	}
	ed.SetMode(editor.ModePreview)
	ed.SetDevice(lp)

	a, err := project.Page(page).AnimationAt(pad)
	if err != nil {
		return err
	}
	if err := ed.PlayAnimation(pad); err != nil {
		return err
	}

	var total time.Duration
	for i := 0; i < a.FrameCount(); i++ {
		total += a.FrameDuration(i)
	}
	fmt.Printf("Playing %d frames over %s\n", a.FrameCount(), total)
	time.Sleep(total + 500*time.Millisecond)
	return nil
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect Launchpad to test. Ctrl+C to exit.")

	lastIn := ""
	lastOut := ""

	for {
		r, ok := getPorts()
		if !ok {
			time.Sleep(2 * time.Second)
			continue
		}

		var inNames, outNames []string
		for _, p := range r.ins {
			inNames = append(inNames, p.String())
		}
		for _, p := range r.outs {
			outNames = append(outNames, p.String())
		}

		currentIn := strings.Join(inNames, ",")
		currentOut := strings.Join(outNames, ",")

		if currentIn != lastIn || currentOut != lastOut {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", inNames)
			fmt.Printf("  Outputs: %v\n", outNames)

			for _, name := range inNames {
				if isLaunchpad(name) {
					fmt.Println("  -> Launchpad MK2 detected!")
				}
			}

			lastIn = currentIn
			lastOut = currentOut
		}

		time.Sleep(2 * time.Second)
	}
}
