package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"go-lightshow/config"
	"go-lightshow/debug"
	"go-lightshow/editor"
	"go-lightshow/lightshow"
	"go-lightshow/midi"
	"go-lightshow/theme"
	"go-lightshow/tui"
	"go-lightshow/widgets"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if len(os.Args) > 1 {
		cfg.UI.LastProject = os.Args[1]
	}

	if cfg.Debug {
		if err := debug.Enable(); err != nil {
			fmt.Printf("Debug log unavailable: %v\n", err)
		}
		defer debug.Disable()
	}

	palette, err := theme.LoadOrDefault(cfg.UI.Palette)
	if err != nil {
		return fmt.Errorf("load palette: %w", err)
	}
	th := theme.New(palette)

	store, err := lightshow.DefaultStore()
	if err != nil {
		return err
	}

	// The editor draws into the preview grid and, once connected, the device
	preview := widgets.NewGrid()
	ed := editor.NewManager(preview)
	ed.SetFrameDelay(cfg.FrameDelay())
	ed.SetUseSysex(cfg.Editor.UseSysex)
	if c, err := midi.ParseColour(cfg.Editor.Colour); err == nil {
		ed.SetColour(c)
	}
	if project := cfg.UI.LastProject; project != "" {
		if data, err := store.Read(project, ""); err == nil {
			ed.LoadJSON(data)
		}
	}

	var deviceMgr *midi.DeviceManager
	if cfg.Device.AutoConnect {
		deviceMgr = midi.NewDeviceManager(cfg.Device.PortName, cfg.Latency())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if deviceMgr != nil {
		g.Go(func() error {
			return deviceMgr.Run(ctx)
		})
	}

	m := tui.NewModel(preview, ed, deviceMgr, store, cfg, th)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	g.Go(func() error {
		defer cancel()
		final, err := p.Run()
		if err != nil {
			return err
		}
		if fm, ok := final.(tui.Model); ok {
			cfg.UI.LastProject = fm.ProjectName()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return cfg.Save()
}
