// Command beat-sandbox is an interactive rig for the procedural audio
// core: start and stop BGM at either intensity, toggle mute, and fire
// the one-shot effects while watching the transport walk the grid.
package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/jay870423/neon-slice/audio"
	"github.com/jay870423/neon-slice/constant"
	"github.com/jay870423/neon-slice/core"
	"github.com/jay870423/neon-slice/engine/beepengine"
)

func main() {
	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("screen init: %v", err)
	}
	defer screen.Fini()

	svc := audio.NewService(audio.LoadConfig(), beepengine.Factory, nil)
	if err := svc.Init(); err != nil {
		log.Printf("audio init: %v", err)
	}
	defer svc.Shutdown()

	events := make(chan tcell.Event, 8)
	go func() {
		for {
			events <- screen.PollEvent()
		}
	}()

	redraw := time.NewTicker(50 * time.Millisecond)
	defer redraw.Stop()

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !handleKey(svc, ev) {
					return
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-redraw.C:
		}
		draw(screen, svc)
	}
}

// handleKey returns false when the sandbox should exit
func handleKey(svc *audio.Service, ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
		return false
	}
	switch ev.Rune() {
	case 'q':
		return false
	case '1':
		svc.StartBGM(core.IntensityLow)
	case '2':
		svc.StartBGM(core.IntensityHigh)
	case 's':
		svc.StopBGM()
	case 'm':
		svc.ToggleMute()
	case 'z':
		svc.PlaySliceSfx()
	case 'x':
		svc.PlayBombSfx()
	}
	return true
}

func draw(screen tcell.Screen, svc *audio.Service) {
	screen.Clear()

	style := tcell.StyleDefault
	dim := style.Foreground(tcell.ColorGray)
	hot := style.Foreground(tcell.ColorBlack).Background(tcell.ColorGreen)

	putText(screen, 0, 0, style, "neon-slice beat sandbox")
	putText(screen, 0, 1, dim, "1 bgm low  2 bgm high  s stop  m mute  z slice  x bomb  q quit")

	transport := svc.Transport()
	line := "stopped"
	step := -1
	if transport != nil && transport.Playing() {
		step = transport.CurrentStep()
		line = fmt.Sprintf("playing %s @ %.0f bpm", transport.Intensity(), transport.TempoBPM())
	}
	if svc.IsDisabled() {
		line += "  [silent mode]"
	}
	if svc.IsMuted() {
		line += "  [muted]"
	}
	putText(screen, 0, 3, style, line)

	// 16-step grid with the transport's position highlighted
	for i := 0; i < constant.StepsPerBar; i++ {
		cell := " . "
		if i%4 == 0 {
			cell = " o "
		}
		st := dim
		if i == step {
			st = hot
		}
		putText(screen, i*3, 5, st, cell)
	}

	scheduled, dropped := svc.Stats()
	putText(screen, 0, 7, dim, fmt.Sprintf("voices scheduled %d  dropped %d", scheduled, dropped))

	screen.Show()
}

func putText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range text {
		screen.SetContent(x+i, y, r, nil, style)
	}
}
