package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/trytobebee/gridsnake/pkg/config"
	"github.com/trytobebee/gridsnake/pkg/recorder"
	"github.com/trytobebee/gridsnake/pkg/renderer"
)

func main() {
	dir := flag.String("dir", config.DefaultRecordDir, "directory holding recordings")
	speed := flag.Float64("speed", 1, "playback speed multiplier")
	list := flag.Bool("list", false, "list recordings and exit")
	flag.Parse()

	if *list || flag.NArg() == 0 {
		if err := listRecordings(*dir); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		if flag.NArg() == 0 && !*list {
			fmt.Println("\nUsage: replay [-speed N] <file.jsonl>")
		}
		return
	}

	path := flag.Arg(0)
	if _, err := os.Stat(path); err != nil {
		path = filepath.Join(*dir, flag.Arg(0))
	}
	records, err := recorder.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error reading recording:", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Println("Recording is empty")
		return
	}
	if *speed <= 0 {
		*speed = 1
	}

	render := renderer.NewTerminalRenderer(os.Stdout, records[0].State.GridSize)
	render.HideCursor()
	defer render.ShowCursor()

	for i, rec := range records {
		if i > 0 {
			gap := rec.Time.Sub(records[i-1].Time)
			time.Sleep(time.Duration(float64(gap) / *speed))
		}
		msg := fmt.Sprintf("📼 %s  frame %d/%d", filepath.Base(path), i+1, len(records))
		render.Render(rec.State.State(), renderer.HUD{Message: msg})
	}
}

type recordFile struct {
	name string
	size int64
	time time.Time
}

func listRecordings(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("No recordings found in %s\n", dir)
			return nil
		}
		return err
	}

	var files []recordFile
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".jsonl" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, recordFile{name: e.Name(), size: info.Size(), time: info.ModTime()})
	}

	// Sort by time desc
	sort.Slice(files, func(i, j int) bool {
		return files[i].time.After(files[j].time)
	})

	if len(files) == 0 {
		fmt.Printf("No recordings found in %s\n", dir)
		return nil
	}
	for _, f := range files {
		fmt.Printf("%-50s %8d bytes  %s\n", f.name, f.size, f.time.Format("2006-01-02 15:04:05"))
	}
	return nil
}
