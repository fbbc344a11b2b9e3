package main

// save file header dumper
//
// example usage:
//
// essdump show quicksave.ess
// essdump --layout full show "Save 12 - Aluna  Whiterun  01.02.33.ess"
// essdump trace broken.ess
// essdump --dir "%USERPROFILE%/Documents/My Games/Skyrim Special Edition/Saves" files
// essdump plugins quicksave.ess
// essdump watch
//
// settings are read from essdump.ini (see config), flags override them

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"essdump/config"
	"essdump/log"
	"essdump/readers"
	"essdump/report"
	"essdump/utils"
	"essdump/watcher"
)

var arg_info = []struct {
	arg     string
	subargs int
	desc    string
}{
	{"help", 0, "Display this possibly helpful info"},
	{"check", 0, "Show the effective settings"},
	{"show", 1, "Decode a save file and show its header"},
	{"trace", 1, "Show every field read from a save file, with offsets"},
	{"plugins", 1, "Show the plugins a save file was made with"},
	{"files", 0, "Decode every save in the save directory"},
	{"list", 0, "List characters seen by the watcher"},
	{"watch", 0, "Decode saves as they are written.  Also the default."},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func println_all(out io.Writer, lines []string) {
	for _, l := range lines {
		fmt.Fprintln(out, l)
	}
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("essdump", flag.ContinueOnError)
	fs.SetOutput(out)
	config_path := fs.String("config", config.DEFAULT_FILE, "ini file to read settings from")
	dir := fs.String("dir", "", "directory holding the save files")
	layout := fs.String("layout", "", "header layout: legacy, withPlayer or full")
	verbose := fs.Bool("v", false, "verbose output")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	main_arg := "watch"
	subargs := fs.Args()
	if len(subargs) > 0 {
		main_arg, subargs = subargs[0], subargs[1:]
	}
	subargs_needed := -1
	for _, info := range arg_info {
		if info.arg == main_arg {
			subargs_needed = info.subargs
			break
		}
	}
	if subargs_needed < 0 {
		log.Println("Unknown command:", main_arg)
		return 1
	}
	if len(subargs) != subargs_needed {
		log.Printf("Expected %v extra arguments; got %v", subargs_needed, len(subargs))
		return 1
	}

	cfg, err := config.Load(*config_path)
	if err != nil {
		log.Println(err)
		return 1
	}
	if *dir != "" {
		cfg.Dir = *dir
	}
	if *layout != "" {
		if err := cfg.SetLayout(*layout); err != nil {
			log.Println(err)
			return 1
		}
	}
	if *verbose {
		cfg.Verbose = true
	}
	log.SetVerbose(cfg.Verbose)

	switch main_arg {
	case "help":
		for _, info := range arg_info {
			fmt.Fprintln(out, info.arg, "-", info.desc)
		}
		fs.PrintDefaults()

	case "check":
		println_all(out, cfg.Lines())

	case "show":
		rec, err := readers.LoadFile(cfg.Dir, subargs[0], cfg.Layout, cfg.DecodeOptions()...)
		if err != nil {
			log.Println(err)
			return 1
		}
		fmt.Fprintln(out, "File:", readers.ResolvePath(cfg.Dir, subargs[0]))
		println_all(out, report.Lines(rec))

	case "trace":
		events := []readers.TraceEvent{}
		opts := append(cfg.DecodeOptions(), readers.WithTracer(func(ev readers.TraceEvent) {
			events = append(events, ev)
		}))
		_, err := readers.LoadFile(cfg.Dir, subargs[0], cfg.Layout, opts...)
		println_all(out, report.Trace(events))
		if err != nil {
			log.Println(err)
			return 1
		}

	case "plugins":
		_, info, err := readers.LoadSave(cfg.Dir, subargs[0], cfg.DecodeOptions()...)
		if err != nil {
			log.Println(err)
			return 1
		}
		println_all(out, report.Plugins(info))

	case "files":
		files, err := utils.List_files(cfg.Dir, cfg.Extensions)
		if err != nil {
			log.Println(err)
			return 1
		}
		if len(files) == 0 {
			fmt.Fprintln(out, "(no save files in", cfg.Dir+")")
			return 0
		}
		failed := 0
		for _, path := range files {
			rec, err := readers.LoadFile("", path, cfg.Layout, cfg.DecodeOptions()...)
			if err != nil {
				log.Println("Failed to decode", path, "-", err)
				failed++
				continue
			}
			fmt.Fprintln(out, filepath.Base(path)+":", report.Summary(rec))
		}
		if failed > 0 {
			return 1
		}

	case "list":
		idx := watcher.Get_index(cfg.Dir)
		if len(idx) == 0 {
			fmt.Fprintln(out, "(no characters seen yet)")
			return 0
		}
		for _, name := range idx.Characters() {
			latest, _ := idx.Latest(name)
			fmt.Fprintf(out, "%v: %v saves, latest #%v (%v)\n", name, len(idx[name]), latest.SaveNumber, latest.File)
		}

	case "watch":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		results := make(chan *watcher.Result)
		w := watcher.New_watcher(cfg)
		if err := w.Start_watching(ctx, results); err != nil {
			log.Println(err)
			return 1
		}
		defer w.Stop_watching()

		fmt.Fprintln(out, "Watching...", cfg.Dir)
		for {
			select {
			case r := <-results:
				if r.Err != nil {
					log.Println("Failed to decode", r.Path, "-", r.Err)
					continue
				}
				fmt.Fprintln(out, r.Path+":", report.Summary(r.Record))
			case <-ctx.Done():
				return 0
			}
		}
	}

	return 0
}
