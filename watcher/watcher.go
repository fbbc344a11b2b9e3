package watcher

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"essdump/config"
	"essdump/log"
	"essdump/readers"
	"essdump/types"
	"essdump/utils"
)

// The index lives next to the saves it describes.
const INDEX_FILE = "essdump-index.json"

// Key used for saves decoded without a player block.
const NO_PLAYER = "(no player block)"

// Result is what the watcher makes of one save file.
// Exactly one of Record and Err is set.
type Result struct {
	Path   string
	Record *types.SaveRecord
	Err    error
}

// Entry is one save as remembered in the index.
type Entry struct {
	File       string
	SaveNumber int32
	Level      int32
	Location   string
}

// Index maps character names to the saves seen for them.
type Index map[string][]Entry

type Watcher interface {
	Start_watching(ctx context.Context, results chan<- *Result) error
	Stop_watching()
}

func New_watcher(cfg config.Config) Watcher {
	return &dir_watcher{cfg: cfg, index: Index{}}
}

type dir_watcher struct {
	cfg    config.Config
	cancel context.CancelFunc
	done   chan struct{}

	// Only touched by the watching goroutine once it has started
	index Index
}

func (dw *dir_watcher) Start_watching(ctx context.Context, results chan<- *Result) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(dw.cfg.Dir); err != nil {
		watcher.Close()
		return err
	}
	dw.done = make(chan struct{})
	dw.index = Get_index(dw.cfg.Dir)
	ctx, dw.cancel = context.WithCancel(ctx)

	// Paths waiting out the settle delay, owned by the goroutine below
	pending := map[string]bool{}
	ready := make(chan string)

	go func() {
		defer close(dw.done)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				// Saves are usually written in place, but some tools write elsewhere and rename
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if !utils.Has_extension(event.Name, dw.cfg.Extensions) {
					continue
				}
				// One save raises a Create and any number of Writes
				if pending[event.Name] {
					continue
				}
				pending[event.Name] = true
				dw.settle(ctx, event.Name, ready)
			case path := <-ready:
				delete(pending, path)
				select {
				case results <- dw.handle_file(path):
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Println("Watcher error:", err)
			}
		}
	}()

	return nil
}

// Stop_watching stops the watcher and waits for its goroutine to finish.
// Results nobody has received yet are dropped.
func (dw *dir_watcher) Stop_watching() {
	if dw.cancel == nil {
		return
	}
	dw.cancel()
	<-dw.done
}

// settle hands path back on ready once the game has had time to finish writing it.
func (dw *dir_watcher) settle(ctx context.Context, path string, ready chan<- string) {
	time.AfterFunc(dw.cfg.Settle, func() {
		select {
		case ready <- path:
		case <-ctx.Done():
		}
	})
}

// handle_file decodes one save and records it in the index.
func (dw *dir_watcher) handle_file(path string) *Result {
	log.Debugf("decoding %v", path)
	rec, err := readers.LoadFile("", path, dw.cfg.Layout, dw.cfg.DecodeOptions()...)
	if err != nil {
		return &Result{Path: path, Err: err}
	}

	dw.index.add(filepath.Base(path), rec)
	if err := dw.save_index(); err != nil {
		log.Println("Failed to save index:", err)
	}

	return &Result{Path: path, Record: rec}
}

func (idx Index) add(file string, rec *types.SaveRecord) {
	name := rec.PlayerName()
	if rec.Player == nil {
		name = NO_PLAYER
	}
	entry := Entry{File: file, SaveNumber: rec.SaveNumber}
	if rec.Player != nil {
		entry.Level = rec.Player.Level
		entry.Location = rec.Player.Location
	}

	// A rewritten file replaces what we knew about it, whoever it belonged to.
	for character, entries := range idx {
		kept := entries[:0]
		for _, e := range entries {
			if e.File != file {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(idx, character)
		} else {
			idx[character] = kept
		}
	}

	idx[name] = append(idx[name], entry)
	sort.Slice(idx[name], func(i, j int) bool { return idx[name][i].SaveNumber < idx[name][j].SaveNumber })
}

func (idx Index) Characters() []string {
	out := make([]string, 0, len(idx))
	for name := range idx {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Latest returns the highest-numbered save seen for the character.
func (idx Index) Latest(character string) (Entry, bool) {
	entries := idx[character]
	if len(entries) == 0 {
		return Entry{}, false
	}
	return entries[len(entries)-1], true
}

func (dw *dir_watcher) save_index() error {
	b, err := json.MarshalIndent(dw.index, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dw.cfg.Dir, INDEX_FILE), b, 0644)
}

// Get_index loads the index for dir. A missing or unreadable index is just empty.
func Get_index(dir string) Index {
	idx := Index{}
	b, err := os.ReadFile(filepath.Join(dir, INDEX_FILE))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Println("Failed to read index:", err)
		}
		return idx
	}
	if err := json.Unmarshal(b, &idx); err != nil {
		log.Println("Ignoring broken index:", err)
		return Index{}
	}
	return idx
}
