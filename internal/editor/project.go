package editor

import (
	"context"
	"fmt"
	"log"

	"phichain/internal/chart"
	"phichain/internal/edit"
	"phichain/internal/model"
	"phichain/internal/store"
)

func (e *Editor) Project() (*store.Project, bool) {
	return e.project, e.project != nil
}

func (e *Editor) Loaded() bool { return e.project != nil }

// LoadProject reads root and replaces the current chart. On failure the current chart
// is kept and the error is reported to the notifier.
func (e *Editor) LoadProject(ctx context.Context, root string) error {
	p, err := store.LoadProject(root)
	if err != nil {
		log.Printf("load %s: %v", root, err)
		e.notifier.Error(store.Describe(err))
		return err
	}
	w, err := chart.Load(p.Chart)
	if err != nil {
		log.Printf("load %s: %v", root, err)
		e.notifier.Error("Invalid chart: " + err.Error())
		return err
	}

	e.project = p
	e.setWorld(w)
	e.History = edit.NewHistory(e.Settings.HistoryLimit)
	e.tempoEdit = false
	if roots := w.Roots(); len(roots) > 0 {
		w.SetSelectedLine(roots[0])
	}
	if music, err := p.Path.MusicPath(); err == nil {
		if err := e.audio.Spawn(music); err != nil {
			log.Printf("audio %s: %v", music, err)
		}
	}
	e.syncTime()

	if p.MigratedFrom < store.CurrentFormat {
		log.Printf("migrated %s from format %d to %d", root, p.MigratedFrom, store.CurrentFormat)
	}
	if e.recent != nil {
		if err := e.recent.Touch(ctx, p.Path.Root, p.Meta.Name); err != nil {
			log.Printf("recent projects: %v", err)
		}
	}
	log.Printf("loaded %s: %d lines, %d notes, %d events", root, w.LineCount(), w.NoteCount(), w.EventCount())
	e.notifier.Success(fmt.Sprintf("Loaded %s", displayName(p)))
	return nil
}

// Save writes the chart and meta. The save point only moves when the write succeeds.
func (e *Editor) Save() error {
	if e.project == nil {
		return ErrNoProject
	}
	c := e.World.Export()
	if err := store.SaveProject(e.project.Path, e.project.Meta, c); err != nil {
		log.Printf("save %s: %v", e.project.Path.Root, err)
		e.notifier.Error(store.Describe(err))
		return err
	}
	e.project.Chart = c
	e.MarkSaved()
	log.Printf("saved %s", e.project.Path.Root)
	e.notifier.Success("Project saved")
	return nil
}

// Unload drops the project, its chart and its history.
func (e *Editor) Unload() {
	if e.project != nil {
		log.Printf("unloaded %s", e.project.Path.Root)
	}
	e.project = nil
	e.setWorld(chart.New())
	e.History = edit.NewHistory(e.Settings.HistoryLimit)
	e.tempoEdit = false
	e.audio.Pause()
	e.audio.Seek(0)
}

func displayName(p *store.Project) string {
	if p.Meta.Name != "" {
		return p.Meta.Name
	}
	return p.Path.Root
}

// Tempo edits sit outside the command history. They mark the project dirty until the
// next save.

func (e *Editor) InsertBpm(beat model.Beat, bpm float32) error {
	return e.editTempo(func(l *model.BpmList) error { return l.Insert(beat.Exact(), bpm) })
}

func (e *Editor) RemoveBpm(beat model.Beat) error {
	return e.editTempo(func(l *model.BpmList) error { return l.Remove(beat.Exact()) })
}

func (e *Editor) EditBpm(beat model.Beat, bpm float32) error {
	return e.editTempo(func(l *model.BpmList) error { return l.Edit(beat.Exact(), bpm) })
}

// SetOffset changes the chart offset in seconds.
func (e *Editor) SetOffset(seconds float32) {
	if e.World.Offset == seconds {
		return
	}
	e.World.Offset = seconds
	e.tempoEdit = true
	e.syncTime()
}

func (e *Editor) editTempo(fn func(*model.BpmList) error) error {
	if err := fn(&e.World.BpmList); err != nil {
		return chart.InvariantError{Reason: err.Error()}
	}
	e.tempoEdit = true
	return nil
}
