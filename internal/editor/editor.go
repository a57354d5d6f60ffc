// Package editor owns the loaded chart and everything that edits it: the command history,
// the clipboard, the action registry and the timeline. It runs as a single-threaded loop;
// the caller feeds input and calls Tick.
package editor

import (
	"errors"
	"log"
	"slices"

	"phichain/internal/action"
	"phichain/internal/chart"
	"phichain/internal/edit"
	"phichain/internal/model"
	"phichain/internal/store"
	"phichain/internal/timeline"
)

var ErrNoProject = errors.New("no project loaded")

type Options struct {
	Settings store.Settings
	Notifier Notifier
	Audio    Audio
	// Recent, when set, records every successful load.
	Recent *store.Recent
}

type Editor struct {
	Settings  store.Settings
	World     *chart.World
	History   *edit.History
	Clipboard edit.Clipboard
	Actions   *action.Registry
	Input     *action.Input
	Timeline  timeline.Timeline
	Focus     action.Context
	// Cursor is the pointer position in timeline viewport pixels.
	CursorX, CursorY float32
	Debug            bool

	notifier  Notifier
	audio     Audio
	recent    *store.Recent
	project   *store.Project
	tempoEdit bool
	pending   []*edit.Command
	drag      *timeline.HoldDrag
	placing   chart.EntityID
	observers []*observer
	unsub     func()
}

type observer struct{ fn chart.Observer }

func New(opts Options) *Editor {
	e := &Editor{
		Settings: opts.Settings,
		Actions:  action.NewRegistry(),
		Input:    action.NewInput(),
		Focus:    action.Timeline,
		notifier: opts.Notifier,
		audio:    opts.Audio,
		recent:   opts.Recent,
	}
	if e.notifier == nil {
		e.notifier = logNotifier{}
	}
	if e.audio == nil {
		e.audio = &SilentClock{}
	}
	if e.Settings.Density == 0 {
		e.Settings = store.DefaultSettings()
	}
	if e.Settings.SystemClipboard {
		e.Clipboard.SetMirror(edit.SystemClipboard{})
	}
	e.Timeline = timeline.Timeline{
		Viewport: timeline.Viewport{
			IndicatorPosition: e.Settings.IndicatorPosition,
			Zoom:              e.Settings.Zoom,
		},
		Density: e.Settings.Density,
	}
	e.setWorld(chart.New())
	e.History = edit.NewHistory(e.Settings.HistoryLimit)

	registerBuiltins(e)
	if err := e.Actions.ApplyOverrides(e.Settings.Hotkeys); err != nil {
		log.Printf("hotkey overrides: %v", err)
		e.notifier.Error("Some hotkey overrides were ignored: " + err.Error())
	}
	return e
}

func (e *Editor) setWorld(w *chart.World) {
	if e.unsub != nil {
		e.unsub()
	}
	e.World = w
	e.Timeline.Bpm = &w.BpmList
	e.unsub = w.Subscribe(e.broadcast)
	e.drag = nil
	e.pending = nil
	e.placing = 0
}

func (e *Editor) broadcast(c chart.Change) {
	for _, o := range slices.Clone(e.observers) {
		o.fn(c)
	}
}

// Subscribe observes chart changes. The subscription survives project loads.
func (e *Editor) Subscribe(fn chart.Observer) func() {
	o := &observer{fn: fn}
	e.observers = append(e.observers, o)
	return func() {
		e.observers = slices.DeleteFunc(e.observers, func(x *observer) bool { return x == o })
	}
}

func (e *Editor) Notifier() Notifier { return e.notifier }

func (e *Editor) Audio() Audio { return e.audio }

// Do applies cmd through the history. Failures are reported and leave the chart as it was.
func (e *Editor) Do(cmd *edit.Command) error {
	e.CancelPlacement()
	if err := e.History.Do(e.World, cmd); err != nil {
		log.Printf("command %s failed: %v", cmd, err)
		return err
	}
	return nil
}

// Submit queues cmd for the next Tick.
func (e *Editor) Submit(cmd *edit.Command) {
	if cmd != nil && !cmd.Empty() {
		e.pending = append(e.pending, cmd)
	}
}

func (e *Editor) Undo() error {
	e.CancelPlacement()
	if err := e.History.Undo(e.World); err != nil {
		if !errors.Is(err, edit.ErrNothingToUndo) {
			log.Printf("undo failed: %v", err)
		}
		return err
	}
	return nil
}

func (e *Editor) Redo() error {
	e.CancelPlacement()
	if err := e.History.Redo(e.World); err != nil {
		if !errors.Is(err, edit.ErrNothingToRedo) {
			log.Printf("redo failed: %v", err)
		}
		return err
	}
	return nil
}

func (e *Editor) MarkSaved() {
	e.History.MarkSaved()
	e.tempoEdit = false
}

// IsDirty reports unsaved command history or tempo edits.
func (e *Editor) IsDirty() bool {
	return e.History.IsDirty() || e.tempoEdit
}

// RunAction dispatches a named action.
func (e *Editor) RunAction(id string) error {
	err := e.Actions.Run(id)
	if err != nil {
		log.Printf("action %s: %v", id, err)
	}
	return err
}

// Tick runs one loop iteration: syncs time from audio, dispatches the hotkeys pressed this
// tick, then applies queued commands in the order they were submitted.
func (e *Editor) Tick() error {
	e.syncTime()
	ids, dispatchErr := e.Actions.Dispatch(e.Input, e.Focus)
	for _, id := range ids {
		log.Printf("dispatched %s", id)
	}
	e.Input.EndTick()
	e.followPlacement()

	var errs []error
	if dispatchErr != nil {
		errs = append(errs, dispatchErr)
	}
	pending := e.pending
	e.pending = nil
	for _, cmd := range pending {
		if err := e.Do(cmd); err != nil {
			errs = append(errs, err)
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		e.notifier.Error(err.Error())
	}
	return err
}

// ChartTime is the chart time under the indicator: audio position minus the chart offset.
func (e *Editor) ChartTime() float64 {
	return e.audio.Position() - float64(e.World.Offset)
}

func (e *Editor) syncTime() {
	e.Timeline.Current = e.ChartTime()
}

// CurrentBeat is the beat under the indicator, with the remainder as a float shadow.
func (e *Editor) CurrentBeat() model.Beat {
	return e.World.BpmList.BeatAt(e.ChartTime())
}

// SeekBeat moves playback so b sits under the indicator.
func (e *Editor) SeekBeat(b model.Beat) {
	e.audio.Seek(e.World.BpmList.TimeAt(b) + float64(e.World.Offset))
	e.syncTime()
}

// Resize sets the timeline viewport size in pixels.
func (e *Editor) Resize(width, height float32) {
	e.Timeline.Width, e.Timeline.Height = width, height
}

// Columns lays out the timeline for the selected line: notes on the left three fifths,
// events on the rest. A removed line has no columns.
func (e *Editor) Columns() []timeline.Column {
	line := e.World.SelectedLine()
	if !e.World.HasLine(line) {
		return nil
	}
	split := e.Timeline.Width * 3 / 5
	return []timeline.Column{
		{Kind: timeline.NoteColumn, Line: line, MinX: 0, MaxX: split},
		{Kind: timeline.EventColumn, Line: line, MinX: split, MaxX: e.Timeline.Width},
	}
}

func (e *Editor) columnAt(x float32) (timeline.Column, bool) {
	return timeline.ColumnAt(e.Columns(), x)
}
