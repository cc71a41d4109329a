//go:build js && wasm

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"syscall/js"

	"github.com/cwbudde/algo-menagerie/dsp/graph"
	"github.com/cwbudde/algo-menagerie/internal/menagerie"
	"github.com/cwbudde/algo-menagerie/sampler"
)

var (
	engine *menagerie.Engine
	funcs  []js.Func
)

// fetchLoader reads instrument files over HTTP relative to base.
type fetchLoader struct {
	base string
}

func (l fetchLoader) Load(ctx context.Context, file string) (*graph.Buffer, error) {
	resp, err := await(ctx, js.Global().Call("fetch", l.base+file))
	if err != nil {
		return nil, err
	}

	if !resp.Get("ok").Bool() {
		return nil, fmt.Errorf("fetch %s: HTTP %d", file, resp.Get("status").Int())
	}

	ab, err := await(ctx, resp.Call("arrayBuffer"))
	if err != nil {
		return nil, err
	}

	data := make([]byte, ab.Get("byteLength").Int())
	js.CopyBytesToGo(data, js.Global().Get("Uint8Array").New(ab))

	return sampler.Decode(file, bytes.NewReader(data))
}

// await blocks until promise settles. It must not run on the JS event
// loop goroutine.
func await(ctx context.Context, promise js.Value) (js.Value, error) {
	type result struct {
		v   js.Value
		err error
	}

	done := make(chan result, 1)

	onOK := js.FuncOf(func(_ js.Value, args []js.Value) any {
		done <- result{v: args[0]}
		return nil
	})
	defer onOK.Release()

	onErr := js.FuncOf(func(_ js.Value, args []js.Value) any {
		done <- result{err: errors.New(args[0].Call("toString").String())}
		return nil
	})
	defer onErr.Release()

	promise.Call("then", onOK, onErr)

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		return js.Undefined(), ctx.Err()
	}
}

// promise runs fn off the event loop and resolves with its error message,
// or null on success.
func promise(fn func() error) js.Value {
	executor := js.FuncOf(func(_ js.Value, args []js.Value) any {
		resolve := args[0]

		go func() {
			if err := fn(); err != nil {
				resolve.Invoke(err.Error())
				return
			}

			resolve.Invoke(js.Null())
		}()

		return nil
	})
	defer executor.Release()

	// The executor runs synchronously inside the constructor.
	return js.Global().Get("Promise").New(executor)
}

func errValue(err error) any {
	if err != nil {
		return err.Error()
	}

	return js.Null()
}

func main() {
	api := js.Global().Get("Object").New()

	api.Set("init", export(func(args []js.Value) any {
		sr := 48000.0
		if len(args) > 0 {
			sr = args[0].Float()
		}

		base := "assets/"
		if len(args) > 1 {
			base = args[1].String()
		}

		return promise(func() error {
			loader := fetchLoader{base: base}
			logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

			impulse, err := loader.Load(context.Background(), sampler.ImpulseFile)
			if err != nil {
				logger.Warn("impulse unavailable, using synthetic tail", "error", err)
				impulse = nil
			}

			e, err := menagerie.NewEngine(sr, loader,
				menagerie.WithLogger(logger),
				menagerie.WithImpulse(impulse))
			if err != nil {
				return err
			}

			engine = e

			return nil
		})
	}))

	api.Set("changeSampler", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Null()
		}

		name := args[0].String()

		return promise(func() error {
			return engine.ChangeSampler(context.Background(), name)
		})
	}))

	api.Set("connectNodes", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Null()
		}

		arr := args[0]
		names := make([]string, arr.Length())
		for i := range names {
			names[i] = arr.Index(i).String()
		}

		return errValue(engine.ConnectNodes(names))
	}))

	api.Set("applyPreset", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Null()
		}

		return errValue(engine.ApplyPreset(args[0].Int()))
	}))

	api.Set("play", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Null()
		}

		key := []rune(args[0].String())
		if len(key) != 1 {
			return "play: want a single key"
		}

		return errValue(engine.Play(key[0]))
	}))

	api.Set("playAtPosition", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Null()
		}

		return errValue(engine.PlayAtPosition(args[0].Float()))
	}))

	api.Set("playFullSample", export(func(args []js.Value) any {
		if engine == nil {
			return js.Null()
		}

		var onEnded func()
		if len(args) > 0 && args[0].Type() == js.TypeFunction {
			cb := args[0]
			onEnded = func() { cb.Invoke() }
		}

		return errValue(engine.PlayFullSample(onEnded))
	}))

	api.Set("stopFullSample", export(func(args []js.Value) any {
		if engine != nil {
			engine.StopFullSample()
		}

		return js.Null()
	}))

	api.Set("playPattern", export(func(args []js.Value) any {
		if engine == nil {
			return js.Null()
		}

		return errValue(engine.PlayPattern())
	}))

	api.Set("stopPattern", export(func(args []js.Value) any {
		if engine == nil {
			return js.Null()
		}

		return errValue(engine.StopPattern())
	}))

	api.Set("setPattern", export(func(args []js.Value) any {
		if engine == nil || len(args) < 2 {
			return js.Null()
		}

		return errValue(engine.SetPattern(args[0].Int(), args[1].Bool()))
	}))

	api.Set("patterns", export(func(args []js.Value) any {
		out := js.Global().Get("Array").New()
		if engine == nil {
			return out
		}

		states, err := engine.Patterns()
		if err != nil {
			return out
		}

		for i, s := range states {
			item := js.Global().Get("Object").New()
			item.Set("id", s.ID)
			item.Set("steps", s.Steps)
			item.Set("active", s.Active)
			out.SetIndex(i, item)
		}

		return out
	}))

	api.Set("waveform", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Global().Get("Float32Array").New(0)
		}

		env, err := engine.Waveform(args[0].Int())
		if err != nil {
			return js.Global().Get("Float32Array").New(0)
		}

		arr := js.Global().Get("Float32Array").New(len(env))
		for i, v := range env {
			arr.SetIndex(i, v)
		}

		return arr
	}))

	api.Set("render", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Global().Get("Float32Array").New(0)
		}

		n := args[0].Int()
		buf := make([]float32, n)
		engine.Render(buf)

		arr := js.Global().Get("Float32Array").New(n)
		for i := 0; i < n; i++ {
			arr.SetIndex(i, buf[i])
		}

		return arr
	}))

	js.Global().Set("Menagerie", api)
	select {}
}

func export(fn func([]js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fn(args)
	})
	funcs = append(funcs, f)
	return f
}
